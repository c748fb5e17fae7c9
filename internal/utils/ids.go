package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random UUID string for a new record
func NewID() string {
	return uuid.New().String()
}
