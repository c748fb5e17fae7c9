package utils

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation errors shared across layers. They compare with errors.Is.
var (
	ErrEmptyAnswer    = ValidationError{Field: "answer", Message: "answer is required"}
	ErrNoUserSelected = ValidationError{Field: "user", Message: "no user selected"}
	ErrNoVocabulary   = ValidationError{Field: "words", Message: "please upload a vocabulary list first"}
)

// ValidateName checks if a user name is valid and returns it trimmed
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationError{Field: "name", Message: "name is required"}
	}
	return name, nil
}

// ValidateQuestionCount checks a requested question count against the
// number of words available
func ValidateQuestionCount(count, available int) error {
	if count <= 0 {
		return ValidationError{Field: "questionCount", Message: "question count must be positive"}
	}
	if available == 0 {
		return ErrNoVocabulary
	}
	if count > available {
		return ValidationError{
			Field:   "questionCount",
			Message: fmt.Sprintf("you only have %d words, please select fewer questions", available),
		}
	}
	return nil
}

// ValidateAnswer checks that a submitted answer is not blank
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}
