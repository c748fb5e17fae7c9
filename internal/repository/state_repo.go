package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"wordplay/internal/database"
)

// StateRepository stores named JSON documents in the app_state table.
// Each Set overwrites the whole record.
type StateRepository struct {
	db database.DBTX
}

// NewStateRepository creates a new state repository
func NewStateRepository(db database.DBTX) *StateRepository {
	return &StateRepository{db: db}
}

// Get retrieves a record by key. found is false when no record exists.
func (r *StateRepository) Get(key string) (string, bool, error) {
	var value string
	query := `SELECT state_value FROM app_state WHERE state_key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces a record
func (r *StateRepository) Set(key, value string) error {
	query := r.db.GetDialect().UpsertStateQuery()
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Delete removes a record; deleting a missing key is not an error
func (r *StateRepository) Delete(key string) error {
	query := `DELETE FROM app_state WHERE state_key = ?`
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}
