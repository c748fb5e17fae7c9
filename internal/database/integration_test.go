package database

import (
	"path/filepath"
	"testing"

	"wordplay/internal/config"
)

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_integration.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var name string
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, "app_state").Scan(&name); err != nil {
		t.Errorf("Table app_state not found: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestMigrationsAreIdempotent reopens the same file and checks nothing reruns
func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_reopen.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	if _, err := db.Exec(db.Dialect.UpsertStateQuery(), "k", "v1"); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}
	db.Close()

	db, err = Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow("SELECT state_value FROM app_state WHERE state_key = ?", "k").Scan(&value); err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if value != "v1" {
		t.Errorf("Expected value v1 after reopen, got %q", value)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration after reopen, got %d", count)
	}
}

// TestTransactionRollback checks that a rolled back write is not visible
func TestTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test_tx.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec(tx.GetDialect().UpsertStateQuery(), "rolled", "back"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to write in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM app_state WHERE state_key = ?", "rolled").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 rows after rollback, got %d", count)
	}
}

func TestInitializeWithConfigRejectsUnknownType(t *testing.T) {
	_, err := InitializeWithConfig(&config.Config{DatabaseType: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}
