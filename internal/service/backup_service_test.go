package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordplay/internal/models"
)

func TestBackupRoundTrip(t *testing.T) {
	source := newTestStore(t, newMemoryBackend())
	alice, err := source.AddUser("Alice")
	require.NoError(t, err)
	require.NoError(t, source.LoadWords(alice.ID, []models.VocabWord{{ID: "word-0", SourceTerm: "猫", TargetTerm: "cat"}}, "animals.csv"))
	require.NoError(t, source.RecordQuizResult(alice.ID, models.QuizResult{
		Timestamp: "2025-01-01T00:00:00Z",
		Score:     models.Score{Correct: 1, Total: 1, Percentage: 100},
	}))

	exporter := NewBackupService(source, nil)
	exporter.now = func() time.Time { return testNow }
	path := filepath.Join(t.TempDir(), "backup.json")
	n, err := exporter.Export(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	target := newTestStore(t, newMemoryBackend())
	added, err := NewBackupService(target, nil).Import(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, source.Users(), target.Users())
}

func TestExportDocumentShape(t *testing.T) {
	store := newTestStore(t, newMemoryBackend())
	_, _ = store.AddUser("Alice")

	svc := NewBackupService(store, nil)
	svc.now = func() time.Time { return testNow }

	var buf bytes.Buffer
	_, err := svc.ExportToWriter(&buf)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, BackupVersion, doc["version"])
	assert.Equal(t, "2025-03-04T05:06:07Z", doc["exportedAt"])
	assert.Len(t, doc["users"], 1)
}

func TestImportFromReader(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		replace   bool
		wantAdded int
		wantUsers int
		wantErr   bool
	}{
		{
			name:      "merge",
			input:     `{"version":"1.0","users":[{"id":"user-1","name":"Dup"},{"id":"x","name":"New"}]}`,
			wantAdded: 1,
			wantUsers: 2,
		},
		{
			name:      "replace",
			input:     `{"version":"1.0","users":[{"id":"x","name":"New"}]}`,
			replace:   true,
			wantAdded: 1,
			wantUsers: 1,
		},
		{
			name:      "unsupported version",
			input:     `{"version":"2.0","users":[]}`,
			wantErr:   true,
			wantUsers: 1,
		},
		{
			name:      "malformed",
			input:     `{"version":`,
			wantErr:   true,
			wantUsers: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, newMemoryBackend())
			_, err := store.AddUser("Alice")
			require.NoError(t, err)

			added, err := NewBackupService(store, nil).ImportFromReader(strings.NewReader(tt.input), tt.replace)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAdded, added)
			}
			assert.Len(t, store.Users(), tt.wantUsers)
		})
	}
}

type failingCloseFile struct {
	bytes.Buffer
}

func (f *failingCloseFile) Close() error {
	return errors.New("no space left on device")
}

func TestExportReportsCloseFailure(t *testing.T) {
	store := newTestStore(t, newMemoryBackend())
	_, _ = store.AddUser("Alice")

	svc := NewBackupService(store, nil)
	file := &failingCloseFile{}
	svc.create = func(string) (io.WriteCloser, error) { return file, nil }

	n, err := svc.Export("backup.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.Zero(t, n)
	assert.NotZero(t, file.Len(), "data was written before the close failed")
}
