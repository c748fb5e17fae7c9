package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordplay/internal/database"
)

func newTestRepo(t *testing.T) *StateRepository {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStateRepository(db)
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	_, found, err := repo.Get("wordplay.users")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set("wordplay.users", `[{"id":"a"}]`))
	value, found, err := repo.Get("wordplay.users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, value)
}

func TestStateRepositoryOverwrites(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("k", "first"))
	require.NoError(t, repo.Set("k", "second"))

	value, found, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", value)
}

func TestStateRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("k", "v"))
	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("missing"))

	_, found, err := repo.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStateRepositoryKeepsUnicode(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("k", `[{"sourceTerm":"猫"}]`))
	value, _, err := repo.Get("k")
	require.NoError(t, err)
	assert.Equal(t, `[{"sourceTerm":"猫"}]`, value)
}
