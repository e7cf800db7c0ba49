package jsondb

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostink/ghostink/model"
)

func newTestDB(t *testing.T) *JsonDB {
	t.Helper()
	db, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Init())
	return db
}

func entry(id, label, emoji string) model.StashEntry {
	return model.StashEntry{
		ID:      id,
		Label:   label,
		Emoji:   emoji,
		Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestGetStashEntries_Empty(t *testing.T) {
	db := newTestDB(t)

	entries, err := db.GetStashEntries()
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAppendStashEntry_KeepsOrder(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.AppendStashEntry(entry("a1", "ghost", "👻")))
	require.NoError(t, db.AppendStashEntry(entry("b2", "ink", "🖋️")))

	entries, err := db.GetStashEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entry("a1", "ghost", "👻"), entries[0])
	assert.Equal(t, entry("b2", "ink", "🖋️"), entries[1])

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(db.GetPath())
		require.NoError(t, err)
		assert.Equal(t, FileMode, fi.Mode().Perm())
	}
}

func TestInit_RestrictsStashDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dbPath := t.TempDir()
	stashDir := filepath.Join(dbPath, model.StashCollectionName)
	require.NoError(t, os.MkdirAll(stashDir, 0o755))

	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Init())

	fi, err := os.Stat(stashDir)
	require.NoError(t, err)
	assert.Equal(t, DirMode, fi.Mode().Perm())

	// the file stays owner-only once written
	require.NoError(t, db.AppendStashEntry(entry("a1", "ghost", "👻")))
	fi, err = os.Stat(db.GetPath())
	require.NoError(t, err)
	assert.Equal(t, FileMode, fi.Mode().Perm())
}

func TestDeleteStashEntry(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AppendStashEntry(entry("a1", "ghost", "👻")))
	require.NoError(t, db.AppendStashEntry(entry("b2", "ink", "🖋️")))

	require.NoError(t, db.DeleteStashEntry("a1"))

	entries, err := db.GetStashEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b2", entries[0].ID)
}

func TestDeleteStashEntry_UnknownID(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AppendStashEntry(entry("a1", "ghost", "👻")))

	require.NoError(t, db.DeleteStashEntry("missing"))

	entries, err := db.GetStashEntries()
	require.NoError(t, err)
	assert.Equal(t, []model.StashEntry{entry("a1", "ghost", "👻")}, entries)
}

func TestDeleteStashEntry_EmptyStash(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.DeleteStashEntry("missing"))

	entries, err := db.GetStashEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetStashEntries_CorruptFile(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, os.WriteFile(db.GetPath(), []byte("{not json"), 0o600))

	_, err := db.GetStashEntries()
	assert.Error(t, err)
}
