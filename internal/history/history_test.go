package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/swfpatch/internal/batch"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreImplementsRecorder(t *testing.T) {
	var _ batch.Recorder = (*Store)(nil)
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.RecordEntry("hud", "succeeded", "/out/hudmenu.json", ""))
	require.NoError(t, s.RecordEntry("map", "failed", "", "REFERENCE_ERROR: shape not found"))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "map", entries[0].Name)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "REFERENCE_ERROR: shape not found", entries[0].Error)

	assert.Equal(t, "hud", entries[1].Name)
	assert.Equal(t, "succeeded", entries[1].Status)
	assert.Equal(t, "/out/hudmenu.json", entries[1].Output)
	assert.Equal(t, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC), entries[1].RecordedAt)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordEntry("mod", "succeeded", "out", ""))
	}

	entries, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecordRejectsBadStatus(t *testing.T) {
	s := openTestStore(t)
	err := s.RecordEntry("hud", "exploded", "", "")
	assert.Error(t, err)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.RecordEntry("hud", "succeeded", "out", ""))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
