package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestFileStore(t *testing.T, maxSnapshots int) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.json")
	store, err := NewFileStore(path, maxSnapshots, testLogger())
	require.NoError(t, err)
	return store, path
}

func TestFileStoreSaveAndGet(t *testing.T) {
	store, _ := newTestFileStore(t, 5)

	saved, err := store.Save([]string{"Native", "Harmony"}, map[string]bool{
		"Native": true, "Harmony": true,
	}, "before update")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, "before update", saved.Description)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ModuleOrder, got.ModuleOrder)
	assert.Equal(t, saved.EnabledState, got.EnabledState)
}

func TestFileStorePersistence(t *testing.T) {
	store, path := newTestFileStore(t, 5)

	saved, err := store.Save([]string{"A"}, map[string]bool{"A": true}, "")
	require.NoError(t, err)

	// A fresh store over the same file sees the snapshot
	reopened, err := NewFileStore(path, 5, testLogger())
	require.NoError(t, err)

	got, err := reopened.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.ModuleOrder)
}

func TestFileStoreEviction(t *testing.T) {
	const maxSnapshots = 3
	store, _ := newTestFileStore(t, maxSnapshots)

	var last Snapshot
	for i := 0; i < maxSnapshots+2; i++ {
		var err error
		last, err = store.Save([]string{fmt.Sprintf("mod-%d", i)}, nil, "")
		require.NoError(t, err)
	}

	snaps, err := store.List()
	require.NoError(t, err)
	require.Len(t, snaps, maxSnapshots)
	assert.Equal(t, last.ID, snaps[maxSnapshots-1].ID, "newest is always retained")
}

func TestFileStoreDelete(t *testing.T) {
	store, _ := newTestFileStore(t, 5)

	saved, err := store.Save([]string{"A"}, nil, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))

	_, err = store.Get(saved.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))

	err = store.Delete(saved.ID)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
}

func TestFileStoreCompare(t *testing.T) {
	store, _ := newTestFileStore(t, 5)

	saved, err := store.Save([]string{"A", "B"}, map[string]bool{"A": true, "B": true}, "")
	require.NoError(t, err)

	diff, err := store.Compare(saved.ID, []string{"B", "A"}, map[string]bool{"A": true, "B": true})
	require.NoError(t, err)
	assert.Len(t, diff.PositionChanges, 2)

	_, err = store.Compare("missing", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path, 5, testLogger())
	assert.Error(t, err)
}

func TestFileStoreReturnsCopies(t *testing.T) {
	store, _ := newTestFileStore(t, 5)

	saved, err := store.Save([]string{"A", "B"}, map[string]bool{"A": true}, "")
	require.NoError(t, err)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	got.ModuleOrder[0] = "mutated"
	got.EnabledState["A"] = false

	again, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.ModuleOrder[0])
	assert.True(t, again.EnabledState["A"])
}
