package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// document is the on-disk JSON layout
type document struct {
	Version      int        `json:"version"`
	MaxSnapshots int        `json:"max_snapshots"`
	Snapshots    []Snapshot `json:"snapshots"`
}

// FileStore keeps the history in a single JSON document. Writes go through a
// temp file in the same directory followed by a rename, so a crash never
// leaves a half-written history behind.
type FileStore struct {
	mu      sync.Mutex
	path    string
	history *History
	logger  *zap.SugaredLogger
}

// NewFileStore opens (or initializes) the history document at path. A
// non-positive maxSnapshots falls back to DefaultMaxSnapshots. A stored
// document's own bound is superseded by the configured one; excess entries
// are evicted on the next save.
func NewFileStore(path string, maxSnapshots int, logger *zap.SugaredLogger) (*FileStore, error) {
	store := &FileStore{
		path:    path,
		history: NewHistory(maxSnapshots),
		logger:  logger.Named("snapshot.file"),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read snapshot history %s", s.path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrapf(err, "parse snapshot history %s", s.path)
	}
	if doc.Version > FormatVersion {
		return errors.Newf("snapshot history %s has unsupported version %d", s.path, doc.Version)
	}

	s.history.Snapshots = doc.Snapshots
	s.logger.Debugw("Loaded snapshot history",
		"path", s.path,
		"snapshots", len(doc.Snapshots))
	return nil
}

func (s *FileStore) persist() error {
	doc := document{
		Version:      FormatVersion,
		MaxSnapshots: s.history.MaxSnapshots,
		Snapshots:    s.history.Snapshots,
	}
	if doc.Snapshots == nil {
		doc.Snapshots = []Snapshot{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode snapshot history")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".snapshots-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write temp snapshot file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp snapshot file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "replace snapshot history %s", s.path)
	}
	return nil
}

// Save records a new snapshot, evicting the oldest entries beyond the bound
func (s *FileStore) Save(order []string, enabled map[string]bool, description string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Description:  description,
		ModuleOrder:  append([]string(nil), order...),
		EnabledState: make(map[string]bool, len(enabled)),
	}
	for id, on := range enabled {
		snap.EnabledState[id] = on
	}

	s.history.Append(snap)
	if err := s.persist(); err != nil {
		return Snapshot{}, err
	}

	s.logger.Infow("Saved load order snapshot",
		"id", snap.ID,
		"modules", len(order),
		"history_size", len(s.history.Snapshots))
	return copySnapshot(snap), nil
}

// List returns all snapshots, oldest first
func (s *FileStore) List() ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Snapshot, 0, len(s.history.Snapshots))
	for _, snap := range s.history.Snapshots {
		out = append(out, copySnapshot(snap))
	}
	return out, nil
}

// Get returns the snapshot with the given id
func (s *FileStore) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Find(id)
	if !ok {
		return Snapshot{}, errors.NewSnapshotNotFound(id)
	}
	return copySnapshot(snap), nil
}

// Delete removes the snapshot with the given id
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Remove(id) {
		return errors.NewSnapshotNotFound(id)
	}
	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Infow("Deleted snapshot", "id", id)
	return nil
}

// Compare diffs the stored snapshot against the current order and state
func (s *FileStore) Compare(id string, currentOrder []string, currentEnabled map[string]bool) (*DiffResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Find(id)
	if !ok {
		return nil, errors.NewSnapshotNotFound(id)
	}
	return Diff(snap, currentOrder, currentEnabled), nil
}

// Close is a no-op for the file backing
func (s *FileStore) Close() error { return nil }
