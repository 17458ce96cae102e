package snapshot

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/db"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// SQLiteStore keeps the history in a snapshots table. Insertion order is the
// rowid, which drives FIFO eviction.
type SQLiteStore struct {
	mu           sync.Mutex
	conn         *sql.DB
	maxSnapshots int
	ownsConn     bool
	logger       *zap.SugaredLogger
}

// NewSQLiteStore opens the database at path, runs migrations, and returns a
// store bounded to maxSnapshots (DefaultMaxSnapshots when non-positive).
func NewSQLiteStore(path string, maxSnapshots int, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	conn, err := db.Open(path, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, logger); err != nil {
		conn.Close()
		return nil, err
	}
	store := newSQLiteStore(conn, maxSnapshots, logger)
	store.ownsConn = true
	return store, nil
}

// NewSQLiteStoreWithConn wraps an already-open, migrated connection. The
// caller keeps ownership of the connection.
func NewSQLiteStoreWithConn(conn *sql.DB, maxSnapshots int, logger *zap.SugaredLogger) *SQLiteStore {
	return newSQLiteStore(conn, maxSnapshots, logger)
}

func newSQLiteStore(conn *sql.DB, maxSnapshots int, logger *zap.SugaredLogger) *SQLiteStore {
	if maxSnapshots <= 0 {
		maxSnapshots = DefaultMaxSnapshots
	}
	return &SQLiteStore{
		conn:         conn,
		maxSnapshots: maxSnapshots,
		logger:       logger.Named("snapshot.sqlite"),
	}
}

// Save inserts a new snapshot and evicts the oldest rows beyond the bound in
// the same transaction
func (s *SQLiteStore) Save(order []string, enabled map[string]bool, description string) (Snapshot, error) {
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

	orderJSON, err := json.Marshal(snap.ModuleOrder)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "encode module order")
	}
	enabledJSON, err := json.Marshal(snap.EnabledState)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "encode enabled state")
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "begin snapshot tx")
	}

	_, err = tx.Exec(
		"INSERT INTO snapshots (id, created_at, description, module_order, enabled_state) VALUES (?, ?, ?, ?, ?)",
		snap.ID, snap.CreatedAt.Format(time.RFC3339Nano), snap.Description,
		string(orderJSON), string(enabledJSON),
	)
	if err != nil {
		tx.Rollback()
		return Snapshot{}, errors.Wrap(err, "insert snapshot")
	}

	_, err = tx.Exec(
		"DELETE FROM snapshots WHERE rowid NOT IN (SELECT rowid FROM snapshots ORDER BY rowid DESC LIMIT ?)",
		s.maxSnapshots,
	)
	if err != nil {
		tx.Rollback()
		return Snapshot{}, errors.Wrap(err, "evict old snapshots")
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, errors.Wrap(err, "commit snapshot tx")
	}

	s.logger.Infow("Saved load order snapshot", "id", snap.ID, "modules", len(order))
	return snap, nil
}

// List returns all snapshots, oldest first
func (s *SQLiteStore) List() ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(
		"SELECT id, created_at, description, module_order, enabled_state FROM snapshots ORDER BY rowid ASC")
	if err != nil {
		return nil, errors.Wrap(err, "query snapshots")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, errors.Wrap(rows.Err(), "iterate snapshots")
}

// Get returns the snapshot with the given id
func (s *SQLiteStore) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *SQLiteStore) get(id string) (Snapshot, error) {
	row := s.conn.QueryRow(
		"SELECT id, created_at, description, module_order, enabled_state FROM snapshots WHERE id = ?", id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, errors.NewSnapshotNotFound(id)
	}
	return snap, err
}

// Delete removes the snapshot with the given id
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete snapshot")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete snapshot")
	}
	if affected == 0 {
		return errors.NewSnapshotNotFound(id)
	}
	s.logger.Infow("Deleted snapshot", "id", id)
	return nil
}

// Compare diffs the stored snapshot against the current order and state
func (s *SQLiteStore) Compare(id string, currentOrder []string, currentEnabled map[string]bool) (*DiffResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return Diff(snap, currentOrder, currentEnabled), nil
}

// Close closes the underlying connection if this store opened it
func (s *SQLiteStore) Close() error {
	if !s.ownsConn {
		return nil
	}
	return s.conn.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var snap Snapshot
	var createdAt, orderJSON, enabledJSON string
	if err := row.Scan(&snap.ID, &createdAt, &snap.Description, &orderJSON, &enabledJSON); err != nil {
		return Snapshot{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "parse snapshot %s timestamp", snap.ID)
	}
	snap.CreatedAt = ts

	if err := json.Unmarshal([]byte(orderJSON), &snap.ModuleOrder); err != nil {
		return Snapshot{}, errors.Wrapf(err, "decode snapshot %s module order", snap.ID)
	}
	if err := json.Unmarshal([]byte(enabledJSON), &snap.EnabledState); err != nil {
		return Snapshot{}, errors.Wrapf(err, "decode snapshot %s enabled state", snap.ID)
	}
	return snap, nil
}
