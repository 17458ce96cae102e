package snapshot

// Store persists the snapshot history. Implementations serialize mutating
// calls internally; snapshots handed out are copies safe to retain.
type Store interface {
	// Save records a new snapshot and returns it, evicting the oldest
	// entries beyond the history bound
	Save(order []string, enabled map[string]bool, description string) (Snapshot, error)

	// List returns all snapshots, oldest first
	List() ([]Snapshot, error)

	// Get returns the snapshot with the given id, or ErrSnapshotNotFound
	Get(id string) (Snapshot, error)

	// Delete removes the snapshot with the given id, or ErrSnapshotNotFound
	Delete(id string) error

	// Compare diffs the stored snapshot against the current order and
	// enabled state, or ErrSnapshotNotFound
	Compare(id string, currentOrder []string, currentEnabled map[string]bool) (*DiffResult, error)

	// Close releases any underlying resources
	Close() error
}

func copySnapshot(snap Snapshot) Snapshot {
	out := snap
	out.ModuleOrder = append([]string(nil), snap.ModuleOrder...)
	out.EnabledState = make(map[string]bool, len(snap.EnabledState))
	for id, enabled := range snap.EnabledState {
		out.EnabledState[id] = enabled
	}
	return out
}
