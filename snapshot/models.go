// Package snapshot persists a bounded history of load orders and their
// per-module enabled state, and diffs a stored snapshot against a current
// order.
//
// Snapshots are immutable once written. Every mutating store call is an
// atomic read-modify-write under a single writer lock; the history holds at
// most MaxSnapshots entries with the oldest evicted first.
package snapshot

import (
	"sort"
	"time"
)

// FormatVersion identifies the persisted document layout
const FormatVersion = 1

// DefaultMaxSnapshots bounds the history when no limit is configured
const DefaultMaxSnapshots = 10

// Snapshot is one saved load order with its enabled state
type Snapshot struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Description  string          `json:"description,omitempty"`
	ModuleOrder  []string        `json:"module_order"`
	EnabledState map[string]bool `json:"enabled_state"`
}

// History is the bounded FIFO snapshot list. Append evicts from the front
// once the bound is exceeded; the newest snapshot is always retained.
type History struct {
	MaxSnapshots int        `json:"max_snapshots"`
	Snapshots    []Snapshot `json:"snapshots"`
}

// NewHistory creates an empty history with the given bound. A non-positive
// bound falls back to DefaultMaxSnapshots.
func NewHistory(maxSnapshots int) *History {
	if maxSnapshots <= 0 {
		maxSnapshots = DefaultMaxSnapshots
	}
	return &History{MaxSnapshots: maxSnapshots}
}

// Append adds a snapshot and evicts the oldest entries while the bound is
// exceeded
func (h *History) Append(snap Snapshot) {
	h.Snapshots = append(h.Snapshots, snap)
	for len(h.Snapshots) > h.MaxSnapshots {
		h.Snapshots = h.Snapshots[1:]
	}
}

// Find returns the snapshot with the given id
func (h *History) Find(id string) (Snapshot, bool) {
	for _, snap := range h.Snapshots {
		if snap.ID == id {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// Remove deletes the snapshot with the given id, reporting whether it was
// present
func (h *History) Remove(id string) bool {
	for i, snap := range h.Snapshots {
		if snap.ID == id {
			h.Snapshots = append(h.Snapshots[:i], h.Snapshots[i+1:]...)
			return true
		}
	}
	return false
}

// PositionChange records one module whose index moved between a snapshot and
// the current order
type PositionChange struct {
	ModuleID string `json:"module_id"`
	OldIndex int    `json:"old_index"`
	NewIndex int    `json:"new_index"`
}

// StateChange records one module whose enabled flag flipped
type StateChange struct {
	ModuleID   string `json:"module_id"`
	OldEnabled bool   `json:"old_enabled"`
	NewEnabled bool   `json:"new_enabled"`
}

// DiffResult compares a stored snapshot against a current order
type DiffResult struct {
	Added           []string         `json:"added"`
	Removed         []string         `json:"removed"`
	PositionChanges []PositionChange `json:"position_changes"`
	StateChanges    []StateChange    `json:"state_changes"`
}

// Empty reports whether the diff found no differences at all
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 &&
		len(d.PositionChanges) == 0 && len(d.StateChanges) == 0
}

// Diff computes the set differences between a snapshot and a current order
// plus enabled state. All four lists are sorted by module id so the result is
// deterministic regardless of input ordering.
func Diff(snap Snapshot, currentOrder []string, currentEnabled map[string]bool) *DiffResult {
	oldPos := make(map[string]int, len(snap.ModuleOrder))
	for i, id := range snap.ModuleOrder {
		oldPos[id] = i
	}
	newPos := make(map[string]int, len(currentOrder))
	for i, id := range currentOrder {
		newPos[id] = i
	}

	result := &DiffResult{
		Added:           []string{},
		Removed:         []string{},
		PositionChanges: []PositionChange{},
		StateChanges:    []StateChange{},
	}

	for id, ni := range newPos {
		oi, inOld := oldPos[id]
		if !inOld {
			result.Added = append(result.Added, id)
			continue
		}
		if oi != ni {
			result.PositionChanges = append(result.PositionChanges, PositionChange{
				ModuleID: id,
				OldIndex: oi,
				NewIndex: ni,
			})
		}
		oldEnabled := snap.EnabledState[id]
		newEnabled := currentEnabled[id]
		if oldEnabled != newEnabled {
			result.StateChanges = append(result.StateChanges, StateChange{
				ModuleID:   id,
				OldEnabled: oldEnabled,
				NewEnabled: newEnabled,
			})
		}
	}
	for id := range oldPos {
		if _, inNew := newPos[id]; !inNew {
			result.Removed = append(result.Removed, id)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Slice(result.PositionChanges, func(i, j int) bool {
		return result.PositionChanges[i].ModuleID < result.PositionChanges[j].ModuleID
	})
	sort.Slice(result.StateChanges, func(i, j int) bool {
		return result.StateChanges[i].ModuleID < result.StateChanges[j].ModuleID
	})

	return result
}
