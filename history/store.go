// Package history implements an append-only undo/redo snapshot store.
package history

import (
	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pyin"
)

// Snapshot is one committed editor state.
type Snapshot struct {
	Track *pyin.PitchTrack
	Notes notemodel.List
}

// DefaultCap is the maximum number of snapshots retained before the
// oldest are evicted from the head.
const DefaultCap = 200

// Store is an append-only list of Snapshot with a movable cursor;
// Commit truncates any redo-able future before appending, matching the
// standard undo-stack discipline.
type Store struct {
	snapshots []Snapshot
	index     int // points at the current snapshot; -1 when empty
	cap       int
}

// New builds an empty Store capped at DefaultCap snapshots.
func New() *Store {
	return NewWithCap(DefaultCap)
}

// NewWithCap builds an empty Store capped at capSnapshots.
func NewWithCap(capSnapshots int) *Store {
	return &Store{index: -1, cap: capSnapshots}
}

// Commit appends snap as the new current snapshot, discarding any
// snapshots after the current cursor (the redo history), and evicting
// from the head if the cap is exceeded.
func (s *Store) Commit(snap Snapshot) {
	s.snapshots = append(s.snapshots[:s.index+1], snap)
	s.index = len(s.snapshots) - 1

	if s.cap > 0 && len(s.snapshots) > s.cap {
		overflow := len(s.snapshots) - s.cap
		s.snapshots = s.snapshots[overflow:]
		s.index -= overflow
	}
}

// Current returns the snapshot at the cursor, or the zero Snapshot and
// false if the store is empty.
func (s *Store) Current() (Snapshot, bool) {
	if s.index < 0 || s.index >= len(s.snapshots) {
		return Snapshot{}, false
	}
	return s.snapshots[s.index], true
}

// Undo moves the cursor back one snapshot and returns it. Returns false
// if already at the oldest snapshot.
func (s *Store) Undo() (Snapshot, bool) {
	if s.index <= 0 {
		return Snapshot{}, false
	}
	s.index--
	return s.snapshots[s.index], true
}

// Redo moves the cursor forward one snapshot and returns it. Returns
// false if already at the newest snapshot.
func (s *Store) Redo() (Snapshot, bool) {
	if s.index < 0 || s.index >= len(s.snapshots)-1 {
		return Snapshot{}, false
	}
	s.index++
	return s.snapshots[s.index], true
}

// Reset clears every snapshot and returns the store to empty.
func (s *Store) Reset() {
	s.snapshots = nil
	s.index = -1
}

// CanUndo reports whether Undo would succeed.
func (s *Store) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Store) CanRedo() bool { return s.index >= 0 && s.index < len(s.snapshots)-1 }

// Len returns the number of snapshots currently retained.
func (s *Store) Len() int { return len(s.snapshots) }
