// Package notemodel implements the pure note-algebra operations over a
// NoteList: creation, splitting, boundary-aware resizing, and grid
// snapping. None of these functions hold state; every call takes the
// current NoteList and returns the next one.
package notemodel

import "github.com/google/uuid"

// Note is a single editable pitch segment.
type Note struct {
	ID    string
	Start float64 // seconds
	End   float64 // seconds
	Pitch float64 // Hz
}

// Duration returns End - Start.
func (n Note) Duration() float64 { return n.End - n.Start }

// List is a time-ordered, non-overlapping sequence of Note.
type List []Note

// MinDuration is the shortest a note may be after any edit.
const MinDuration = 0.010 // 10ms

// NewID generates a fresh stable note identifier.
func NewID() string {
	return uuid.NewString()
}
