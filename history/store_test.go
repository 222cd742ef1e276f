package history

import (
	"testing"

	"github.com/kjanssen/pitchscribe/notemodel"
)

func snap(pitch float64) Snapshot {
	return Snapshot{Notes: notemodel.List{{ID: "a", Start: 0, End: 1, Pitch: pitch}}}
}

func TestCommitUndoRedo(t *testing.T) {
	s := New()
	if _, ok := s.Current(); ok {
		t.Fatal("empty store should have no current snapshot")
	}

	s.Commit(snap(100))
	s.Commit(snap(200))
	s.Commit(snap(300))

	cur, _ := s.Current()
	if cur.Notes[0].Pitch != 300 {
		t.Fatalf("current = %v, want 300", cur.Notes[0].Pitch)
	}

	prev, ok := s.Undo()
	if !ok || prev.Notes[0].Pitch != 200 {
		t.Fatalf("undo = %v, %v, want 200,true", prev, ok)
	}
	prev, ok = s.Undo()
	if !ok || prev.Notes[0].Pitch != 100 {
		t.Fatalf("undo = %v, %v, want 100,true", prev, ok)
	}
	if _, ok := s.Undo(); ok {
		t.Fatal("undo past the oldest snapshot should fail")
	}

	next, ok := s.Redo()
	if !ok || next.Notes[0].Pitch != 200 {
		t.Fatalf("redo = %v, %v, want 200,true", next, ok)
	}
}

func TestCommitAfterUndoDiscardsRedoHistory(t *testing.T) {
	s := New()
	s.Commit(snap(1))
	s.Commit(snap(2))
	s.Commit(snap(3))
	s.Undo()
	s.Commit(snap(4))

	if s.CanRedo() {
		t.Fatal("committing after undo should discard the redo future")
	}
	cur, _ := s.Current()
	if cur.Notes[0].Pitch != 4 {
		t.Fatalf("current = %v, want 4", cur.Notes[0].Pitch)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 retained snapshots (1,2,4), got %d", s.Len())
	}
}

func TestCapEvictsFromHead(t *testing.T) {
	s := NewWithCap(3)
	for i := 1; i <= 5; i++ {
		s.Commit(snap(float64(i)))
	}
	if s.Len() != 3 {
		t.Fatalf("expected cap of 3 retained snapshots, got %d", s.Len())
	}
	cur, _ := s.Current()
	if cur.Notes[0].Pitch != 5 {
		t.Fatalf("current after eviction = %v, want 5", cur.Notes[0].Pitch)
	}
	// oldest retained snapshot should be #3 (1 and 2 evicted)
	for i := 0; i < 2; i++ {
		s.Undo()
	}
	oldest, _ := s.Current()
	if oldest.Notes[0].Pitch != 3 {
		t.Fatalf("oldest retained = %v, want 3", oldest.Notes[0].Pitch)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Commit(snap(1))
	s.Reset()
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current snapshot after Reset")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("expected no undo/redo available after Reset")
	}
}
