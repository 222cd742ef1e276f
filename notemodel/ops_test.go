package notemodel

import (
	"testing"

	"github.com/kjanssen/pitchscribe/pyin"
)

const sr = 44100

func TestMedianPitchOddAndEvenCounts(t *testing.T) {
	track := &pyin.PitchTrack{SampleRate: sr, Frames: []pyin.PitchFrame{
		{Timestamp: 0.0, HasPitch: true, Frequency: 100},
		{Timestamp: 0.1, HasPitch: true, Frequency: 200},
		{Timestamp: 0.2, HasPitch: true, Frequency: 300},
	}}
	if got := MedianPitch(track, 0, 1); got != 200 {
		t.Errorf("odd count median = %v, want 200", got)
	}

	track.Frames = append(track.Frames, pyin.PitchFrame{Timestamp: 0.3, HasPitch: true, Frequency: 400})
	if got := MedianPitch(track, 0, 1); got != 250 {
		t.Errorf("even count median = %v, want 250", got)
	}
}

func TestMedianPitchIgnoresUnvoiced(t *testing.T) {
	track := &pyin.PitchTrack{SampleRate: sr, Frames: []pyin.PitchFrame{
		{Timestamp: 0, HasPitch: false},
		{Timestamp: 0.1, HasPitch: true, Frequency: 220},
	}}
	if got := MedianPitch(track, 0, 1); got != 220 {
		t.Errorf("median = %v, want 220", got)
	}
}

func TestMedianPitchNoVoicedFramesReturnsZero(t *testing.T) {
	track := &pyin.PitchTrack{SampleRate: sr, Frames: []pyin.PitchFrame{{Timestamp: 0, HasPitch: false}}}
	if got := MedianPitch(track, 0, 1); got != 0 {
		t.Errorf("median = %v, want 0", got)
	}
}

func TestCreateOrReplaceNoOverlap(t *testing.T) {
	notes := CreateOrReplace(nil, 0, 1, 220, sr)
	if len(notes) != 1 || notes[0].Pitch != 220 {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func TestCreateOrReplaceRemovesNoteByMidpoint(t *testing.T) {
	// "a" spans [0,2), midpoint 1.0, which falls inside [1,1.5): removed
	// entirely rather than truncated.
	existing := List{{ID: "a", Start: 0, End: 2, Pitch: 100}}
	notes := CreateOrReplace(existing, 1, 1.5, 220, sr)

	if len(notes) != 1 {
		t.Fatalf("expected only the new note, got %d: %+v", len(notes), notes)
	}
	if notes[0].Pitch != 220 {
		t.Errorf("expected new note at 220, got %+v", notes[0])
	}
}

func TestCreateOrReplaceKeepsNoteWithMidpointOutsideRange(t *testing.T) {
	// "a" spans [0,2), midpoint 1.0, outside [1.5,1.9): kept untouched.
	existing := List{{ID: "a", Start: 0, End: 2, Pitch: 100}}
	notes := CreateOrReplace(existing, 1.5, 1.9, 220, sr)

	if len(notes) != 2 {
		t.Fatalf("expected the original note kept plus the new one, got %d: %+v", len(notes), notes)
	}
}

func TestCreateOrReplaceNoInsertionWhenPitchIsZero(t *testing.T) {
	existing := List{{ID: "a", Start: 0, End: 2, Pitch: 100}}
	notes := CreateOrReplace(existing, 1, 1.5, 0, sr)

	if len(notes) != 0 {
		t.Fatalf("expected only the removal applied and no insertion, got %+v", notes)
	}
}

func TestCreateOrReplaceDropsFullyCoveredNote(t *testing.T) {
	existing := List{{ID: "a", Start: 1, End: 1.1, Pitch: 100}}
	notes := CreateOrReplace(existing, 0, 2, 220, sr)
	if len(notes) != 1 {
		t.Fatalf("expected the covered note to be dropped, got %+v", notes)
	}
}

func TestSplitNoteProducesTwoNonOverlappingHalves(t *testing.T) {
	existing := List{{ID: "a", Start: 0, End: 1, Pitch: 220}}
	track := &pyin.PitchTrack{SampleRate: sr}
	notes := SplitNote(existing, track, "a", 0.5, sr)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].End != notes[1].Start {
		t.Errorf("split produced a gap or overlap: %+v", notes)
	}
	if notes[0].Pitch != 220 || notes[1].Pitch != 220 {
		t.Errorf("split halves should fall back to the original pitch when no voiced frames are found: %+v", notes)
	}
}

func TestSplitNoteRecomputesPitchFromTrack(t *testing.T) {
	existing := List{{ID: "a", Start: 0, End: 1, Pitch: 220}}
	track := &pyin.PitchTrack{SampleRate: sr, Frames: []pyin.PitchFrame{
		{Timestamp: 0.1, HasPitch: true, Frequency: 100},
		{Timestamp: 0.6, HasPitch: true, Frequency: 300},
	}}
	notes := SplitNote(existing, track, "a", 0.5, sr)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Pitch != 100 {
		t.Errorf("left half pitch = %v, want 100 (median over its range)", notes[0].Pitch)
	}
	if notes[1].Pitch != 300 {
		t.Errorf("right half pitch = %v, want 300 (median over its range)", notes[1].Pitch)
	}
}

func TestSplitNoteNearEdgeIsNoOp(t *testing.T) {
	existing := List{{ID: "a", Start: 0, End: 1, Pitch: 220}}
	track := &pyin.PitchTrack{SampleRate: sr}
	notes := SplitNote(existing, track, "a", 0.001, sr)
	if len(notes) != 1 {
		t.Fatalf("split too near an edge should be rejected, got %+v", notes)
	}
}

func TestResizeWithPushShrinksNeighbor(t *testing.T) {
	notes := List{
		{ID: "a", Start: 0, End: 1, Pitch: 100},
		{ID: "b", Start: 1, End: 2, Pitch: 200},
	}
	track := &pyin.PitchTrack{SampleRate: sr}
	out := ResizeWithPush(notes, track, "b", 0.5, 2, sr)

	var a, b Note
	for _, n := range out {
		if n.ID == "a" {
			a = n
		}
		if n.ID == "b" {
			b = n
		}
	}
	wantStart, wantEnd := SnapTime(0.5, sr), SnapTime(2, sr)
	if a.End != wantStart {
		t.Errorf("expected neighbor pushed back to %v, got %v", wantStart, a.End)
	}
	if b.Start != wantStart || b.End != wantEnd {
		t.Errorf("resized note wrong span: %+v", b)
	}
}

func TestResizeWithPushRemovesNeighborBelowMinDuration(t *testing.T) {
	notes := List{
		{ID: "a", Start: 0, End: 1, Pitch: 100},
		{ID: "b", Start: 1, End: 2, Pitch: 200},
	}
	track := &pyin.PitchTrack{SampleRate: sr}
	out := ResizeWithPush(notes, track, "b", 0.005, 2, sr)

	for _, n := range out {
		if n.ID == "a" {
			t.Fatalf("expected neighbor 'a' removed once pushed below MinDuration, got %+v", out)
		}
	}
}

func TestResizeWithPushRecomputesPitch(t *testing.T) {
	notes := List{
		{ID: "a", Start: 0, End: 1, Pitch: 100},
		{ID: "b", Start: 1, End: 2, Pitch: 200},
	}
	track := &pyin.PitchTrack{SampleRate: sr, Frames: []pyin.PitchFrame{
		{Timestamp: 1.6, HasPitch: true, Frequency: 150},
		{Timestamp: 1.8, HasPitch: true, Frequency: 150},
	}}
	out := ResizeWithPush(notes, track, "b", 1.5, 2, sr)

	var b Note
	for _, n := range out {
		if n.ID == "b" {
			b = n
		}
	}
	if b.Pitch != 150 {
		t.Errorf("resized note pitch = %v, want 150 (recomputed median)", b.Pitch)
	}
}

func TestSnapTimeRoundsToGrid(t *testing.T) {
	hop := float64(512) / float64(sr)
	got := SnapTime(hop*2.4, sr)
	want := hop * 2
	if got != want {
		t.Errorf("SnapTime = %v, want %v", got, want)
	}
}

func TestSnapTimeToPeersSnapsToNoteBoundary(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTimeToPeers(1.02, notes, 100, 0, 10, "", false)
	if got != 1.0 {
		t.Errorf("SnapTimeToPeers = %v, want 1.0", got)
	}
}

func TestSnapTimeToPeersIgnoresOwnNote(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTimeToPeers(1.02, notes, 100, 0, 10, "a", false)
	if got == 1.0 {
		t.Errorf("SnapTimeToPeers should not snap to the note being edited")
	}
}

func TestSnapTimeToPeersBypassedByShiftHeld(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTimeToPeers(1.02, notes, 100, 0, 10, "", true)
	if got != 1.02 {
		t.Errorf("SnapTimeToPeers with shiftHeld = %v, want unchanged 1.02", got)
	}
}

func TestSnapTimeToPeersOutsideToleranceUnchanged(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTimeToPeers(5.0, notes, 100, 0, 10, "", false)
	if got != 5.0 {
		t.Errorf("SnapTimeToPeers = %v, want unchanged 5.0 (nothing within tolerance)", got)
	}
}
