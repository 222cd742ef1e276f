package editor

import (
	"context"
	"math"
	"testing"

	"github.com/kjanssen/pitchscribe/audiodecode"
	"github.com/kjanssen/pitchscribe/playback"
)

const testSampleRate = 44100

func sineWAV(t *testing.T, freq float64, seconds float64) []byte {
	t.Helper()
	n := int(float64(testSampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(testSampleRate))
	}
	data, err := audiodecode.Encode(samples, testSampleRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func loadedEditor(t *testing.T) *Editor {
	t.Helper()
	e := New(DefaultConfig(), nil)
	if err := e.LoadAudio(context.Background(), sineWAV(t, 220, 1.0), "take1.wav"); err != nil {
		t.Fatalf("LoadAudio: %v", err)
	}
	return e
}

func TestLoadAudioPopulatesTrackAndHistory(t *testing.T) {
	e := loadedEditor(t)
	if e.track == nil || len(e.track.Frames) == 0 {
		t.Fatal("expected a populated pitch track after LoadAudio")
	}
	if e.history.Len() != 1 {
		t.Fatalf("history length = %d, want 1", e.history.Len())
	}
}

func TestCreateOrReplaceNoteCommitsHistory(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	if len(e.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(e.notes))
	}
	if e.history.Len() != 2 {
		t.Fatalf("history length = %d, want 2", e.history.Len())
	}
	if e.notes[0].Pitch <= 0 {
		t.Errorf("expected a positive derived pitch, got %v", e.notes[0].Pitch)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(e.notes) != 0 {
		t.Fatalf("expected notes cleared after undo, got %d", len(e.notes))
	}
	if err := e.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if len(e.notes) != 1 {
		t.Fatalf("expected note restored after redo, got %d", len(e.notes))
	}
}

func TestUndoWithoutHistoryFails(t *testing.T) {
	e := loadedEditor(t)
	if err := e.Undo(); err == nil {
		t.Fatal("expected an error undoing past the first snapshot")
	}
}

func TestDeleteNoteRemovesIt(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	id := e.notes[0].ID
	if err := e.DeleteNote(id); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if len(e.notes) != 0 {
		t.Fatalf("expected 0 notes after delete, got %d", len(e.notes))
	}
}

func TestDeleteNoteUnknownIDFails(t *testing.T) {
	e := loadedEditor(t)
	if err := e.DeleteNote("does-not-exist"); err == nil {
		t.Fatal("expected an error deleting an unknown note id")
	}
}

func TestSplitNoteProducesTwoNotes(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0, 0.8); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	id := e.notes[0].ID
	if err := e.SplitNote(id, 0.4); err != nil {
		t.Fatalf("SplitNote: %v", err)
	}
	if len(e.notes) != 2 {
		t.Fatalf("expected 2 notes after split, got %d", len(e.notes))
	}
}

func TestDeleteNotePitchClearsVoicedFrames(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	id := e.notes[0].ID
	start, end := e.notes[0].Start, e.notes[0].End // grid-snapped span
	if err := e.DeleteNotePitch(id); err != nil {
		t.Fatalf("DeleteNotePitch: %v", err)
	}
	for _, f := range e.track.Frames {
		if f.Timestamp >= start && f.Timestamp < end && f.HasPitch {
			t.Fatalf("frame at %.3f still voiced after DeleteNotePitch", f.Timestamp)
		}
	}
}

func TestRecalcCandidatesReplacesRange(t *testing.T) {
	e := loadedEditor(t)
	if err := e.RecalcCandidates(context.Background(), 0.1, 0.5); err != nil {
		t.Fatalf("RecalcCandidates: %v", err)
	}
	if e.history.Len() != 2 {
		t.Fatalf("history length = %d, want 2", e.history.Len())
	}
}

func TestDeepResearchReplacesRange(t *testing.T) {
	e := loadedEditor(t)
	if err := e.DeepResearch(context.Background(), 0.1, 0.5); err != nil {
		t.Fatalf("DeepResearch: %v", err)
	}
	if e.history.Len() != 2 {
		t.Fatalf("history length = %d, want 2", e.history.Len())
	}
}

func TestPlayRenderStopCycle(t *testing.T) {
	e := loadedEditor(t)
	if err := e.Play(0, 1.0, false, 0, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	out, err := e.Render(512)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out) != 512 {
		t.Fatalf("rendered %d frames, want 512", len(out))
	}
	e.Stop()
	if _, err := e.Render(512); err == nil {
		t.Fatal("expected an error rendering after Stop")
	}
}

func TestRenderWithoutPlayFails(t *testing.T) {
	e := loadedEditor(t)
	if _, err := e.Render(512); err == nil {
		t.Fatal("expected an error rendering before Play")
	}
}

func TestUpdateMixerAffectsRender(t *testing.T) {
	e := loadedEditor(t)
	e.UpdateMixer(playback.MixerState{Original: playback.VoiceState{Enabled: false}})
	if err := e.Play(0, 1.0, false, 0, 0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, err := e.Render(64); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestExportImportProjectRoundTrip(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	data, err := e.ExportProjectJSON()
	if err != nil {
		t.Fatalf("ExportProjectJSON: %v", err)
	}

	e2 := New(DefaultConfig(), nil)
	if err := e2.ImportProjectJSON(data); err != nil {
		t.Fatalf("ImportProjectJSON: %v", err)
	}
	if len(e2.notes) != 1 {
		t.Fatalf("expected 1 imported note, got %d", len(e2.notes))
	}
	if e2.history.Len() != 1 {
		t.Fatalf("history length = %d, want 1", e2.history.Len())
	}
}

func TestExportPitchAndNotesCSV(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	if _, err := e.ExportPitchCSV(); err != nil {
		t.Fatalf("ExportPitchCSV: %v", err)
	}
	if _, err := e.ExportNotesCSV(); err != nil {
		t.Fatalf("ExportNotesCSV: %v", err)
	}
}

func TestExportSVL(t *testing.T) {
	e := loadedEditor(t)
	if err := e.CreateOrReplaceNote(0.1, 0.5); err != nil {
		t.Fatalf("CreateOrReplaceNote: %v", err)
	}
	svl, err := e.ExportSVL()
	if err != nil {
		t.Fatalf("ExportSVL: %v", err)
	}
	if len(svl.Pitch) == 0 || len(svl.Notes) == 0 {
		t.Fatal("expected non-empty pitch and notes SVL output")
	}
}

func TestSetZoomAndViewStart(t *testing.T) {
	e := loadedEditor(t)
	e.SetZoom(2.5)
	e.SetViewStart(1.2)
	e.Seek(0.5)
	if e.view.ZoomX != 2.5 {
		t.Errorf("ZoomX = %v, want 2.5", e.view.ZoomX)
	}
}

func TestShiftCandidateUsesAlternative(t *testing.T) {
	e := loadedEditor(t)
	idx := -1
	for i, f := range e.track.Frames {
		if len(f.Candidates) > 1 {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Skip("no frame with multiple candidates in this synthetic track")
	}
	if err := e.ShiftCandidate(idx, 1); err != nil {
		t.Fatalf("ShiftCandidate: %v", err)
	}
}

func TestShiftCandidateOutOfRangeFails(t *testing.T) {
	e := loadedEditor(t)
	if err := e.ShiftCandidate(len(e.track.Frames)+10, 0); err == nil {
		t.Fatal("expected an error for an out-of-range frame index")
	}
}
