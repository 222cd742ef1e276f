package interchange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pyin"
)

func sampleTrack() *pyin.PitchTrack {
	return &pyin.PitchTrack{
		SampleRate: 44100,
		Frames: []pyin.PitchFrame{
			{Timestamp: 0, Frequency: 0, HasPitch: false},
			{Timestamp: 0.0116, Frequency: 220, Probability: 0.9, HasPitch: true},
			{Timestamp: 0.0232, Frequency: 221, Probability: 0.9, HasPitch: true},
		},
	}
}

func sampleNotes() notemodel.List {
	return notemodel.List{
		{ID: "n1", Start: 0, End: 1, Pitch: 220},
		{ID: "n2", Start: 1, End: 2, Pitch: 330},
	}
}

func TestProjectRoundTrip(t *testing.T) {
	track := sampleTrack()
	notes := sampleNotes()

	data, err := MarshalProject("take1.wav", track.SampleRate, track, notes, ViewState{ZoomX: 2}, Settings{Threshold: 0.1})
	if err != nil {
		t.Fatalf("MarshalProject: %v", err)
	}

	p, err := UnmarshalProject(data)
	if err != nil {
		t.Fatalf("UnmarshalProject: %v", err)
	}
	if p.Version != ProjectVersion {
		t.Errorf("Version = %q, want %q", p.Version, ProjectVersion)
	}

	gotTrack, gotNotes := p.ToTrackAndNotes()
	if len(gotTrack.Frames) != len(track.Frames) {
		t.Fatalf("frame count = %d, want %d", len(gotTrack.Frames), len(track.Frames))
	}
	if len(gotNotes) != len(notes) {
		t.Fatalf("note count = %d, want %d", len(gotNotes), len(notes))
	}
	if gotNotes[0].Pitch != 220 {
		t.Errorf("note pitch = %v, want 220", gotNotes[0].Pitch)
	}
}

func TestUnmarshalProjectRejectsMissingVersion(t *testing.T) {
	if _, err := UnmarshalProject([]byte(`{"fileName":"x"}`)); err == nil {
		t.Fatal("expected an error for a missing version field")
	}
}

func TestUnmarshalProjectRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalProject([]byte("not json")); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestPitchCSVRoundTripSkipsUnvoicedFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePitchCSV(&buf, sampleTrack()); err != nil {
		t.Fatalf("WritePitchCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 { // header + 2 voiced frames
		t.Fatalf("expected header + 2 rows, got %d lines: %q", len(lines), buf.String())
	}
}

func TestNotesCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	notes := sampleNotes()
	if err := WriteNotesCSV(&buf, notes); err != nil {
		t.Fatalf("WriteNotesCSV: %v", err)
	}

	got, err := ReadNotesCSV(&buf)
	if err != nil {
		t.Fatalf("ReadNotesCSV: %v", err)
	}
	if len(got) != len(notes) {
		t.Fatalf("got %d notes, want %d", len(got), len(notes))
	}
	if got[0].Start != 0 || got[0].End != 1 || got[0].Pitch != 220 {
		t.Errorf("note 0 = %+v, want start=0 end=1 pitch=220", got[0])
	}
}

func TestReadNotesCSVRejectsBadHeader(t *testing.T) {
	r := strings.NewReader("a,b,c\n1,2,3\n")
	if _, err := ReadNotesCSV(r); err == nil {
		t.Fatal("expected an error for an unrecognized header")
	}
}

func TestWritePitchSVLProducesValidXML(t *testing.T) {
	data, err := WritePitchSVL(sampleTrack())
	if err != nil {
		t.Fatalf("WritePitchSVL: %v", err)
	}
	if !strings.Contains(string(data), "<point") {
		t.Errorf("expected at least one <point> element, got %s", data)
	}
}

func TestWriteNotesSVLProducesSegments(t *testing.T) {
	data, err := WriteNotesSVL(sampleNotes(), 44100)
	if err != nil {
		t.Fatalf("WriteNotesSVL: %v", err)
	}
	if !strings.Contains(string(data), "<segment") {
		t.Errorf("expected at least one <segment> element, got %s", data)
	}
}
