// Package interchange implements the three serialized formats the
// editor round-trips: project JSON, pitch/notes CSV, and SVL XML.
package interchange

import (
	"encoding/json"

	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pitcherr"
	"github.com/kjanssen/pitchscribe/pyin"
)

const ProjectVersion = "1.2"

// ProjectPitchFrame is the on-disk shape of one pitch frame; Candidates
// is omitted entirely when empty rather than serialized as an empty
// array. MarshalProject never fills Candidates and ToTrackAndNotes does
// not read it, so a frame's alternative candidates are not saved in or
// restored from a project file.
type ProjectPitchFrame struct {
	Time        float64   `json:"time"`
	Frequency   float64   `json:"frequency"`
	Probability float64   `json:"probability"`
	Candidates  []float64 `json:"candidates,omitempty"`
}

// ProjectNote is the on-disk shape of one note. State is an optional
// free-form tag (e.g. a UI selection/color state) that is accepted on
// parse but never interpreted by the core; notemodel.Note has no State,
// so ToTrackAndNotes drops it and MarshalProject never writes it.
type ProjectNote struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Pitch float64 `json:"pitch"`
	State *string `json:"state,omitempty"`
}

// ViewState captures the editor's viewport so a reopened project
// restores the user's scroll/zoom position.
type ViewState struct {
	ZoomX      float64 `json:"zoomX"`
	ViewStartX float64 `json:"viewStartX"`
}

// Settings captures the analysis mode in effect when the project was
// last saved.
type Settings struct {
	Threshold    float64 `json:"threshold"`
	RMSThreshold float64 `json:"rmsThreshold"`
	DeepSearch   bool    `json:"deepSearch"`
}

// Project is the full on-disk project file.
type Project struct {
	Version    string              `json:"version"`
	FileName   string              `json:"fileName"`
	SampleRate int                 `json:"sampleRate"`
	PitchData  []ProjectPitchFrame `json:"pitchData"`
	Notes      []ProjectNote       `json:"notes"`
	ViewState  ViewState           `json:"viewState"`
	Settings   Settings            `json:"settings"`
}

// MarshalProject builds the canonical on-disk JSON for track/notes.
func MarshalProject(fileName string, sampleRate int, track *pyin.PitchTrack, notes notemodel.List, view ViewState, settings Settings) ([]byte, error) {
	p := Project{
		Version:    ProjectVersion,
		FileName:   fileName,
		SampleRate: sampleRate,
		ViewState:  view,
		Settings:   settings,
	}
	if track != nil {
		p.PitchData = make([]ProjectPitchFrame, len(track.Frames))
		for i, f := range track.Frames {
			p.PitchData[i] = ProjectPitchFrame{Time: f.Timestamp, Frequency: f.Frequency, Probability: f.Probability}
		}
	}
	p.Notes = make([]ProjectNote, len(notes))
	for i, n := range notes {
		p.Notes[i] = ProjectNote{ID: n.ID, Start: n.Start, End: n.End, Pitch: n.Pitch}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "interchange.MarshalProject", err)
	}
	return data, nil
}

// UnmarshalProject parses data into a Project, rejecting a file whose
// version field is missing or empty; a non-empty version string is not
// compared against ProjectVersion.
func UnmarshalProject(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "interchange.UnmarshalProject", err)
	}
	if p.Version == "" {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "interchange.UnmarshalProject", errMissingVersion)
	}
	return &p, nil
}

// ToTrackAndNotes converts a parsed Project into the in-memory types the
// rest of the editor operates on.
func (p *Project) ToTrackAndNotes() (*pyin.PitchTrack, notemodel.List) {
	track := &pyin.PitchTrack{SampleRate: p.SampleRate, Frames: make([]pyin.PitchFrame, len(p.PitchData))}
	for i, f := range p.PitchData {
		track.Frames[i] = pyin.PitchFrame{
			Timestamp:   f.Time,
			Frequency:   f.Frequency,
			Probability: f.Probability,
			HasPitch:    f.Frequency > 0,
		}
	}
	notes := make(notemodel.List, len(p.Notes))
	for i, n := range p.Notes {
		notes[i] = notemodel.Note{ID: n.ID, Start: n.Start, End: n.End, Pitch: n.Pitch}
	}
	return track, notes
}
