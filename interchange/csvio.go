package interchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pitcherr"
	"github.com/kjanssen/pitchscribe/pyin"
)

var pitchCSVHeader = []string{"Time(s)", "Frequency(Hz)", "Probability"}
var notesCSVHeader = []string{"Onset(s)", "Duration(s)", "Pitch(Hz)"}

// WritePitchCSV writes every voiced frame of track as a CSV row.
func WritePitchCSV(w io.Writer, track *pyin.PitchTrack) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pitchCSVHeader); err != nil {
		return pitcherr.New(pitcherr.InvalidCSV, "interchange.WritePitchCSV", err)
	}
	for _, f := range track.Frames {
		if !f.HasPitch {
			continue
		}
		row := []string{
			strconv.FormatFloat(f.Timestamp, 'f', 6, 64),
			strconv.FormatFloat(f.Frequency, 'f', 3, 64),
			strconv.FormatFloat(f.Probability, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return pitcherr.New(pitcherr.InvalidCSV, "interchange.WritePitchCSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pitcherr.New(pitcherr.InvalidCSV, "interchange.WritePitchCSV", err)
	}
	return nil
}

// WriteNotesCSV writes each note in notes as a CSV row.
func WriteNotesCSV(w io.Writer, notes notemodel.List) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(notesCSVHeader); err != nil {
		return pitcherr.New(pitcherr.InvalidCSV, "interchange.WriteNotesCSV", err)
	}
	for _, n := range notes {
		row := []string{
			strconv.FormatFloat(n.Start, 'f', 6, 64),
			strconv.FormatFloat(n.Duration(), 'f', 6, 64),
			strconv.FormatFloat(n.Pitch, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return pitcherr.New(pitcherr.InvalidCSV, "interchange.WriteNotesCSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pitcherr.New(pitcherr.InvalidCSV, "interchange.WriteNotesCSV", err)
	}
	return nil
}

// ReadNotesCSV parses a notes CSV (as written by WriteNotesCSV) back
// into a notemodel.List, assigning each note a fresh ID.
func ReadNotesCSV(r io.Reader) (notemodel.List, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, pitcherr.New(pitcherr.InvalidCSV, "interchange.ReadNotesCSV", err)
	}
	if len(rows) == 0 || !headerMatches(rows[0], notesCSVHeader) {
		return nil, pitcherr.New(pitcherr.InvalidCSV, "interchange.ReadNotesCSV", errBadCSVHeader)
	}

	notes := make(notemodel.List, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, pitcherr.New(pitcherr.InvalidCSV, "interchange.ReadNotesCSV", fmt.Errorf("row %d: %w", i+2, errBadCSVRow))
		}
		onset, err1 := strconv.ParseFloat(row[0], 64)
		dur, err2 := strconv.ParseFloat(row[1], 64)
		pitchHz, err3 := strconv.ParseFloat(row[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, pitcherr.New(pitcherr.InvalidCSV, "interchange.ReadNotesCSV", fmt.Errorf("row %d: %w", i+2, errBadCSVRow))
		}
		notes = append(notes, notemodel.Note{
			ID:    notemodel.NewID(),
			Start: onset,
			End:   onset + dur,
			Pitch: pitchHz,
		})
	}
	return notes, nil
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
