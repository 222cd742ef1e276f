package interchange

import (
	"encoding/xml"
	"math"

	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pitcherr"
	"github.com/kjanssen/pitchscribe/pyin"
)

// svlPoint is a Sonic Visualiser sparse point-layer entry: one voiced
// pitch estimate at a sample frame.
type svlPoint struct {
	Frame int     `xml:"frame,attr"`
	Value float64 `xml:"value,attr"`
	Label string  `xml:"label,attr"`
}

// svlSegment is a Sonic Visualiser region-layer entry: one note span,
// expressed in samples.
type svlSegment struct {
	Frame    int     `xml:"frame,attr"`
	Duration int     `xml:"duration,attr"`
	Value    float64 `xml:"value,attr"`
}

type svlDataset struct {
	ID       int          `xml:"id,attr"`
	Dim      int          `xml:"dimensions,attr"`
	Points   []svlPoint   `xml:"point,omitempty"`
	Segments []svlSegment `xml:"segment,omitempty"`
}

type svlModel struct {
	ID      int    `xml:"id,attr"`
	Name    string `xml:"name,attr"`
	Dataset int    `xml:"dataset,attr"`
}

type svlLayer struct {
	XMLName xml.Name `xml:"sv"`
	Data    struct {
		Model   []svlModel   `xml:"model"`
		Dataset []svlDataset `xml:"dataset"`
	} `xml:"data"`
}

// WritePitchSVL writes track's voiced frames as a Sonic Visualiser
// sparse point layer.
func WritePitchSVL(track *pyin.PitchTrack) ([]byte, error) {
	layer := newSVLLayer("pitch", 2)
	ds := &layer.Data.Dataset[0]
	for _, f := range track.Frames {
		if !f.HasPitch {
			continue
		}
		ds.Points = append(ds.Points, svlPoint{
			Frame: int(math.Round(f.Timestamp * float64(track.SampleRate))),
			Value: f.Frequency,
			Label: "p",
		})
	}
	return marshalSVL(layer)
}

// WriteNotesSVL writes notes as a Sonic Visualiser region layer.
func WriteNotesSVL(notes notemodel.List, sampleRate int) ([]byte, error) {
	layer := newSVLLayer("notes", 3)
	ds := &layer.Data.Dataset[0]
	for _, n := range notes {
		ds.Segments = append(ds.Segments, svlSegment{
			Frame:    int(math.Round(n.Start * float64(sampleRate))),
			Duration: int(math.Round(n.Duration() * float64(sampleRate))),
			Value:    n.Pitch,
		})
	}
	return marshalSVL(layer)
}

func newSVLLayer(name string, dim int) *svlLayer {
	layer := &svlLayer{}
	layer.Data.Model = []svlModel{{ID: 0, Name: name, Dataset: 0}}
	layer.Data.Dataset = []svlDataset{{ID: 0, Dim: dim}}
	return layer
}

func marshalSVL(layer *svlLayer) ([]byte, error) {
	data, err := xml.MarshalIndent(layer, "", "  ")
	if err != nil {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "interchange.marshalSVL", err)
	}
	return append([]byte(xml.Header), data...), nil
}
