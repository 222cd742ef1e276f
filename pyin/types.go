package pyin

// PitchCandidate is one hypothesis for the fundamental frequency of a
// single frame. Frequency == 0 denotes the unvoiced candidate.
type PitchCandidate struct {
	Frequency   float64
	Probability float64
	YinDip      float64
}

// PitchFrame is the per-hop output of analysis: the frame's timestamp,
// the selected pitch, and every candidate considered for it.
type PitchFrame struct {
	Timestamp  float64
	Frequency  float64
	Probability float64
	HasPitch   bool
	Candidates []PitchCandidate
}

// PitchTrack is an ordered sequence of PitchFrame, one per hop, spanning
// an entire analyzed buffer.
type PitchTrack struct {
	Frames     []PitchFrame
	SampleRate int
}

// Config holds the tunables for a PyinEngine.Analyze call.
type Config struct {
	// Threshold is the CMNDF dip a candidate must clear to be considered
	// voiced evidence at all (DefaultConfig uses 0.75, DeepSearchConfig
	// 0.9).
	Threshold float64
	// RMSThreshold gates frames below this energy as unvoiced outright,
	// independent of their CMNDF shape.
	RMSThreshold float64
	// MinFrequency/MaxFrequency bound the lag search range.
	MinFrequency float64
	MaxFrequency float64
	// DeepSearch widens candidate collection to every local minimum
	// instead of only those beating Threshold, at higher cost, and
	// skips despeckling — used for "analyze this region again,
	// carefully" instead of as a blanket default.
	DeepSearch bool
}

// DefaultConfig returns the tunables used for an initial, full-buffer
// pass: a conservative threshold, a voice-range frequency window, and
// deep search off.
func DefaultConfig() Config {
	return Config{
		Threshold:    0.75,
		RMSThreshold: 0.01,
		MinFrequency: 60,
		MaxFrequency: 1200,
		DeepSearch:   false,
	}
}

// DeepSearchConfig returns DefaultConfig with DeepSearch enabled and a
// Threshold above the deep-search trigger point of 0.8, for
// re-analyzing a user-flagged region; DeepSearch itself is what widens
// candidate acceptance, not the literal Threshold value.
func DeepSearchConfig() Config {
	c := DefaultConfig()
	c.Threshold = 0.9
	c.DeepSearch = true
	return c
}
