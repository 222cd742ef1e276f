package pyin

import "testing"

func TestViterbiDecodePrefersConsistentPath(t *testing.T) {
	// Frame 1 has an ambiguous octave pair; frames 0 and 2 anchor it at 220 Hz.
	frames := [][]PitchCandidate{
		{{Frequency: 220, Probability: 0.9}, {Frequency: 0, Probability: 0.1}},
		{{Frequency: 220, Probability: 0.5}, {Frequency: 440, Probability: 0.5}},
		{{Frequency: 220, Probability: 0.9}, {Frequency: 0, Probability: 0.1}},
	}

	path := viterbiDecode(frames)
	if len(path) != 3 {
		t.Fatalf("expected 3 path entries, got %d", len(path))
	}
	if frames[1][path[1]].Frequency != 220 {
		t.Errorf("ambiguous frame resolved to %.0f Hz, want 220 (octave continuity)", frames[1][path[1]].Frequency)
	}
}

func TestViterbiDecodeEmpty(t *testing.T) {
	if path := viterbiDecode(nil); path != nil {
		t.Errorf("expected nil path for empty input, got %v", path)
	}
}
