package playback

import (
	"math"
	"testing"

	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pyin"
)

func TestRenderWithoutPlayFails(t *testing.T) {
	s := New(make([]float64, 1000), 44100)
	if _, err := s.Render(100); err == nil {
		t.Fatal("expected error rendering before Play")
	}
}

func TestRenderOriginalVoiceOnly(t *testing.T) {
	const sampleRate = 8000
	original := make([]float64, sampleRate)
	for i := range original {
		original[i] = 1.0 // constant so the gain ramp settling is easy to reason about
	}

	s := New(original, sampleRate)
	track := &pyin.PitchTrack{SampleRate: sampleRate}
	s.Play(track, nil, 0, 1.0, false, 0, 0)

	out, err := s.Render(sampleRate / 10)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// After the gain ramp settles, output should approach the original
	// buffer's constant value since Pitch/Notes voices are disabled by
	// DefaultMixerState.
	last := out[len(out)-1]
	if math.Abs(last-1.0) > 0.05 {
		t.Errorf("settled output = %v, want close to 1.0", last)
	}
}

func TestRenderMutedVoiceIsSilent(t *testing.T) {
	const sampleRate = 8000
	original := make([]float64, sampleRate)
	for i := range original {
		original[i] = 1.0
	}
	s := New(original, sampleRate)
	s.SetMixer(MixerState{}) // everything disabled
	track := &pyin.PitchTrack{SampleRate: sampleRate}
	s.Play(track, nil, 0, 1.0, false, 0, 0)

	out, _ := s.Render(sampleRate / 10)
	last := out[len(out)-1]
	if math.Abs(last) > 1e-6 {
		t.Errorf("fully muted mixer should settle near 0, got %v", last)
	}
}

func TestNoteAtReturnsNoteFrequencyWithinSpan(t *testing.T) {
	notes := notemodel.List{{ID: "a", Start: 0.1, End: 0.3, Pitch: 440}}
	freq, env := noteAt(notes, 0.15, DefaultADSR())
	if freq != 440 {
		t.Errorf("freq = %v, want 440", freq)
	}
	if env <= 0 {
		t.Errorf("expected positive envelope level mid-note, got %v", env)
	}

	freq, _ = noteAt(notes, 0.5, DefaultADSR())
	if freq != 0 {
		t.Errorf("freq outside any note span = %v, want 0", freq)
	}
}

func TestADSRLevelShape(t *testing.T) {
	a := ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.1}
	const dur = 1.0

	if lv := a.Level(-0.01, dur); lv != 0 {
		t.Errorf("before note start: %v, want 0", lv)
	}
	if lv := a.Level(0.05, dur); lv <= 0 || lv >= 1 {
		t.Errorf("mid-attack level out of range: %v", lv)
	}
	if lv := a.Level(0.5, dur); lv != 0.5 {
		t.Errorf("sustain level = %v, want 0.5", lv)
	}
	if lv := a.Level(dur+0.01, dur); lv != 0 {
		t.Errorf("after note end: %v, want 0", lv)
	}
}

func TestClockRearmAndRate(t *testing.T) {
	c := NewClock(0, 1.0)
	if got := c.BufferTime(1.0); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("BufferTime(1.0) = %v, want 1.0", got)
	}

	c.Rearm(1.0, 5.0)
	if got := c.BufferTime(2.0); math.Abs(got-6.0) > 1e-9 {
		t.Errorf("after rearm, BufferTime(2.0) = %v, want 6.0", got)
	}

	c.SetRate(2.0, 0.5)
	if got := c.BufferTime(3.0); math.Abs(got-6.5) > 1e-9 {
		t.Errorf("after rate change, BufferTime(3.0) = %v, want 6.5", got)
	}
}

func TestOscillatorTriangleRange(t *testing.T) {
	osc := NewOscillator(ShapeTriangle, 8000)
	for i := 0; i < 8000; i++ {
		v := osc.Next(220)
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestOscillatorSilentBelowZeroFreq(t *testing.T) {
	osc := NewOscillator(ShapeTriangle, 8000)
	if v := osc.Next(0); v != 0 {
		t.Errorf("expected silence at freq=0, got %v", v)
	}
}
