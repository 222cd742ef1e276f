// Package playback renders the three synthesis voices (original
// recording, pitch-curve oscillator, note-synth) to a mixed PCM buffer,
// using an explicit DSP graph of owned nodes and a scheduling table of
// (wallTime, event) records instead of a cyclic, shared audio-context
// graph.
package playback

import (
	"math"

	"github.com/kjanssen/pitchscribe/algorithms/common"
	"github.com/kjanssen/pitchscribe/algorithms/filters"
)

// Oscillator produces a periodic waveform at a time-varying frequency.
type Oscillator struct {
	Shape     Shape
	phase     float64
	sampleDur float64
}

// Shape selects the oscillator waveform.
type Shape int

const (
	ShapeTriangle Shape = iota
	ShapePulse
)

// PulseDuty is the duty cycle used for ShapePulse, distinguishing the
// note-synth voice's timbre from the pitch-curve voice's triangle tone.
const PulseDuty = 0.3

// NewOscillator builds an Oscillator for sampleRate.
func NewOscillator(shape Shape, sampleRate int) *Oscillator {
	return &Oscillator{Shape: shape, sampleDur: 1.0 / float64(sampleRate)}
}

// Next advances the oscillator by one sample at freq Hz and returns the
// waveform value in [-1, 1]. freq <= 0 silences the oscillator without
// resetting its phase, so it resumes in tune when voicing returns.
func (o *Oscillator) Next(freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	o.phase += freq * o.sampleDur
	o.phase -= math.Floor(o.phase)

	switch o.Shape {
	case ShapePulse:
		if o.phase < PulseDuty {
			return 1
		}
		return -1
	default: // ShapeTriangle
		// triangle: -1->1 over the first half, 1->-1 over the second,
		// expressed as a symmetric ramp around the phase
		if o.phase < 0.5 {
			return 4*o.phase - 1
		}
		return 3 - 4*o.phase
	}
}

// Reset zeroes the oscillator's phase, used when a voice starts a new
// note rather than continuing a sustained pitch curve.
func (o *Oscillator) Reset() { o.phase = 0 }

// EnvelopeStage is one linear ramp segment of an ADSR envelope.
type EnvelopeStage struct {
	Duration float64 // seconds
	To       float64 // target level reached at the end of this stage
}

// ADSR renders an attack/decay/sustain/release amplitude envelope.
type ADSR struct {
	Attack, Decay, Release float64 // seconds
	Sustain                float64 // level held between decay and release
}

// DefaultADSR is a short, percussive-free envelope suited to sustained
// vowel sounds rather than a plucked instrument.
func DefaultADSR() ADSR {
	return ADSR{Attack: 0.01, Decay: 0.05, Sustain: 0.8, Release: 0.05}
}

// Level returns the envelope's amplitude at t seconds into a note of the
// given total duration.
func (a ADSR) Level(t, noteDuration float64) float64 {
	releaseStart := noteDuration - a.Release
	switch {
	case t < 0:
		return 0
	case t < a.Attack:
		return common.Lerp(0, 1, t/a.Attack)
	case t < a.Attack+a.Decay:
		return common.Lerp(1, a.Sustain, (t-a.Attack)/a.Decay)
	case t < releaseStart:
		return a.Sustain
	case t < noteDuration:
		return common.Lerp(a.Sustain, 0, (t-releaseStart)/a.Release)
	default:
		return 0
	}
}

// Gain is a single-multiplier mixer channel with an exponential ramp
// toward a target level, avoiding audible clicks on mute/unmute.
type Gain struct {
	level, target float64
	rampPerSample float64
}

// NewGain builds a Gain that settles to a new target over rampSeconds at
// sampleRate (~100ms per the mixer's click-free requirement).
func NewGain(rampSeconds float64, sampleRate int) *Gain {
	samples := rampSeconds * float64(sampleRate)
	if samples < 5 {
		samples = 5
	}
	// Five time constants fit in rampSeconds, so the level is within 1%
	// of the target once rampSeconds have passed.
	return &Gain{rampPerSample: 5 / samples}
}

// SetTarget schedules a new gain level to ramp toward.
func (g *Gain) SetTarget(target float64) { g.target = target }

// Next advances the ramp by one sample and returns level*input.
func (g *Gain) Next(input float64) float64 {
	g.level += (g.target - g.level) * g.rampPerSample
	return g.level * input
}

// LowPass wraps the bandpass biquad as a narrow low-pass by driving it
// with a high Q centered near cutoff; the pitch-curve voice uses it for
// its ~400-600Hz low-pass per the mixer's tone-shaping requirement.
type LowPass struct {
	bf *filters.BandpassFilter
}

// lowPassQ is deliberately high: a narrow bandpass centered at the
// cutoff approximates a low-pass roll-off for the pitch voice's tone
// shaping without a dedicated low-pass biquad in the kept filter set.
const lowPassQ = 4.0

// NewLowPass builds a LowPass at cutoffHz for sampleRate.
func NewLowPass(sampleRate int, cutoffHz float64) *LowPass {
	return &LowPass{bf: filters.NewBandpassFilterWithQ(sampleRate, cutoffHz, lowPassQ)}
}

// Process filters one sample.
func (l *LowPass) Process(x float64) float64 { return l.bf.Process(x) }
