// Package frame defines the sample-exact time grid shared by every
// subsystem that reports or accepts a timestamp.
package frame

import "math"

// Hop is the analysis hop size in samples, shared by YinCore,
// PyinEngine, and SpectrogramEngine.
const Hop = 512

// Grid converts between frame indices and grid-aligned wall-clock
// seconds for a given sample rate.
type Grid struct {
	SampleRate int
}

// New builds a Grid for sampleRate. Panics if sampleRate <= 0, mirroring
// the precondition every analysis entry point already enforces on its
// audio buffer.
func New(sampleRate int) Grid {
	if sampleRate <= 0 {
		panic("frame: sampleRate must be positive")
	}
	return Grid{SampleRate: sampleRate}
}

// Duration is the time span of one hop, in seconds.
func (g Grid) Duration() float64 {
	return float64(Hop) / float64(g.SampleRate)
}

// TimeAt returns the grid-aligned timestamp of frame index i.
func (g Grid) TimeAt(i int) float64 {
	return float64(i) * g.Duration()
}

// IndexAt returns the frame index nearest to t.
func (g Grid) IndexAt(t float64) int {
	return int(math.Round(t / g.Duration()))
}

// Snap rounds t to the nearest grid line.
func (g Grid) Snap(t float64) float64 {
	return g.TimeAt(g.IndexAt(t))
}

// FrameCount returns how many full hops fit in numSamples.
func (g Grid) FrameCount(numSamples int) int {
	if numSamples < Hop {
		return 0
	}
	return numSamples / Hop
}
