// Package spectrogram computes a Hann-windowed STFT magnitude matrix for
// visualization, using a worker pool sized to the host and a generation
// counter to discard results made stale by a newer analysis request.
package spectrogram

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/kjanssen/pitchscribe/algorithms/spectral"
	"github.com/kjanssen/pitchscribe/algorithms/windowing"
	"github.com/kjanssen/pitchscribe/frame"
	"github.com/kjanssen/pitchscribe/pitcherr"
)

// WindowSize and Bins are fixed per the analysis design: a 2048-sample
// Hann window yields 1024 usable magnitude bins below Nyquist.
const (
	WindowSize = 2048
	Bins       = WindowSize / 2
)

// Data is the rendered STFT magnitude matrix: Magnitude[frame][bin].
type Data struct {
	Magnitude  [][]float64
	MaxMag     float64
	SampleRate int
}

// Engine computes Data asynchronously and discards stale results using a
// generation counter instead of a cancel-and-rebuild protocol: every
// AnalyzeAsync result is delivered, and IsCurrent tells the caller whether
// a newer AnalyzeAsync call has superseded it, so the caller can drop it.
type Engine struct {
	mu         sync.Mutex
	generation int
	window     *windowing.Hann
}

// NewEngine builds a spectrogram Engine.
func NewEngine() *Engine {
	return &Engine{window: windowing.NewHann(WindowSize, true)}
}

// Result is delivered on the channel returned by AnalyzeAsync.
type Result struct {
	Data *Data
	Err  error
}

// Analyze computes the full spectrogram synchronously; ctx cancellation
// aborts mid-scan.
func (e *Engine) Analyze(ctx context.Context, samples []float64, sampleRate int) (*Data, error) {
	_ = frame.New(sampleRate) // validates sampleRate > 0
	if len(samples) < WindowSize {
		return &Data{SampleRate: sampleRate}, nil
	}
	numFrames := (len(samples)-WindowSize)/frame.Hop + 1

	magnitude := make([][]float64, numFrames)
	numWorkers := optimalWorkerCount(numFrames)

	type job struct{ idx int }
	jobs := make(chan job, numFrames)
	errs := make(chan error, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fft := spectral.NewFFT()
			for j := range jobs {
				select {
				case <-ctx.Done():
					select {
					case errs <- ctx.Err():
					default: // one error is enough; never block the drain
					}
					continue
				default:
				}
				start := j.idx * frame.Hop
				frameSamples := e.window.Apply(samples[start : start+WindowSize])
				spectrum := fft.Compute(frameSamples)
				mag := make([]float64, Bins)
				for b := 0; b < Bins; b++ {
					re, im := real(spectrum[b]), imag(spectrum[b])
					mag[b] = math.Sqrt(re*re + im*im)
				}
				magnitude[j.idx] = mag
			}
		}()
	}

	for i := 0; i < numFrames; i++ {
		jobs <- job{idx: i}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return nil, pitcherr.New(pitcherr.SpectrogramFailed, "spectrogram.Analyze", err)
		}
	}

	maxMag := 0.0
	for _, row := range magnitude {
		for _, v := range row {
			if v > maxMag {
				maxMag = v
			}
		}
	}

	return &Data{Magnitude: magnitude, MaxMag: maxMag, SampleRate: sampleRate}, nil
}

// AnalyzeAsync submits samples for background analysis, tagged with the
// engine's current generation. The result channel receives exactly one
// Result; if a newer AnalyzeAsync call is made before this one finishes,
// this call's result is still delivered in full, and IsCurrent(gen)
// reports false for it — callers should check Engine.IsCurrent(gen)
// before applying a Result to visible state.
func (e *Engine) AnalyzeAsync(ctx context.Context, samples []float64, sampleRate int) (<-chan Result, int) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		data, err := e.Analyze(ctx, samples, sampleRate)
		out <- Result{Data: data, Err: err}
		close(out)
	}()
	return out, gen
}

// IsCurrent reports whether gen is still the engine's most recent
// submission, letting a caller discard a late-arriving stale result.
func (e *Engine) IsCurrent(gen int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()
	if numFrames < 100 {
		w := numCPU / 2
		if w > numFrames {
			w = numFrames
		}
		if w < 1 {
			w = 1
		}
		return w
	}
	if numFrames < 1000 {
		if numCPU > 8 {
			return 8
		}
		return numCPU
	}
	return numCPU
}

