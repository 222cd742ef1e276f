package pyin

import (
	"context"
	"sort"

	"github.com/kjanssen/pitchscribe/frame"
	"github.com/kjanssen/pitchscribe/logging"
	"github.com/kjanssen/pitchscribe/pitcherr"
)

// reanalyzePad is the number of extra samples analyzed on each side of
// a partial re-analysis window, giving the re-decoded path enough
// context at its edges to splice cleanly against the frames next to it.
const reanalyzePad = 4096

// Progress reports frame-level advancement during an Analyze call so a
// caller can render a progress bar.
type Progress struct {
	FramesDone  int
	FramesTotal int
}

// Engine runs pYIN analysis over an audio buffer.
type Engine struct {
	logger logging.Logger
}

// NewEngine builds an Engine, defaulting to the package-global logger if
// logger is nil.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Engine{logger: logger}
}

// Analyze computes a full PitchTrack for samples at sampleRate. progress,
// if non-nil, is offered a Progress update after every frame without
// blocking, so an update is dropped when the channel is not ready; it is
// never closed by Analyze. ctx cancellation aborts the scan and returns
// ctx.Err() wrapped as pitcherr.AnalysisFailed.
func (e *Engine) Analyze(ctx context.Context, samples []float64, sampleRate int, cfg Config, progress chan<- Progress) (*PitchTrack, error) {
	g := frame.New(sampleRate)
	n := g.FrameCount(len(samples))
	if n == 0 {
		return &PitchTrack{SampleRate: sampleRate}, nil
	}

	allCandidates := make([][]PitchCandidate, n)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, pitcherr.New(pitcherr.AnalysisFailed, "pyin.Analyze", ctx.Err())
		default:
		}

		start := i * frame.Hop
		end := start + FrameSize
		var windowed []float64
		if end <= len(samples) {
			windowed = samples[start:end]
		} else {
			windowed = make([]float64, FrameSize)
			copy(windowed, samples[start:min(end, len(samples))])
		}

		allCandidates[i] = extractCandidates(windowed, sampleRate, cfg)

		if progress != nil {
			select {
			case progress <- Progress{FramesDone: i + 1, FramesTotal: n}:
			default:
			}
		}
	}

	path := viterbiDecode(allCandidates)

	track := &PitchTrack{SampleRate: sampleRate, Frames: make([]PitchFrame, n)}
	for i := 0; i < n; i++ {
		chosen := allCandidates[i][path[i]]
		track.Frames[i] = PitchFrame{
			Timestamp:   g.TimeAt(i),
			Frequency:   chosen.Frequency,
			Probability: chosen.Probability,
			HasPitch:    chosen.Frequency > 0,
			Candidates:  allCandidates[i],
		}
	}

	despeckle(track.Frames, cfg)

	e.logger.Debug("pyin analysis complete", logging.Fields{"frames": n})
	return track, nil
}

// ReanalyzeRange re-runs Analyze over [startTime, endTime] of samples,
// padded by reanalyzePad samples on each side for decoding context (the
// leading pad rounded down to a whole hop), and merges the result back
// into track: frames from the sub-analysis whose shifted timestamp falls
// outside [startTime, endTime] are discarded,
// and existing frames inside that range are replaced. Used for "deep
// search this region" without discarding the rest of the track.
func (e *Engine) ReanalyzeRange(ctx context.Context, track *PitchTrack, samples []float64, startTime, endTime float64, cfg Config) error {
	sampleRate := track.SampleRate

	padStart := int(startTime*float64(sampleRate)) - reanalyzePad
	if padStart < 0 {
		padStart = 0
	}
	padStart -= padStart % frame.Hop // keep shifted frames on the shared grid
	padEnd := int(endTime*float64(sampleRate)) + reanalyzePad
	if padEnd > len(samples) {
		padEnd = len(samples)
	}
	if padStart >= padEnd {
		return nil
	}

	sub, err := e.Analyze(ctx, samples[padStart:padEnd], sampleRate, cfg, nil)
	if err != nil {
		return err
	}

	shift := float64(padStart) / float64(sampleRate)
	kept := make([]PitchFrame, 0, len(track.Frames)+len(sub.Frames))
	for _, f := range track.Frames {
		if f.Timestamp < startTime || f.Timestamp > endTime {
			kept = append(kept, f)
		}
	}
	for _, f := range sub.Frames {
		f.Timestamp += shift
		if f.Timestamp < startTime || f.Timestamp > endTime {
			continue
		}
		kept = append(kept, f)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Timestamp < kept[j].Timestamp })
	track.Frames = kept
	return nil
}

// despeckle removes voiced runs shorter than a few frames, treating them
// as spurious single-frame octave errors rather than real notes — short
// runs are demoted to unvoiced in place. Deep-search passes skip this:
// the whole point of a deep search is to keep a flagged short region.
func despeckle(frames []PitchFrame, cfg Config) {
	if cfg.DeepSearch {
		return
	}
	const minVoicedRun = 8

	i := 0
	for i < len(frames) {
		if !frames[i].HasPitch {
			i++
			continue
		}
		j := i
		for j < len(frames) && frames[j].HasPitch {
			j++
		}
		if j-i < minVoicedRun {
			for k := i; k < j; k++ {
				frames[k].HasPitch = false
				frames[k].Frequency = 0
			}
		}
		i = j
	}
}
