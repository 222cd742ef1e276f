package playback

import (
	"github.com/kjanssen/pitchscribe/algorithms/common"
	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pitcherr"
	"github.com/kjanssen/pitchscribe/pyin"
)

// VoiceState is one mixer channel's enabled/volume pair.
type VoiceState struct {
	Enabled bool
	Volume  float64 // 0..1
}

// MixerState holds the three voice channels: the original recording,
// the continuous pitch-curve oscillator, and the discrete note-synth.
type MixerState struct {
	Original VoiceState
	Pitch    VoiceState
	Notes    VoiceState
}

// DefaultMixerState starts with only the original recording audible.
func DefaultMixerState() MixerState {
	return MixerState{
		Original: VoiceState{Enabled: true, Volume: 1},
		Pitch:    VoiceState{Enabled: false, Volume: 0.8},
		Notes:    VoiceState{Enabled: false, Volume: 0.8},
	}
}

// event is one scheduling-table entry: at WallTime, Apply mutates
// scheduler-owned graph state (note-on/off, mixer gain targets).
type event struct {
	WallTime float64
	Apply    func(*Scheduler)
}

// Scheduler renders the mixed playback buffer for a (PitchTrack,
// NoteList) snapshot against a time-stretched wall clock. It is rebuilt
// at play() time: the scheduling table and DSP graph nodes are read
// fresh from the snapshot passed to Play, never mutated incrementally
// from outside a render pass.
type Scheduler struct {
	sampleRate int
	original   []float64

	pitchOsc    *Oscillator
	pitchFilter *LowPass
	pitchGain   *Gain

	noteOsc   *Oscillator
	noteGain  *Gain
	origGain  *Gain
	adsr      ADSR
	interp    *common.Interpolator

	clock *Clock
	mixer MixerState

	loop      bool
	loopStart float64
	loopEnd   float64

	events []event
	track  *pyin.PitchTrack
	notes  notemodel.List
}

// New builds a Scheduler for a decoded original buffer.
func New(original []float64, sampleRate int) *Scheduler {
	return &Scheduler{
		sampleRate:  sampleRate,
		original:    original,
		pitchOsc:    NewOscillator(ShapeTriangle, sampleRate),
		pitchFilter: NewLowPass(sampleRate, 500),
		pitchGain:   NewGain(0.1, sampleRate),
		noteOsc:     NewOscillator(ShapePulse, sampleRate),
		noteGain:    NewGain(0.1, sampleRate),
		origGain:    NewGain(0.1, sampleRate),
		adsr:        DefaultADSR(),
		interp:      common.NewInterpolator(common.Linear),
		mixer:       DefaultMixerState(),
	}
}

// SetMixer updates the mixer's target volumes; ramps are applied
// sample-by-sample during the next Render call.
func (s *Scheduler) SetMixer(m MixerState) { s.mixer = m }

// Play builds the scheduling table from track/notes starting at
// startTime, re-reading the snapshot only at this call as required: a
// subsequent edit to the snapshot has no effect on an in-flight Play
// until Play is called again.
func (s *Scheduler) Play(track *pyin.PitchTrack, notes notemodel.List, startTime, rate float64, loop bool, loopStart, loopEnd float64) {
	s.track = track
	s.notes = notes
	s.clock = NewClock(startTime, rate)
	s.loop = loop
	s.loopStart = loopStart
	s.loopEnd = loopEnd
	s.events = buildNoteEvents(notes)
}

// buildNoteEvents produces one (wallTime, event) record per note, at its
// start, which resets the note-synth oscillator's phase; the voice falls
// silent after the note's end because noteAt finds no note there.
func buildNoteEvents(notes notemodel.List) []event {
	events := make([]event, 0, len(notes)*2)
	for _, n := range notes {
		note := n
		events = append(events, event{
			WallTime: note.Start,
			Apply: func(s *Scheduler) {
				s.noteOsc.Reset()
			},
		})
	}
	return events
}

// Render produces numFrames samples of the mixdown starting at the
// current clock position. Returns pitcherr.PlaybackFailed if Play has
// not been called.
func (s *Scheduler) Render(numFrames int) ([]float64, error) {
	if s.clock == nil || s.track == nil {
		return nil, pitcherr.New(pitcherr.PlaybackFailed, "playback.Render", errNotPlaying)
	}

	out := make([]float64, numFrames)
	s.pitchGain.SetTarget(voiceLevel(s.mixer.Pitch))
	s.noteGain.SetTarget(voiceLevel(s.mixer.Notes))
	s.origGain.SetTarget(voiceLevel(s.mixer.Original))

	for i := 0; i < numFrames; i++ {
		wallNow := float64(i) / float64(s.sampleRate)
		bufTime := s.clock.BufferTime(wallNow)

		if s.loop && s.loopEnd > s.loopStart && bufTime >= s.loopEnd {
			s.clock.Rearm(wallNow, s.loopStart)
			bufTime = s.loopStart
		}

		s.applyDueEvents(bufTime)

		origSample := sampleAt(s.original, bufTime, s.sampleRate)
		pitchFreq := pitchAt(s.track, s.interp, bufTime)
		pitchSample := s.pitchFilter.Process(s.pitchOsc.Next(pitchFreq))

		noteFreq, noteEnv := noteAt(s.notes, bufTime, s.adsr)
		noteSample := s.noteOsc.Next(noteFreq) * noteEnv

		mix := s.origGain.Next(origSample) + s.pitchGain.Next(pitchSample) + s.noteGain.Next(noteSample)
		out[i] = mix
	}

	return out, nil
}

func (s *Scheduler) applyDueEvents(bufTime float64) {
	for len(s.events) > 0 && s.events[0].WallTime <= bufTime {
		s.events[0].Apply(s)
		s.events = s.events[1:]
	}
}

func voiceLevel(v VoiceState) float64 {
	if !v.Enabled {
		return 0
	}
	return v.Volume
}

func sampleAt(samples []float64, t float64, sampleRate int) float64 {
	idx := t * float64(sampleRate)
	i := int(idx)
	if i < 0 || i >= len(samples) {
		return 0
	}
	return samples[i]
}

// pitchAt linearly interpolates the pitch track's frequency at bufTime,
// treating unvoiced frames as 0 Hz (oscillator silence).
func pitchAt(track *pyin.PitchTrack, interp *common.Interpolator, bufTime float64) float64 {
	if track == nil || len(track.Frames) == 0 {
		return 0
	}
	hopDuration := track.Frames[0].Timestamp
	if len(track.Frames) > 1 {
		hopDuration = track.Frames[1].Timestamp - track.Frames[0].Timestamp
	}
	if hopDuration <= 0 {
		return 0
	}
	index := bufTime / hopDuration

	freqs := make([]float64, len(track.Frames))
	for i, f := range track.Frames {
		freqs[i] = f.Frequency
	}
	return interp.Interpolate(freqs, index)
}

// noteAt returns the frequency and envelope level of whichever note
// contains bufTime, or (0, 0) if none does.
func noteAt(notes notemodel.List, bufTime float64, adsr ADSR) (float64, float64) {
	for _, n := range notes {
		if bufTime >= n.Start && bufTime < n.End {
			return n.Pitch, adsr.Level(bufTime-n.Start, n.Duration())
		}
	}
	return 0, 0
}
