package editor

import (
	"bytes"
	"context"
	"sync"

	"github.com/kjanssen/pitchscribe/audiodecode"
	"github.com/kjanssen/pitchscribe/frame"
	"github.com/kjanssen/pitchscribe/history"
	"github.com/kjanssen/pitchscribe/interchange"
	"github.com/kjanssen/pitchscribe/logging"
	"github.com/kjanssen/pitchscribe/notemodel"
	"github.com/kjanssen/pitchscribe/pitcherr"
	"github.com/kjanssen/pitchscribe/playback"
	"github.com/kjanssen/pitchscribe/pyin"
	"github.com/kjanssen/pitchscribe/spectrogram"
)

// Editor is the top-level object a UI (or a test) drives: one loaded
// buffer, one pitch track, one note list, with every mutation committed
// to a history.Store before it becomes visible.
type Editor struct {
	cfg    Config
	logger logging.Logger

	decoder    *audiodecode.Decoder
	pyinEngine *pyin.Engine
	specEngine *spectrogram.Engine
	history    *history.Store

	mu          sync.Mutex
	fileName    string
	audioBuf    *audiodecode.Buffer
	track       *pyin.PitchTrack
	notes       notemodel.List
	spectrogram *spectrogram.Data
	altDetector *pyin.AlternativeDetector

	scheduler *playback.Scheduler
	mixer     playback.MixerState
	playing   bool

	view     interchange.ViewState
	settings interchange.Settings
}

// New builds an Editor with no audio loaded yet.
func New(cfg Config, logger logging.Logger) *Editor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logging.WithComponent(logger, "editor")
	return &Editor{
		cfg:        cfg,
		logger:     logger,
		decoder:    audiodecode.NewDecoder(cfg.Audio, logger),
		pyinEngine: pyin.NewEngine(logger),
		specEngine: spectrogram.NewEngine(),
		history:    history.NewWithCap(cfg.HistoryCap),
		mixer:      playback.DefaultMixerState(),
		settings: interchange.Settings{
			Threshold:    cfg.Analysis.Threshold,
			RMSThreshold: cfg.Analysis.RMSThreshold,
			DeepSearch:   false,
		},
	}
}

// LoadAudio decodes data as a WAV file, runs the initial pYIN and
// spectrogram passes, and commits the first history snapshot. Any
// previously loaded audio and its history are discarded.
func (e *Editor) LoadAudio(ctx context.Context, data []byte, fileName string) error {
	buf, err := e.decoder.Decode(data)
	if err != nil {
		return err
	}

	track, err := e.pyinEngine.Analyze(ctx, buf.Samples, buf.SampleRate, e.cfg.Analysis, nil)
	if err != nil {
		return err
	}

	specData, err := e.specEngine.Analyze(ctx, buf.Samples, buf.SampleRate)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileName = fileName
	e.audioBuf = buf
	e.track = track
	e.notes = nil
	e.spectrogram = specData
	e.altDetector = pyin.NewAlternativeDetector(buf.SampleRate)
	e.scheduler = playback.New(buf.Samples, buf.SampleRate)
	e.scheduler.SetMixer(e.mixer)
	e.history.Reset()
	e.history.Commit(history.Snapshot{Track: track, Notes: nil})

	e.logger.Info("audio loaded", logging.Fields{"file": fileName, "sample_rate": buf.SampleRate, "samples": len(buf.Samples)})
	return nil
}

// CreateOrReplaceNote draws a note over [start, end), deriving its pitch
// as the median of the underlying pitch track over that span, and
// commits the result.
func (e *Editor) CreateOrReplaceNote(start, end float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.CreateOrReplaceNote", errNoAudioLoaded)
	}
	pitchHz := notemodel.MedianPitch(e.track, start, end)
	next := notemodel.CreateOrReplace(e.notes, start, end, pitchHz, e.track.SampleRate)
	return e.commitNotes(next)
}

// SplitNote divides the note with id at splitTime.
func (e *Editor) SplitNote(id string, splitTime float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.SplitNote", errNoAudioLoaded)
	}
	next := notemodel.SplitNote(e.notes, e.track, id, splitTime, e.track.SampleRate)
	return e.commitNotes(next)
}

// ResizeNote moves the note with id's boundaries, pushing neighbors out
// of the way as needed.
func (e *Editor) ResizeNote(id string, newStart, newEnd float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.ResizeNote", errNoAudioLoaded)
	}
	next := notemodel.ResizeWithPush(e.notes, e.track, id, newStart, newEnd, e.track.SampleRate)
	return e.commitNotes(next)
}

// DeleteNote removes the note with id, if present.
func (e *Editor) DeleteNote(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.DeleteNote", errNoAudioLoaded)
	}
	next := make(notemodel.List, 0, len(e.notes))
	found := false
	for _, n := range e.notes {
		if n.ID == id {
			found = true
			continue
		}
		next = append(next, n)
	}
	if !found {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.DeleteNote", errNoteNotFound)
	}
	return e.commitNotes(next)
}

// ShiftCandidate replaces the chosen pitch for the frame at frameIndex
// with one of its candidates, first merging in the alternative
// detector's advisory candidates for that frame so a shift can reach
// beyond what YinCore itself proposed.
func (e *Editor) ShiftCandidate(frameIndex, candidateIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.ShiftCandidate", errNoAudioLoaded)
	}
	if frameIndex < 0 || frameIndex >= len(e.track.Frames) {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.ShiftCandidate", errNoteNotFound)
	}

	nextTrack := cloneTrack(e.track)
	merged := e.alternativeCandidatesForFrame(frameIndex, nextTrack.Frames[frameIndex].Candidates)
	nextTrack.Frames[frameIndex].Candidates = merged

	if candidateIndex < 0 || candidateIndex >= len(merged) {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.ShiftCandidate", errNoteNotFound)
	}
	chosen := merged[candidateIndex]
	nextTrack.Frames[frameIndex].Frequency = chosen.Frequency
	nextTrack.Frames[frameIndex].Probability = chosen.Probability
	nextTrack.Frames[frameIndex].HasPitch = chosen.Frequency > 0

	e.track = nextTrack
	e.history.Commit(history.Snapshot{Track: e.track, Notes: e.notes})
	return nil
}

// alternativeCandidatesForFrame extracts the audio window for
// frameIndex and merges the alternative detector's advisory candidates
// into base. Returns base unchanged if no audio is loaded or frameIndex
// falls outside it.
func (e *Editor) alternativeCandidatesForFrame(frameIndex int, base []pyin.PitchCandidate) []pyin.PitchCandidate {
	if e.altDetector == nil || e.audioBuf == nil {
		return base
	}
	start := frameIndex * frame.Hop
	if start >= len(e.audioBuf.Samples) {
		return base
	}
	end := start + pyin.FrameSize
	windowed := make([]float64, pyin.FrameSize)
	copy(windowed, e.audioBuf.Samples[start:min(end, len(e.audioBuf.Samples))])
	extra := e.altDetector.Candidates(windowed)
	return pyin.MergeCandidates(base, extra)
}

// DeleteNotePitch clears the pitch-track frames spanning the note with
// id back to unvoiced, leaving the note boundaries themselves intact.
func (e *Editor) DeleteNotePitch(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.DeleteNotePitch", errNoAudioLoaded)
	}
	var target *notemodel.Note
	for i := range e.notes {
		if e.notes[i].ID == id {
			target = &e.notes[i]
			break
		}
	}
	if target == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.DeleteNotePitch", errNoteNotFound)
	}

	nextTrack := cloneTrack(e.track)
	for i := range nextTrack.Frames {
		f := &nextTrack.Frames[i]
		if f.Timestamp >= target.Start && f.Timestamp < target.End {
			f.HasPitch = false
			f.Frequency = 0
		}
	}
	e.track = nextTrack
	e.history.Commit(history.Snapshot{Track: e.track, Notes: e.notes})
	return nil
}

// RecalcCandidates re-runs standard-accuracy pYIN analysis over
// [start, end] without relaxing despeckling, for "this region looks
// wrong, try again with a clean slate" rather than a deep search, then
// merges in the alternative detector's advisory candidates for every
// frame in range.
func (e *Editor) RecalcCandidates(ctx context.Context, start, end float64) error {
	return e.reanalyze(ctx, start, end, e.cfg.Analysis, true)
}

// DeepResearch re-runs pYIN analysis over [start, end] with relaxed
// thresholds and despeckling disabled, for a region the standard pass
// got wrong.
func (e *Editor) DeepResearch(ctx context.Context, start, end float64) error {
	return e.reanalyze(ctx, start, end, e.cfg.DeepSearch, false)
}

func (e *Editor) reanalyze(ctx context.Context, start, end float64, cfg pyin.Config, mergeAlternatives bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil || e.audioBuf == nil {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.reanalyze", errNoAudioLoaded)
	}
	nextTrack := cloneTrack(e.track)
	if err := e.pyinEngine.ReanalyzeRange(ctx, nextTrack, e.audioBuf.Samples, start, end, cfg); err != nil {
		return err
	}
	if mergeAlternatives {
		g := frame.New(nextTrack.SampleRate)
		for i := range nextTrack.Frames {
			f := &nextTrack.Frames[i]
			if f.Timestamp < start || f.Timestamp > end {
				continue
			}
			f.Candidates = e.alternativeCandidatesForFrame(g.IndexAt(f.Timestamp), f.Candidates)
		}
	}
	e.track = nextTrack
	e.history.Commit(history.Snapshot{Track: e.track, Notes: e.notes})
	return nil
}

// Undo moves the history cursor back one snapshot and applies it.
func (e *Editor) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.history.Undo()
	if !ok {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.Undo", errNothingToUndo)
	}
	e.track, e.notes = snap.Track, snap.Notes
	return nil
}

// Redo moves the history cursor forward one snapshot and applies it.
func (e *Editor) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.history.Redo()
	if !ok {
		return pitcherr.New(pitcherr.AnalysisFailed, "editor.Redo", errNothingToRedo)
	}
	e.track, e.notes = snap.Track, snap.Notes
	return nil
}

// Seek moves the view's left edge to t, the same field SetViewStart
// sets; the editor keeps no separate playhead, and an in-flight Play is
// not affected until the next Play call.
func (e *Editor) Seek(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ViewStartX = t
}

// SetZoom updates the horizontal zoom factor of the editor's view.
func (e *Editor) SetZoom(zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomX = zoom
}

// SetViewStart updates the left edge of the visible time range.
func (e *Editor) SetViewStart(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ViewStartX = t
}

// Play arms the playback scheduler against the current track/notes
// snapshot and marks the editor as playing.
func (e *Editor) Play(startTime, rate float64, loop bool, loopStart, loopEnd float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil {
		return pitcherr.New(pitcherr.PlaybackFailed, "editor.Play", errNoAudioLoaded)
	}
	e.scheduler.Play(e.track, e.notes, startTime, rate, loop, loopStart, loopEnd)
	e.playing = true
	return nil
}

// Stop marks the editor as no longer playing, after which Render returns
// an error until the next Play. The scheduler itself is left as it is;
// the next Play call re-arms it.
func (e *Editor) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

// UpdateMixer replaces the active mixer state, taking effect on the
// scheduler's next Render call.
func (e *Editor) UpdateMixer(m playback.MixerState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mixer = m
	if e.scheduler != nil {
		e.scheduler.SetMixer(m)
	}
}

// Render pulls numFrames of the current mixdown from the scheduler;
// callers drive this on an audio-output cadence while Play is active.
func (e *Editor) Render(numFrames int) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scheduler == nil || !e.playing {
		return nil, pitcherr.New(pitcherr.PlaybackFailed, "editor.Render", errNoAudioLoaded)
	}
	return e.scheduler.Render(numFrames)
}

// ExportProjectJSON serializes the current track, notes, view, and
// settings as a project file.
func (e *Editor) ExportProjectJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "editor.ExportProjectJSON", errNoAudioLoaded)
	}
	return interchange.MarshalProject(e.fileName, e.track.SampleRate, e.track, e.notes, e.view, e.settings)
}

// ImportProjectJSON replaces the current track and notes with those
// parsed from data, resetting history to a single snapshot.
func (e *Editor) ImportProjectJSON(data []byte) error {
	p, err := interchange.UnmarshalProject(data)
	if err != nil {
		return err
	}
	track, notes := p.ToTrackAndNotes()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileName = p.FileName
	e.track = track
	e.notes = notes
	e.view = p.ViewState
	e.settings = p.Settings
	if e.audioBuf != nil {
		e.scheduler = playback.New(e.audioBuf.Samples, track.SampleRate)
		e.scheduler.SetMixer(e.mixer)
	}
	e.history.Reset()
	e.history.Commit(history.Snapshot{Track: track, Notes: notes})
	return nil
}

// ExportPitchCSV writes the current track's voiced frames as CSV.
func (e *Editor) ExportPitchCSV() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return nil, pitcherr.New(pitcherr.InvalidCSV, "editor.ExportPitchCSV", errNoAudioLoaded)
	}
	var buf bytes.Buffer
	if err := interchange.WritePitchCSV(&buf, e.track); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportNotesCSV writes the current note list as CSV.
func (e *Editor) ExportNotesCSV() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var buf bytes.Buffer
	if err := interchange.WriteNotesCSV(&buf, e.notes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SVLExport bundles the two independent Sonic Visualiser layer files a
// single export action produces.
type SVLExport struct {
	Pitch []byte
	Notes []byte
}

// ExportSVL writes the current pitch track and note list as a pair of
// Sonic Visualiser layer files.
func (e *Editor) ExportSVL() (*SVLExport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return nil, pitcherr.New(pitcherr.InvalidProjectFile, "editor.ExportSVL", errNoAudioLoaded)
	}
	pitchSVL, err := interchange.WritePitchSVL(e.track)
	if err != nil {
		return nil, err
	}
	notesSVL, err := interchange.WriteNotesSVL(e.notes, e.track.SampleRate)
	if err != nil {
		return nil, err
	}
	return &SVLExport{Pitch: pitchSVL, Notes: notesSVL}, nil
}

// commitNotes replaces the note list and commits a new snapshot. Caller
// must hold e.mu.
func (e *Editor) commitNotes(next notemodel.List) error {
	e.notes = next
	e.history.Commit(history.Snapshot{Track: e.track, Notes: e.notes})
	return nil
}

// cloneTrack deep-copies a PitchTrack's frame slice so an in-progress
// edit never mutates a snapshot already committed to history.
func cloneTrack(t *pyin.PitchTrack) *pyin.PitchTrack {
	frames := make([]pyin.PitchFrame, len(t.Frames))
	copy(frames, t.Frames)
	return &pyin.PitchTrack{SampleRate: t.SampleRate, Frames: frames}
}
