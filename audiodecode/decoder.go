// Package audiodecode implements the decode/encode boundary of the
// editor: turning a WAV byte stream into mono float64 samples and back,
// down-mixing multi-channel input and removing DC offset before any
// analysis sees the signal.
package audiodecode

import (
	"bytes"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kjanssen/pitchscribe/algorithms/filters"
	"github.com/kjanssen/pitchscribe/logging"
	"github.com/kjanssen/pitchscribe/pitcherr"
)

// Buffer is the decoded, analysis-ready form of an audio file: mono
// samples normalized to [-1, 1].
type Buffer struct {
	Samples    []float64
	SampleRate int
	Duration   time.Duration
}

// Config controls decode-time preprocessing.
type Config struct {
	RemoveDCOffset bool
}

// DefaultConfig enables DC-offset removal, matching the assumption every
// downstream YIN/FFT consumer makes about a zero-centered signal.
func DefaultConfig() Config {
	return Config{RemoveDCOffset: true}
}

// Decoder decodes WAV byte streams into Buffer.
type Decoder struct {
	cfg    Config
	logger logging.Logger
}

// NewDecoder builds a Decoder with cfg, defaulting to the global logger
// if logger is nil.
func NewDecoder(cfg Config, logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// Decode parses data as a RIFF/WAVE stream and returns a mono Buffer.
func (d *Decoder) Decode(data []byte) (*Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Decode", errInvalidWAV)
	}

	duration, err := dec.Duration()
	if err != nil {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Decode", err)
	}

	totalSamples := int(duration.Seconds() * float64(dec.SampleRate))
	if totalSamples == 0 {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Decode", errEmptyFile)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(dec.NumChans),
			SampleRate:  int(dec.SampleRate),
		},
		Data:           make([]int, totalSamples*int(dec.NumChans)),
		SourceBitDepth: int(dec.BitDepth),
	}

	if _, err := dec.PCMBuffer(buf); err != nil {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Decode", err)
	}

	mono := downmixAndNormalize(buf)

	if d.cfg.RemoveDCOffset {
		dc := filters.NewDCRemoval()
		mono = dc.ProcessBuffer(mono)
	}

	d.logger.Debug("decoded wav", logging.Fields{
		"sample_rate": buf.Format.SampleRate,
		"channels":    buf.Format.NumChannels,
		"samples":     len(mono),
	})

	return &Buffer{Samples: mono, SampleRate: buf.Format.SampleRate, Duration: duration}, nil
}

func downmixAndNormalize(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	maxVal := float64(int(1) << (uint(buf.SourceBitDepth) - 1))
	frames := len(buf.Data) / channels

	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / maxVal
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Encode writes samples as a 16-bit mono WAV file.
func Encode(samples []float64, sampleRate int) ([]byte, error) {
	out := newMemWriteSeeker()
	enc := wav.NewEncoder(out, sampleRate, 16, 1, 1)

	intData := make([]int, len(samples))
	for i, s := range samples {
		v := s * 32767
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		intData[i] = int(math.Round(v))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   intData,
	}
	if err := enc.Write(buf); err != nil {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Encode", err)
	}
	if err := enc.Close(); err != nil {
		return nil, pitcherr.New(pitcherr.DecodeFailed, "audiodecode.Encode", err)
	}
	return out.bytes(), nil
}

// memWriteSeeker is a minimal io.WriteSeeker over an in-memory buffer,
// needed because wav.Encoder seeks back to patch the RIFF/data chunk
// sizes after writing, and bytes.Buffer does not implement Seek.
type memWriteSeeker struct {
	buf []byte
	pos int64
}

func newMemWriteSeeker() *memWriteSeeker {
	return &memWriteSeeker{}
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case 0:
		target = offset
	case 1:
		target = m.pos + offset
	case 2:
		target = int64(len(m.buf)) + offset
	}
	if target < 0 {
		return 0, errInvalidSeek
	}
	m.pos = target
	return m.pos, nil
}

func (m *memWriteSeeker) bytes() []byte { return m.buf }
