package audiodecode

import (
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// encodeStereo writes interleaved stereo samples as a 16-bit WAV file,
// used only to exercise Decoder's downmix path.
func encodeStereo(interleaved []float64, sampleRate int) ([]byte, error) {
	out := newMemWriteSeeker()
	enc := wav.NewEncoder(out, sampleRate, 16, 2, 1)

	intData := make([]int, len(interleaved))
	for i, s := range interleaved {
		intData[i] = int(math.Round(s * 32767))
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   intData,
	}
	if err := enc.Write(buf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.bytes(), nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const sampleRate = 44100
	samples := make([]float64, sampleRate/10)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}

	data, err := Encode(samples, sampleRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := NewDecoder(Config{}, nil)
	buf, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate != sampleRate {
		t.Errorf("SampleRate = %d, want %d", buf.SampleRate, sampleRate)
	}
	if len(buf.Samples) == 0 {
		t.Fatal("expected decoded samples")
	}

	maxErr := 0.0
	for i := range samples {
		if i >= len(buf.Samples) {
			break
		}
		diff := math.Abs(samples[i] - buf.Samples[i])
		if diff > maxErr {
			maxErr = diff
		}
	}
	if maxErr > 0.01 {
		t.Errorf("round-trip quantization error too large: %v", maxErr)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	dec := NewDecoder(DefaultConfig(), nil)
	if _, err := dec.Decode([]byte("not a wav file")); err == nil {
		t.Fatal("expected an error decoding non-WAV data")
	}
}

func TestDecodeDownmixesStereo(t *testing.T) {
	// Build a 2-channel signal where left=+1 and right=-1 at every sample;
	// the mono downmix should therefore be ~0 everywhere.
	const sampleRate = 8000
	n := 100
	samples := make([]float64, n*2)
	for i := 0; i < n; i++ {
		samples[2*i] = 1
		samples[2*i+1] = -1
	}

	stereoData, err := encodeStereo(samples, sampleRate)
	if err != nil {
		t.Fatalf("encodeStereo: %v", err)
	}

	dec := NewDecoder(Config{}, nil)
	buf, err := dec.Decode(stereoData)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, s := range buf.Samples {
		if math.Abs(s) > 0.01 {
			t.Fatalf("sample %d: got %v, want ~0 from a +1/-1 downmix", i, s)
		}
	}
}
