package spectrogram

import (
	"context"
	"math"
	"testing"
)

func TestAnalyzeShapeAndPeakBin(t *testing.T) {
	const sampleRate = 44100
	const freq = 1000.0
	n := sampleRate // 1 second
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}

	e := NewEngine()
	data, err := e.Analyze(context.Background(), samples, sampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(data.Magnitude) == 0 {
		t.Fatal("expected at least one frame")
	}
	for _, row := range data.Magnitude {
		if len(row) != Bins {
			t.Fatalf("expected %d bins, got %d", Bins, len(row))
		}
	}

	mid := data.Magnitude[len(data.Magnitude)/2]
	peakBin := 0
	for b, v := range mid {
		if v > mid[peakBin] {
			peakBin = b
		}
	}
	freqF := freq
	wantBin := int(freqF * WindowSize / sampleRate)
	if math.Abs(float64(peakBin-wantBin)) > 2 {
		t.Errorf("peak bin %d, want near %d (%.0f Hz)", peakBin, wantBin, freq)
	}
}

func TestAnalyzeShortBufferReturnsEmpty(t *testing.T) {
	e := NewEngine()
	data, err := e.Analyze(context.Background(), make([]float64, 100), 44100)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(data.Magnitude) != 0 {
		t.Errorf("expected no frames for a too-short buffer, got %d", len(data.Magnitude))
	}
}

func TestAnalyzeAsyncGenerationTracking(t *testing.T) {
	e := NewEngine()
	samples := make([]float64, 44100)
	_, gen1 := e.AnalyzeAsync(context.Background(), samples, 44100)
	ch2, gen2 := e.AnalyzeAsync(context.Background(), samples, 44100)
	<-ch2

	if gen1 == gen2 {
		t.Fatal("expected distinct generations for successive calls")
	}
	if e.IsCurrent(gen1) {
		t.Error("first generation should no longer be current")
	}
	if !e.IsCurrent(gen2) {
		t.Error("second generation should be current")
	}
}
