// Package editor provides the single orchestrating entry point for the
// whole system: it owns the pYIN engine, the spectrogram engine, the
// undo/redo history, and the playback scheduler, and exposes every
// user-facing editing operation as one method each, committing a new
// history snapshot on every mutation that succeeds.
package editor

import (
	"github.com/kjanssen/pitchscribe/audiodecode"
	"github.com/kjanssen/pitchscribe/history"
	"github.com/kjanssen/pitchscribe/pyin"
)

// Config holds the tunables an Editor is constructed with.
type Config struct {
	Analysis   pyin.Config
	DeepSearch pyin.Config
	Audio      audiodecode.Config
	HistoryCap int
}

// DefaultConfig returns the settings a freshly opened editor starts
// with: a conservative analysis pass, DC-offset removal on decode, and
// the standard undo-history depth.
func DefaultConfig() Config {
	return Config{
		Analysis:   pyin.DefaultConfig(),
		DeepSearch: pyin.DeepSearchConfig(),
		Audio:      audiodecode.DefaultConfig(),
		HistoryCap: history.DefaultCap,
	}
}
