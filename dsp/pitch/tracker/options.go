package tracker

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

const (
	// DefaultDetectLevelThreshold is the default silence gate (-40 dB).
	DefaultDetectLevelThreshold = 0.01
	// MinDetectLevelThreshold is the lowest silence gate (-80 dB).
	MinDetectLevelThreshold = 0.0001
	// MaxDetectLevelThreshold is the highest silence gate (0 dB).
	MaxDetectLevelThreshold = 1.0

	// DefaultRecordsPerSecond is the default record rate (one per 20 ms).
	DefaultRecordsPerSecond = 50
	// MinRecordsPerSecond is the lowest record rate.
	MinRecordsPerSecond = 1
	// MaxRecordsPerSecond is the highest record rate.
	MaxRecordsPerSecond = 100

	// DefaultDetectOverlap is the offset in seconds between the two windows
	// analysed per record.
	DefaultDetectOverlap = 0.005
	// DefaultMaxPitchRate bounds the relative pitch change per second
	// between the two windows of a record.
	DefaultMaxPitchRate = 10.0
)

// Config holds the tracker parameters.
type Config struct {
	// SampleRate in Hz. Zero leaves the tracker unconfigured.
	SampleRate float64
	// DetectLevelThreshold is the peak level below which a window counts as
	// silence. Clamped to [MinDetectLevelThreshold, MaxDetectLevelThreshold].
	DetectLevelThreshold float64
	// RecordsPerSecond is the record rate, clamped to
	// [MinRecordsPerSecond, MaxRecordsPerSecond].
	RecordsPerSecond int
	// RecordHistory enables the in-memory record history.
	RecordHistory bool
	// HistoryCapacity bounds the history. 0 means unbounded.
	HistoryCapacity int
	// DetectOverlap is the offset between the two windows in seconds.
	DetectOverlap float64
	// MaxPitchRate is the largest accepted relative pitch change per
	// second between the two windows.
	MaxPitchRate float64
	// SearchOptions tune the frequency search.
	SearchOptions []pitch.SearchOption
	// Logger receives configuration events at debug level.
	Logger zerolog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the default tracker configuration without a sample
// rate.
func DefaultConfig() Config {
	return Config{
		DetectLevelThreshold: DefaultDetectLevelThreshold,
		RecordsPerSecond:     DefaultRecordsPerSecond,
		DetectOverlap:        DefaultDetectOverlap,
		MaxPitchRate:         DefaultMaxPitchRate,
		Logger:               zerolog.Nop(),
	}
}

// ApplyOptions applies opts on top of DefaultConfig and clamps the result.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cfg.DetectLevelThreshold = clampThreshold(cfg.DetectLevelThreshold)
	cfg.RecordsPerSecond = clampRecordsPerSecond(cfg.RecordsPerSecond)
	cfg.HistoryCapacity = max(cfg.HistoryCapacity, 0)

	return cfg
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) { cfg.SampleRate = sampleRate }
}

// WithDetectLevelThreshold sets the silence gate.
func WithDetectLevelThreshold(level float64) Option {
	return func(cfg *Config) { cfg.DetectLevelThreshold = level }
}

// WithRecordsPerSecond sets the record rate.
func WithRecordsPerSecond(n int) Option {
	return func(cfg *Config) { cfg.RecordsPerSecond = n }
}

// WithRecordHistory enables the record history with the given capacity
// (0 = unbounded).
func WithRecordHistory(capacity int) Option {
	return func(cfg *Config) {
		cfg.RecordHistory = true
		cfg.HistoryCapacity = capacity
	}
}

// WithDetectOverlap sets the offset between the two windows in seconds.
func WithDetectOverlap(seconds float64) Option {
	return func(cfg *Config) { cfg.DetectOverlap = seconds }
}

// WithMaxPitchRate sets the largest accepted relative pitch change per
// second.
func WithMaxPitchRate(rate float64) Option {
	return func(cfg *Config) { cfg.MaxPitchRate = rate }
}

// WithSearchOptions tunes the frequency search.
func WithSearchOptions(opts ...pitch.SearchOption) Option {
	return func(cfg *Config) { cfg.SearchOptions = append(cfg.SearchOptions, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *Config) { cfg.Logger = l }
}

func clampThreshold(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultDetectLevelThreshold
	}

	return core.Clamp(v, MinDetectLevelThreshold, MaxDetectLevelThreshold)
}

func clampRecordsPerSecond(n int) int {
	return core.ClampInt(n, MinRecordsPerSecond, MaxRecordsPerSecond)
}
