package level

import "github.com/cwbudde/algo-pitch/dsp/core"

const (
	// DefaultReference is the amplitude that reads 0 dB (full scale).
	DefaultReference = 1.0
	// DefaultFudgeFactor widens the calibrated noise ceiling by 21%.
	DefaultFudgeFactor = 1.21
	// DefaultCalibrationSeconds is the span observed during calibration.
	DefaultCalibrationSeconds = 2.0
)

// MeterConfig defines configuration for the level meter.
type MeterConfig struct {
	core.ProcessorConfig

	Reference          float64
	NoiseFloor         float64
	FudgeFactor        float64
	CalibrationSeconds float64
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns the defaults: dBFS reference, no noise floor,
// two seconds of calibration widened by 21%.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		ProcessorConfig:    core.DefaultProcessorConfig(),
		Reference:          DefaultReference,
		FudgeFactor:        DefaultFudgeFactor,
		CalibrationSeconds: DefaultCalibrationSeconds,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithReference sets the amplitude that reads 0 dB.
func WithReference(ref float64) MeterOption {
	return func(cfg *MeterConfig) {
		if ref > 0 {
			cfg.Reference = ref
		}
	}
}

// WithNoiseFloor sets the RMS level a block must exceed to count as sound.
func WithNoiseFloor(floor float64) MeterOption {
	return func(cfg *MeterConfig) {
		if floor >= 0 {
			cfg.NoiseFloor = floor
		}
	}
}

// WithCalibration sets the calibration span and the factor applied to the
// loudest RMS seen during it.
func WithCalibration(seconds, fudge float64) MeterOption {
	return func(cfg *MeterConfig) {
		if seconds > 0 {
			cfg.CalibrationSeconds = seconds
		}
		if fudge >= 1 {
			cfg.FudgeFactor = fudge
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
