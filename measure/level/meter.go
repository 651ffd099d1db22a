package level

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Reading is the level of one processed block.
type Reading struct {
	RMS  float64
	DB   float64
	Peak float64

	// SoundDetected is true when RMS exceeds the noise floor.
	SoundDetected bool

	// Calibrated is true for the block that completed a calibration.
	Calibrated bool
}

// Meter measures block levels against a noise floor.
type Meter struct {
	cfg MeterConfig

	floor float64
	last  Reading
	calib *Calibrator
}

// NewMeter creates a level meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	return &Meter{
		cfg:   cfg,
		floor: cfg.NoiseFloor,
		last:  Reading{DB: math.Inf(-1)},
	}
}

// Config returns the meter configuration.
func (m *Meter) Config() MeterConfig { return m.cfg }

// Process measures block and returns its reading. An empty block leaves the
// previous reading in place.
func (m *Meter) Process(block []float64) Reading {
	if len(block) == 0 {
		return m.last
	}

	rms := math.Sqrt(floats.Dot(block, block) / float64(len(block)))

	r := Reading{
		RMS:  rms,
		DB:   core.LinearToDB(rms / m.cfg.Reference),
		Peak: floats.Norm(block, math.Inf(1)),
	}

	if m.calib != nil && !m.calib.Done() && m.calib.Observe(rms, len(block)) {
		m.floor = m.calib.Floor()
		r.Calibrated = true
	}

	r.SoundDetected = rms > m.floor
	m.last = r

	return r
}

// Last returns the most recent reading.
func (m *Meter) Last() Reading { return m.last }

// NoiseFloor returns the RMS threshold for sound detection.
func (m *Meter) NoiseFloor() float64 { return m.floor }

// SetNoiseFloor overrides the noise floor. Negative values are ignored.
func (m *Meter) SetNoiseFloor(floor float64) {
	if floor >= 0 {
		m.floor = floor
	}
}

// StartCalibration begins observing the configured span. The noise floor is
// replaced once the span completes.
func (m *Meter) StartCalibration() error {
	c, err := NewCalibrator(m.cfg.SampleRate, m.cfg.CalibrationSeconds, m.cfg.FudgeFactor)
	if err != nil {
		return err
	}

	m.calib = c

	return nil
}

// Calibrating reports whether a calibration is in progress.
func (m *Meter) Calibrating() bool {
	return m.calib != nil && !m.calib.Done()
}

// Reset clears the last reading and any calibration in progress. The noise
// floor is kept.
func (m *Meter) Reset() {
	m.last = Reading{DB: math.Inf(-1)}
	m.calib = nil
}
