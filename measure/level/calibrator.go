package level

import (
	"fmt"
	"math"
)

// Calibrator derives a noise floor from the loudest block RMS observed over
// a fixed number of samples.
type Calibrator struct {
	span    int
	fudge   float64
	seen    int
	ceiling float64
	floor   float64
	done    bool
}

// NewCalibrator returns a Calibrator observing seconds of audio at
// sampleRate. fudge must be >= 1.
func NewCalibrator(sampleRate, seconds, fudge float64) (*Calibrator, error) {
	if sampleRate <= 0 || seconds <= 0 {
		return nil, fmt.Errorf("level: calibration span must be > 0: %v s at %v Hz", seconds, sampleRate)
	}

	if fudge < 1 || math.IsNaN(fudge) {
		return nil, fmt.Errorf("level: fudge factor must be >= 1: %v", fudge)
	}

	c := &Calibrator{
		span:  max(1, int(sampleRate*seconds+0.5)),
		fudge: fudge,
	}
	c.Reset()

	return c, nil
}

// Reset restarts the observation.
func (c *Calibrator) Reset() {
	c.seen = 0
	c.ceiling = math.Inf(-1)
	c.floor = 0
	c.done = false
}

// Observe records the RMS of a block of n samples and reports whether the
// span is complete. Observations after completion are ignored.
func (c *Calibrator) Observe(rms float64, n int) bool {
	if c.done || n <= 0 {
		return c.done
	}

	c.ceiling = math.Max(c.ceiling, rms)
	c.seen += n

	if c.seen >= c.span {
		c.floor = c.ceiling * c.fudge
		c.done = true
	}

	return c.done
}

// Done reports whether the calibration span is complete.
func (c *Calibrator) Done() bool { return c.done }

// Floor returns the calibrated noise floor, or 0 before completion.
func (c *Calibrator) Floor() float64 { return c.floor }

// Ceiling returns the loudest RMS seen so far.
func (c *Calibrator) Ceiling() float64 { return c.ceiling }

// Progress returns the observed fraction of the span in [0, 1].
func (c *Calibrator) Progress() float64 {
	return math.Min(1, float64(c.seen)/float64(c.span))
}
