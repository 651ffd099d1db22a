package signal

import (
	"fmt"
	"math"
)

// Oscillator is a phase-continuous sine source. Successive Fill calls
// continue the waveform without discontinuity, also across frequency
// changes.
type Oscillator struct {
	sampleRate float64
	freq       float64
	amplitude  float64
	phase      float64
	step       float64
}

// NewOscillator returns a sine oscillator starting at phase 0.
func NewOscillator(sampleRate, freqHz, amplitude float64) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %v", sampleRate)
	}

	o := &Oscillator{sampleRate: sampleRate, amplitude: amplitude}
	if err := o.SetFrequency(freqHz); err != nil {
		return nil, err
	}

	return o, nil
}

// SetFrequency changes the frequency, keeping the current phase.
func (o *Oscillator) SetFrequency(freqHz float64) error {
	if freqHz < 0 || freqHz > o.sampleRate/2 || math.IsNaN(freqHz) {
		return fmt.Errorf("oscillator frequency must be in [0, %g]: %v", o.sampleRate/2, freqHz)
	}

	o.freq = freqHz
	o.step = 2 * math.Pi * freqHz / o.sampleRate

	return nil
}

// SetAmplitude changes the peak amplitude.
func (o *Oscillator) SetAmplitude(amplitude float64) { o.amplitude = amplitude }

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freq }

// Phase returns the current phase in (-pi, pi].
func (o *Oscillator) Phase() float64 { return o.phase }

// Reset sets the phase to p, wrapped into (-pi, pi].
func (o *Oscillator) Reset(p float64) { o.phase = wrapPhase(p) }

// Fill overwrites dst with the next len(dst) samples.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = o.amplitude * math.Sin(o.phase)
		o.phase = wrapPhase(o.phase + o.step)
	}
}

// Add mixes the next len(dst) samples into dst.
func (o *Oscillator) Add(dst []float64) {
	for i := range dst {
		dst[i] += o.amplitude * math.Sin(o.phase)
		o.phase = wrapPhase(o.phase + o.step)
	}
}

func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}

	for p <= -math.Pi {
		p += 2 * math.Pi
	}

	return p
}
