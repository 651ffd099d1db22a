// Package signal generates deterministic test tones for exercising the
// pitch tracker.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a signal generator.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave starting at phase 0.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	return g.Harmonic(freqHz, []float64{amplitude}, samples)
}

// Harmonic generates a tone whose k-th partial (k = 1..len(amplitudes)) has
// frequency k*freqHz and the k-th amplitude. Partials at or above Nyquist are
// dropped.
func (g *Generator) Harmonic(freqHz float64, amplitudes []float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("tone samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	for k, amp := range amplitudes {
		f := freqHz * float64(k+1)
		if amp == 0 || f >= g.cfg.Nyquist() {
			continue
		}

		osc, err := NewOscillator(g.cfg.SampleRate, f, amp)
		if err != nil {
			return nil, err
		}
		osc.Add(out)
	}

	return out, nil
}

// Glide generates a sine whose frequency moves exponentially from fromHz to
// toHz over the given number of samples.
func (g *Generator) Glide(fromHz, toHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("glide samples must be > 0: %d", samples)
	}
	if fromHz <= 0 || toHz <= 0 {
		return nil, fmt.Errorf("glide frequencies must be > 0: %v, %v", fromHz, toHz)
	}

	osc, err := NewOscillator(g.cfg.SampleRate, fromHz, amplitude)
	if err != nil {
		return nil, err
	}

	ratio := math.Log(toHz / fromHz)
	out := make([]float64, samples)
	for i := range out {
		f := fromHz * math.Exp(ratio*float64(i)/float64(samples))
		if err := osc.SetFrequency(f); err != nil {
			return nil, err
		}
		osc.Fill(out[i : i+1])
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Normalize scales data in place to the target peak amplitude. Silent input
// is left unchanged.
func Normalize(data []float64, targetPeak float64) error {
	if targetPeak < 0 {
		return fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return fmt.Errorf("normalize input must not be empty")
	}

	peak := floats.Norm(data, math.Inf(1))
	if peak == 0 {
		return nil
	}

	floats.Scale(targetPeak/peak, data)
	return nil
}
