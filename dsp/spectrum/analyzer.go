package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-pitch/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// ErrEmptyFrame is returned by Analyze for a zero-length frame.
var ErrEmptyFrame = errors.New("spectrum: empty frame")

const minAnalyzerSize = 16

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	window window.Type
}

// WithWindow selects the analysis window. The default is 4-term
// Blackman-Harris.
func WithWindow(t window.Type) AnalyzerOption {
	return func(c *analyzerConfig) { c.window = t }
}

// Analyzer computes single-sided magnitude spectra of fixed-size frames.
// Magnitudes are scaled so that a sinusoid of amplitude A centred on a bin
// reads A at that bin.
//
// An Analyzer reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	sampleRate float64
	size       int
	winType    window.Type
	win        []float64
	norm       float64

	plan    *algofft.Plan[complex128]
	in, out []complex128
	re, im  []float64
	mags    []float64
}

// NewAnalyzer returns an Analyzer for frames of size samples. size must be
// a power of two of at least 16.
func NewAnalyzer(sampleRate float64, size int, opts ...AnalyzerOption) (*Analyzer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0: %v", sampleRate)
	}

	if size < minAnalyzerSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: size must be a power of two >= %d: %d", minAnalyzerSize, size)
	}

	cfg := analyzerConfig{window: window.TypeBlackmanHarris}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	win := window.Generate(cfg.window, size, window.WithPeriodic())

	gain := window.CoherentGain(win)
	if gain <= 0 {
		return nil, fmt.Errorf("spectrum: window %v has no coherent gain", cfg.window)
	}

	half := size / 2

	return &Analyzer{
		sampleRate: sampleRate,
		size:       size,
		winType:    cfg.window,
		win:        win,
		norm:       2 / (float64(size) * gain),
		plan:       plan,
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, half),
		im:         make([]float64, half),
		mags:       make([]float64, half),
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Window returns the analysis window type.
func (a *Analyzer) Window() window.Type { return a.winType }

// BinWidth returns the frequency spacing of the bins in Hz.
func (a *Analyzer) BinWidth() float64 { return a.sampleRate / float64(a.size) }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 { return float64(k) * a.BinWidth() }

// Analyze windows frame and returns its magnitude spectrum, Size()/2 bins
// from DC upwards. Frames longer than Size() contribute their most recent
// Size() samples; shorter frames are zero-padded. The returned slice is
// owned by the Analyzer and overwritten by the next call.
func (a *Analyzer) Analyze(frame []float64) ([]float64, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	if len(frame) > a.size {
		frame = frame[len(frame)-a.size:]
	}

	for i := range a.in {
		v := 0.0
		if i < len(frame) {
			v = frame[i] * a.win[i]
		}

		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	MagnitudeFromParts(a.mags, a.re, a.im)
	vecmath.ScaleBlock(a.mags, a.mags, a.norm)

	return a.mags, nil
}

// Spectrum returns the magnitudes computed by the last Analyze call.
func (a *Analyzer) Spectrum() []float64 { return a.mags }

// PeakFrequency estimates the dominant frequency of the last analysed frame.
func (a *Analyzer) PeakFrequency() (freq, magnitude float64) {
	return PeakFrequency(a.mags, a.BinWidth())
}

// HarmonicAmplitudes measures the first count harmonics of pitch in the last
// analysed frame. See HarmonicAmplitudes.
func (a *Analyzer) HarmonicAmplitudes(pitch float64, count, halfWidth int) []float64 {
	return HarmonicAmplitudes(a.mags, a.BinWidth(), pitch, count, halfWidth)
}
