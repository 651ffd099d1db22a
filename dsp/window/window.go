// Package window provides the cosine-sum windows used to frame audio for
// spectral analysis.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	// TypeBlackmanHarris is the 4-term Blackman-Harris window (-92 dB
	// sidelobes).
	TypeBlackmanHarris
)

var coeffsByType = map[Type][]float64{
	TypeRectangular:    {1},
	TypeHann:           {0.5, -0.5},
	TypeHamming:        {0.54, -0.46},
	TypeBlackman:       {0.42, -0.5, 0.08},
	TypeBlackmanHarris: {0.35875, -0.48829, 0.14128, -0.01168},
}

var names = map[Type]string{
	TypeRectangular:    "Rectangular",
	TypeHann:           "Hann",
	TypeHamming:        "Hamming",
	TypeBlackman:       "Blackman",
	TypeBlackmanHarris: "Blackman-Harris",
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType returns the window type with the given name, case-sensitive as
// printed by Type.String or in lower-case.
func ParseType(name string) (Type, error) {
	for t, n := range names {
		if name == n || name == lower(n) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("window: unknown type %q", name)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic generates the periodic form used for FFT framing instead of
// the symmetric form.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t. It returns nil for a
// non-positive length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs, ok := coeffsByType[t]
	if !ok {
		coeffs = coeffsByType[TypeRectangular]
	}

	den := float64(length - 1)
	if cfg.periodic || length == 1 {
		den = float64(length)
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineSum(float64(i)/den, coeffs)
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain returns the mean of coeffs, the amplitude a windowed
// full-scale sinusoid keeps at its bin.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}

// EquivalentNoiseBandwidth returns the ENBW of coeffs in bins.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, fmt.Errorf("window: empty coefficients")
	}

	sum, sumSq := 0.0, 0.0
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}

	if sum == 0 {
		return 0, fmt.Errorf("window: zero coherent gain")
	}

	return float64(len(coeffs)) * sumSq / (sum * sum), nil
}

// ScallopLossDB returns the gain in dB of coeffs for a sinusoid half a bin
// away from a bin centre, relative to one on the centre.
func ScallopLossDB(coeffs []float64) float64 {
	n := float64(len(coeffs))

	var sum, re, im float64
	for i, c := range coeffs {
		phase := math.Pi * float64(i) / n
		sum += c
		re += c * math.Cos(phase)
		im -= c * math.Sin(phase)
	}

	if sum == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(math.Hypot(re, im)/math.Abs(sum))
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}

	return string(b)
}
