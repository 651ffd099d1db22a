package iir

import (
	"math"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Prototype selects the analog low-pass prototype.
type Prototype int

const (
	// PrototypeNone marks an unset prototype.
	PrototypeNone Prototype = iota
	// Butterworth is maximally flat in the passband.
	Butterworth
	// Chebyshev (type I) trades passband ripple for a steeper transition.
	Chebyshev
)

// Kind selects the filter response type.
type Kind int

const (
	// KindNone marks an unset filter kind.
	KindNone Kind = iota
	// Lowpass passes frequencies below the high cutoff.
	Lowpass
	// Highpass passes frequencies above the low cutoff.
	Highpass
	// Bandpass passes frequencies between the low and high cutoffs.
	Bandpass
)

// MaxOrder is the highest supported filter order.
const MaxOrder = 16

const (
	historySize = 32 // power of two, > MaxOrder
	historyMask = historySize - 1

	denormalOffset = 1e-15
	responsePoints = 1000
)

// Filter is a designed IIR filter together with its processing state.
//
// Filter is not safe for concurrent use.
type Filter struct {
	order      int
	proto      Prototype
	kind       Kind
	lowHz      float64
	highHz     float64
	rippleDB   float64
	sampleRate float64
	nyquist    float64

	num []float64 // feedforward, len order+1
	den []float64 // feedback, len order+1, den[0] == 1

	inHist  [historySize]float64
	outHist [historySize]float64
	histIdx int
	negate  bool // sign of the next denormal offset
}

// New returns a filter configured by opts and designs it when the
// configuration is valid.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	f.Design()

	return f
}

// Order returns the filter order.
func (f *Filter) Order() int { return f.order }

// Prototype returns the analog prototype.
func (f *Filter) Prototype() Prototype { return f.proto }

// Kind returns the response type.
func (f *Filter) Kind() Kind { return f.kind }

// LowCutoff returns the low cutoff frequency in Hz.
func (f *Filter) LowCutoff() float64 { return f.lowHz }

// HighCutoff returns the high cutoff frequency in Hz.
func (f *Filter) HighCutoff() float64 { return f.highHz }

// Ripple returns the Chebyshev passband ripple in dB.
func (f *Filter) Ripple() float64 { return f.rippleDB }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// SetPrototype sets the analog prototype and re-designs.
func (f *Filter) SetPrototype(p Prototype) {
	f.proto = p
	f.Design()
}

// SetKind sets the response type and re-designs.
func (f *Filter) SetKind(k Kind) {
	f.kind = k
	f.Design()
}

// SetOrder sets the filter order and re-designs. The magnitude of order is
// clamped to [1, MaxOrder] and rounded up to even for band-pass filters.
func (f *Filter) SetOrder(order int) {
	f.order = normalizeOrder(order, f.kind)
	f.Design()
}

// SetLowCutoff sets the low cutoff (high-pass and band-pass) and re-designs.
func (f *Filter) SetLowCutoff(hz float64) {
	f.lowHz = hz
	f.Design()
}

// SetHighCutoff sets the high cutoff (low-pass and band-pass) and re-designs.
func (f *Filter) SetHighCutoff(hz float64) {
	f.highHz = hz
	f.Design()
}

// SetRipple sets the Chebyshev passband ripple in dB and re-designs.
func (f *Filter) SetRipple(db float64) {
	f.rippleDB = db
	f.Design()
}

// SetSampleRate sets the sample rate and re-designs.
func (f *Filter) SetSampleRate(sampleRate float64) {
	f.sampleRate = sampleRate
	f.nyquist = 0.5 * sampleRate
	f.Design()
}

// Valid reports whether the current parameters describe a realizable filter.
func (f *Filter) Valid() bool {
	if f.order < 1 || f.order > MaxOrder ||
		f.proto == PrototypeNone || f.kind == KindNone ||
		f.sampleRate <= 0 || f.nyquist <= 0 {
		return false
	}

	switch f.kind {
	case Lowpass:
		if f.highHz <= 0 || f.highHz >= f.nyquist {
			return false
		}
	case Highpass:
		if f.lowHz <= 0 || f.lowHz >= f.nyquist {
			return false
		}
	case Bandpass:
		if f.lowHz <= 0 || f.highHz >= f.nyquist || f.lowHz >= f.highHz {
			return false
		}
		if core.IsOdd(f.order) {
			return false
		}
	}

	if f.proto == Chebyshev && f.rippleDB <= 0 {
		return false
	}

	return true
}

// Designed reports whether the filter holds coefficients.
func (f *Filter) Designed() bool {
	return len(f.num) > 0
}

// Coefficients returns copies of the numerator and denominator vectors.
func (f *Filter) Coefficients() (num, den []float64) {
	return append([]float64(nil), f.num...), append([]float64(nil), f.den...)
}

// Reset clears the processing history.
func (f *Filter) Reset() {
	f.inHist = [historySize]float64{}
	f.outHist = [historySize]float64{}
	f.histIdx = 0
	f.negate = false
}

// ResetTo fills the input history with v. Low-pass filters also start their
// output history at v, which removes the start-up transient for a signal
// that begins at v; other kinds start from silence.
func (f *Filter) ResetTo(v float64) {
	f.histIdx = 0
	f.negate = false
	core.Fill(f.inHist[:], v)

	if f.kind == Lowpass {
		core.Fill(f.outHist[:], v)
	} else {
		clear(f.outHist[:])
	}
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	return f.step(x + f.nextDenormal())
}

// ProcessBlock filters src into dst. dst must be at least as long as src
// and may alias src.
func (f *Filter) ProcessBlock(dst, src []float64) {
	_ = dst[:len(src)]
	for i, x := range src {
		dst[i] = f.step(x + f.nextDenormal())
	}
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	f.ProcessBlock(buf, buf)
}

// nextDenormal returns a tiny offset whose sign alternates per sample so
// that a decaying recursion never settles into the denormal range.
func (f *Filter) nextDenormal() float64 {
	f.negate = !f.negate
	if f.negate {
		return -denormalOffset
	}

	return denormalOffset
}

func (f *Filter) step(x float64) float64 {
	idx := f.histIdx
	f.inHist[idx] = x

	sum := 0.0
	for k, c := range f.num {
		sum += c * f.inHist[(idx-k)&historyMask]
	}

	for k := 1; k < len(f.den); k++ {
		sum -= f.den[k] * f.outHist[(idx-k)&historyMask]
	}

	f.outHist[idx] = sum
	f.histIdx = (idx + 1) & historyMask

	return sum
}

func normalizeOrder(order int, kind Kind) int {
	if order < 0 {
		order = -order
	}

	order = core.ClampInt(order, 1, MaxOrder)
	if kind == Bandpass && core.IsOdd(order) {
		order++
	}

	return order
}

// gainDB returns 10*log10(|H(e^jθ)|^2) for the current coefficients.
func (f *Filter) gainDB(theta float64) float64 {
	var numRe, numIm, denRe, denIm float64

	for k := range f.num {
		c := math.Cos(float64(k) * theta)
		s := math.Sin(float64(k) * theta)
		numRe += c * f.num[k]
		numIm += s * f.num[k]
		denRe += c * f.den[k]
		denIm += s * f.den[k]
	}

	return core.PowerRatioToDB((numRe*numRe + numIm*numIm) / (denRe*denRe + denIm*denIm))
}
