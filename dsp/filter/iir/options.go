package iir

// Option configures a [Filter] at construction time.
type Option func(*Filter)

// WithPrototype sets the analog prototype.
func WithPrototype(p Prototype) Option {
	return func(f *Filter) { f.proto = p }
}

// WithKind sets the response type.
func WithKind(k Kind) Option {
	return func(f *Filter) {
		f.kind = k
		if f.order != 0 {
			f.order = normalizeOrder(f.order, k)
		}
	}
}

// WithOrder sets the order, normalized as by [Filter.SetOrder].
func WithOrder(order int) Option {
	return func(f *Filter) { f.order = normalizeOrder(order, f.kind) }
}

// WithCutoff sets the low and high cutoff frequencies in Hz. Low-pass
// filters use only high, high-pass filters only low.
func WithCutoff(low, high float64) Option {
	return func(f *Filter) {
		f.lowHz = low
		f.highHz = high
	}
}

// WithRipple sets the Chebyshev passband ripple in dB.
func WithRipple(db float64) Option {
	return func(f *Filter) { f.rippleDB = db }
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(f *Filter) {
		f.sampleRate = sampleRate
		f.nyquist = 0.5 * sampleRate
	}
}

// NewLowpass returns a designed Butterworth low-pass filter.
func NewLowpass(cutoff float64, order int, sampleRate float64) *Filter {
	return New(WithPrototype(Butterworth), WithKind(Lowpass), WithOrder(order),
		WithCutoff(0, cutoff), WithSampleRate(sampleRate))
}

// NewHighpass returns a designed Butterworth high-pass filter.
func NewHighpass(cutoff float64, order int, sampleRate float64) *Filter {
	return New(WithPrototype(Butterworth), WithKind(Highpass), WithOrder(order),
		WithCutoff(cutoff, 0), WithSampleRate(sampleRate))
}
