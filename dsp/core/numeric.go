package core

import "math"

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	switch {
	case value < lo:
		return lo
	case value > hi:
		return hi
	default:
		return value
	}
}

// ClampInt limits value to the inclusive range [lo, hi].
func ClampInt(value, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}

	return min(max(value, lo), hi)
}

// IsOdd reports whether n is odd.
func IsOdd(n int) bool {
	return n&1 == 1
}

// Sqr returns x*x.
func Sqr(x float64) float64 {
	return x * x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// PowerRatioToDB converts a power ratio to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func PowerRatioToDB(ratio float64) float64 {
	if ratio < 0 {
		return math.NaN()
	}

	if ratio == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(ratio)
}
