package spectrum

import (
	"math"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// PeakFrequency returns the frequency and magnitude of the largest bin in
// mags, refined by the squared ratios of its neighbours. Bins are binWidth
// Hz apart starting at DC. An all-zero spectrum yields (0, 0).
func PeakFrequency(mags []float64, binWidth float64) (freq, magnitude float64) {
	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}

	if len(mags) == 0 || mags[peak] <= 0 {
		return 0, 0
	}

	pos := float64(peak)
	if peak > 0 && peak < len(mags)-1 {
		dl := mags[peak-1] / mags[peak]
		dr := mags[peak+1] / mags[peak]
		pos += 0.5 * (dr*dr - dl*dl)
	}

	return pos * binWidth, mags[peak]
}

// HarmonicAmplitudes returns the root-sum-square magnitude of the bins within
// halfWidth of each harmonic h*f0 for h = 1..count. The fundamental bin is
// pitch/binWidth truncated, and harmonic h is centred on h times that bin.
// Bins outside (0, len(mags)) are skipped. A non-positive pitch yields all
// zeros.
func HarmonicAmplitudes(mags []float64, binWidth, pitch float64, count, halfWidth int) []float64 {
	if count <= 0 {
		return nil
	}

	out := make([]float64, count)
	if pitch <= 0 || binWidth <= 0 {
		return out
	}

	halfWidth = max(halfWidth, 0)
	base := int(pitch / binWidth)

	for h := range out {
		centre := base * (h + 1)

		sum := 0.0
		for bin := centre - halfWidth; bin <= centre+halfWidth; bin++ {
			if bin > 0 && bin < len(mags) {
				sum += mags[bin] * mags[bin]
			}
		}

		out[h] = math.Sqrt(sum)
	}

	return out
}

// HarmonicLevelsDB converts amplitudes to dB relative to ref. Zero amplitudes
// map to -Inf.
func HarmonicLevelsDB(amplitudes []float64, ref float64) []float64 {
	out := make([]float64, len(amplitudes))
	for i, a := range amplitudes {
		out[i] = core.LinearToDB(a / ref)
	}

	return out
}
