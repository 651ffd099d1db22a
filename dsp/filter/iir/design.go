package iir

import (
	"math"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Design computes the filter coefficients from the current parameters and
// clears the processing history. It does nothing when the parameters are
// not [Filter.Valid].
func (f *Filter) Design() {
	if !f.Valid() {
		return
	}

	n := f.order
	re, im, zeros := f.locatePolesAndZeros()

	num := make([]float64, n+1)
	den := make([]float64, n+1)
	nextNum := make([]float64, n+1)
	nextDen := make([]float64, n+1)
	num[0], den[0] = 1, 1

	k := 0
	if core.IsOdd(n) {
		// first-order leading section
		num[1] = -zeros[1]
		den[1] = -re[1]
		k = 1
	}

	for p := 1; p <= n/2; p++ {
		m := 2*p - 1 + k
		alpha1 := -(zeros[m] + zeros[m+1])
		alpha2 := zeros[m] * zeros[m+1]
		beta1 := -2 * re[m]
		beta2 := core.Sqr(re[m]) + core.Sqr(im[m])

		nextNum[1] = num[1] + alpha1*num[0]
		nextDen[1] = den[1] + beta1*den[0]

		for i := 2; i <= n; i++ {
			nextNum[i] = num[i] + alpha1*num[i-1] + alpha2*num[i-2]
			nextDen[i] = den[i] + beta1*den[i-1] + beta2*den[i-2]
		}

		copy(num[1:], nextNum[1:])
		copy(den[1:], nextDen[1:])
	}

	f.num = num
	f.den = den
	f.Reset()
	f.normalize()
}

// normalize scales the numerator so the sampled peak gain is 0 dB.
func (f *Filter) normalize() {
	peak := math.Inf(-1)
	for _, g := range f.sampleResponse(responsePoints) {
		peak = math.Max(peak, g)
	}

	scale := core.DBToLinear(-peak)
	for i := range f.num {
		f.num[i] *= scale
	}
}

// sampleResponse evaluates the gain in dB at points uniformly spaced angular
// frequencies over [0, π]. The end points are pulled in slightly to avoid the
// exact zeros of high-pass and band-pass numerators.
func (f *Filter) sampleResponse(points int) []float64 {
	g := make([]float64, points)
	if points == 0 {
		return g
	}

	step := 0.0
	if points > 1 {
		step = math.Pi / float64(points-1)
	}

	for i := range g {
		theta := float64(i) * step

		switch i {
		case 0:
			theta = math.Pi * 0.0001
		case points - 1:
			theta = math.Pi * 0.9999
		}

		g[i] = f.gainDB(theta)
	}

	return g
}

// Response returns the gain in dB at points uniformly spaced frequencies
// from DC to Nyquist, relative to the peak of the curve. It returns nil
// before the filter is designed.
func (f *Filter) Response(points int) []float64 {
	if !f.Designed() || points <= 0 {
		return nil
	}

	g := f.sampleResponse(points)

	peak := math.Inf(-1)
	for _, v := range g {
		peak = math.Max(peak, v)
	}

	for i := range g {
		g[i] -= peak
	}

	return g
}

// MagnitudeDB returns the gain in dB at freqHz. It returns NaN before the
// filter is designed.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	if !f.Designed() || f.sampleRate <= 0 {
		return math.NaN()
	}

	return f.gainDB(2 * math.Pi * freqHz / f.sampleRate)
}

// locatePolesAndZeros places the z-plane poles (re, im) and zeros of the
// filter using the bilinear transform. Index 0 is unused; entries 1..order
// hold the roots grouped as the sections consume them.
func (f *Filter) locatePolesAndZeros() (re, im, zeros []float64) {
	order := f.order
	re = make([]float64, order+1)
	im = make([]float64, order+1)
	zeros = make([]float64, order+1)

	n := order
	if f.kind == Bandpass {
		n /= 2
	}

	ir := n % 2
	n1 := n + ir
	n2 := (3*n+ir)/2 - 1

	var f1 float64

	switch f.kind {
	case Lowpass:
		f1 = f.highHz
	case Highpass:
		f1 = f.nyquist - f.lowHz
	case Bandpass:
		f1 = f.highHz - f.lowHz
	}

	tanw1 := math.Tan(0.5 * math.Pi * f1 / f.nyquist)
	tansqw1 := core.Sqr(tanw1)

	// low-pass prototype poles
	a, r, i := 1.0, 1.0, 1.0

	for k := n1; k <= n2; k++ {
		t := 0.5 * float64(2*k+1-ir) * math.Pi / float64(n)

		switch f.proto {
		case Butterworth:
			b3 := 1 - 2*tanw1*math.Cos(t) + tansqw1
			r = (1 - tansqw1) / b3
			i = 2 * tanw1 * math.Sin(t) / b3
		case Chebyshev:
			d := 1 - math.Exp(-0.05*f.rippleDB*math.Ln10)
			e := 1 / math.Sqrt(1/core.Sqr(1-d)-1)
			x := math.Pow(math.Sqrt(e*e+1)+e, 1/float64(n))
			a = 0.5 * (x - 1/x)
			b := 0.5 * (x + 1/x)
			c3 := a * tanw1 * math.Cos(t)
			c4 := b * tanw1 * math.Sin(t)
			c5 := core.Sqr(1-c3) + core.Sqr(c4)
			r = 2*(1-c3)/c5 - 1
			i = 2 * c4 / c5
		}

		m := 2*(n2-k) + 1
		re[m+ir] = r
		im[m+ir] = math.Abs(i)
		re[m+ir+1] = r
		im[m+ir+1] = -math.Abs(i)
	}

	if core.IsOdd(n) {
		switch f.proto {
		case Butterworth:
			r = (1 - tansqw1) / (1 + 2*tanw1 + tansqw1)
		case Chebyshev:
			r = 2/(1+a*tanw1) - 1
		}

		re[1] = r
		im[1] = 0
	}

	switch f.kind {
	case Lowpass:
		for m := 1; m <= n; m++ {
			zeros[m] = -1
		}
	case Highpass:
		// mirror the low-pass prototype around fs/4
		for m := 1; m <= n; m++ {
			re[m] = -re[m]
			zeros[m] = 1
		}
	case Bandpass:
		f.lowpassToBandpass(n, re, im, zeros)
	}

	return re, im, zeros
}

// lowpassToBandpass splits every prototype pole into the two band-pass poles
// of the substitution z⁻¹ → −z⁻¹(z⁻¹−α)/(1−αz⁻¹), then rebuilds conjugate
// pairs in section order.
func (f *Filter) lowpassToBandpass(n int, re, im, zeros []float64) {
	for m := 1; m <= n; m++ {
		zeros[m] = 1
		zeros[m+n] = -1
	}

	f4 := 0.5 * math.Pi * f.lowHz / f.nyquist
	f5 := 0.5 * math.Pi * f.highHz / f.nyquist
	aa := math.Cos(f4+f5) / math.Cos(f5-f4)

	for m1 := 0; m1 <= (f.order-1)/2; m1++ {
		m := 1 + 2*m1
		aR := re[m]
		aI := im[m]

		var p1R, p1I, p2R, p2I float64

		if math.Abs(aI) < 0.0001 {
			h1 := 0.5 * aa * (1 + aR)
			h2 := core.Sqr(h1) - aR

			if h2 > 0 {
				p1R = h1 + math.Sqrt(h2)
				p2R = h1 - math.Sqrt(h2)
			} else {
				p1R = h1
				p2R = h1
				p1I = math.Sqrt(math.Abs(h2))
				p2I = -p1I
			}
		} else {
			fR := aa * 0.5 * (1 + aR)
			fI := aa * 0.5 * aI
			gR := core.Sqr(fR) - core.Sqr(fI) - aR
			gI := 2*fR*fI - aI
			sR := math.Sqrt(0.5 * math.Abs(gR+math.Sqrt(core.Sqr(gR)+core.Sqr(gI))))
			sI := gI / (2 * sR)
			p1R = fR + sR
			p1I = fI + sI
			p2R = fR - sR
			p2I = fI - sI
		}

		re[m] = p1R
		re[m+1] = p2R
		im[m] = p1I
		im[m+1] = p2I
	}

	if core.IsOdd(n) {
		re[2] = re[n+1]
		im[2] = im[n+1]
	}

	for k := n; k >= 1; k-- {
		m := 2*k - 1
		re[m] = re[k]
		re[m+1] = re[k]
		im[m] = math.Abs(im[k])
		im[m+1] = -math.Abs(im[k])
	}
}
