package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-pitch/dsp/interp"
)

// Search finds the fundamental frequency of a pair of band-filtered
// windows. It keeps the grid index of the last accepted pitch between calls
// and relaxes its peakiness test near it.
//
// Search is not safe for concurrent use.
type Search struct {
	cfg        SearchConfig
	sampleRate float64
	minPitch   float64
	maxPitch   float64
	threshold  float64

	blockLen  int       // samples per minimum-pitch period
	freqs     []float64 // descending candidate frequencies
	periods   []float64 // sampleRate / freqs[i]
	ratios    []float64 // fine period multipliers, descending
	crossover int       // first grid index scored on the low band
	minWindow int

	curve   []float64 // dense coarse scores, 0 = not computed
	fine    []float64 // fine scores, 0 = not computed
	prevIdx int       // grid index of the last accepted pitch, 0 = none
}

// NewSearch returns a Search for pitches in [minPitch, maxPitch] Hz at
// sampleRate. Windows whose peak level stays below threshold are treated as
// silence.
func NewSearch(sampleRate, minPitch, maxPitch, threshold float64, opts ...SearchOption) (*Search, error) {
	cfg := ApplySearchOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("pitch: sample rate must be > 0: %g", sampleRate)
	}
	if minPitch <= 0 || maxPitch <= minPitch {
		return nil, fmt.Errorf("pitch: pitch range must satisfy 0 < min < max: [%g, %g]", minPitch, maxPitch)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("pitch: threshold must be >= 0: %g", threshold)
	}

	s := &Search{
		cfg:        cfg,
		sampleRate: sampleRate,
		minPitch:   minPitch,
		maxPitch:   maxPitch,
		threshold:  threshold,
	}
	s.buildGrid()

	if s.periods[0]*s.ratios[len(s.ratios)-1] < 2 {
		return nil, fmt.Errorf("pitch: max pitch %g Hz too high for sample rate %g Hz", maxPitch, sampleRate)
	}

	return s, nil
}

func (s *Search) buildGrid() {
	cfg := &s.cfg
	steps := float64(cfg.OctaveSteps)

	s.blockLen = int(s.sampleRate/s.minPitch + 0.5)

	n := int(math.Log2(s.maxPitch/s.minPitch)*steps+0.5) + 3
	s.freqs = make([]float64, n)
	s.periods = make([]float64, n)
	s.curve = make([]float64, n)

	step := math.Pow(2, -1/steps)
	f := s.maxPitch / step
	for i := range s.freqs {
		s.freqs[i] = f
		s.periods[i] = s.sampleRate / f
		f *= step
	}

	half := cfg.FineSize / 2
	s.ratios = make([]float64, cfg.FineSize)
	s.fine = make([]float64, cfg.FineSize)
	for i := range s.ratios {
		s.ratios[i] = math.Pow(cfg.FineRatio, float64(half-i))
	}

	s.crossover = n
	if cfg.CrossoverHz > 0 {
		idx := int(math.Log2(s.freqs[0]/cfg.CrossoverHz)*steps + 0.5)
		s.crossover = min(max(idx, 0), n)
	}

	// Longest reads: the linear score at the lowest grid frequency and the
	// Hermite score at its largest fine period.
	coarse := int(s.periods[n-1]) + s.blockLen + 1
	fine := int(s.periods[n-1]*s.ratios[0]) + s.blockLen + 2
	s.minWindow = max(coarse, fine)
}

// SampleRate returns the sample rate in Hz.
func (s *Search) SampleRate() float64 { return s.sampleRate }

// MinPitch returns the lowest searched pitch in Hz.
func (s *Search) MinPitch() float64 { return s.minPitch }

// MaxPitch returns the highest searched pitch in Hz.
func (s *Search) MaxPitch() float64 { return s.maxPitch }

// Threshold returns the silence threshold.
func (s *Search) Threshold() float64 { return s.threshold }

// Config returns the search constants.
func (s *Search) Config() SearchConfig { return s.cfg }

// MinNote returns the lowest MIDI note reliably inside the search range.
func (s *Search) MinNote() int { return int(PitchToMidiNote(s.minPitch)+0.5) + 2 }

// MaxNote returns the highest MIDI note reliably inside the search range.
func (s *Search) MaxNote() int { return int(PitchToMidiNote(s.maxPitch)+0.5) - 2 }

// GridSize returns the number of candidate frequencies.
func (s *Search) GridSize() int { return len(s.freqs) }

// GridFrequency returns the candidate frequency at grid index i. Index 0
// is the highest frequency.
func (s *Search) GridFrequency(i int) float64 { return s.freqs[i] }

// Crossover returns the first grid index scored on the low band window.
func (s *Search) Crossover() int { return s.crossover }

// BlockLen returns the comparison length in samples: one period of the
// minimum pitch.
func (s *Search) BlockLen() int { return s.blockLen }

// MinWindowLen returns the window length DetectPitch needs.
func (s *Search) MinWindowLen() int { return s.minWindow }

// Reset forgets the previously accepted pitch.
func (s *Search) Reset() { s.prevIdx = 0 }

// MidiNoteToPitch converts a MIDI note to Hz like [MidiNoteToPitch], but
// returns 0 above the search range.
func (s *Search) MidiNoteToPitch(note float64) float64 {
	p := MidiNoteToPitch(note)
	if p > s.maxPitch {
		return 0
	}

	return p
}

// DetectPitch returns the pitch in Hz of the window pair, or 0 when none is
// found. lo is low-pass filtered for the bottom of the range and hi for the
// top; n is the number of samples checked against the silence threshold.
// Both windows must hold at least MinWindowLen samples, shorter windows
// yield 0.
func (s *Search) DetectPitch(lo, hi []float64, n int) float64 {
	if len(lo) < s.minWindow || len(hi) < s.minWindow {
		return 0
	}

	if !levelIsAbove(lo, n, s.threshold) && !levelIsAbove(hi, n, s.threshold) {
		return 0
	}

	return s.searchCoarse(lo, hi)
}

func (s *Search) searchCoarse(lo, hi []float64) float64 {
	cfg := &s.cfg
	n := len(s.freqs)
	half := cfg.PeakHalfWidth
	switched := false

	clear(s.curve)

	for idx := 0; idx < n; idx += cfg.CoarseStride {
		blockLen := min(s.blockLen, int(s.periods[idx])*2)

		samples := hi
		if idx >= s.crossover {
			if !switched {
				// dense scores around the crossover may stem from the other band
				clear(s.curve[max(s.crossover-half, 0):min(s.crossover+half+1, n)])
				switched = true
			}

			samples = lo
		}

		sparse := max(1, blockLen/10)
		dense := max(1, min(5, idx*5/n))

		if s.scoreLinear(samples, idx, blockLen, sparse, false) <= cfg.CoarseThreshold {
			continue
		}

		if pitch, ok := s.climb(samples, idx, blockLen, dense); ok {
			return pitch
		}
	}

	s.prevIdx = 0

	return 0
}

// climb hill-climbs the dense score around idx. The step starts at +4 and
// reverses at half size on every decrease until it reaches 0.
func (s *Search) climb(samples []float64, idx, blockLen, step int) (float64, bool) {
	cfg := &s.cfg
	beg := max(idx-cfg.PeakHalfWidth, 0)
	end := min(idx+cfg.PeakHalfWidth, len(s.freqs)-1)

	peakIdx, peakVal, prevVal := -1, 0.0, 0.0
	dir := 4

	for pos := idx; pos >= beg && pos < end; pos += dir {
		val := s.scoreLinear(samples, pos, blockLen, step, true)
		if val > peakVal {
			peakIdx, peakVal = pos, val
		}

		if prevVal > val {
			dir = -dir >> 1
			if dir == 0 {
				return s.accept(samples, peakIdx, peakVal, blockLen, step)
			}
		}

		prevVal = val
	}

	return 0, false
}

func (s *Search) accept(samples []float64, peakIdx int, peakVal float64, blockLen, step int) (float64, bool) {
	cfg := &s.cfg
	margin := cfg.FlankDistance + 1

	if peakVal <= cfg.PeakThreshold || peakIdx < margin || peakIdx > len(s.freqs)-1-margin {
		return 0, false
	}

	left := s.scoreLinear(samples, peakIdx-cfg.FlankDistance, blockLen, step, true)
	right := s.scoreLinear(samples, peakIdx+cfg.FlankDistance, blockLen, step, true)
	peakiness := peakVal / (left + right) * 2

	minimum := cfg.MinPeakiness
	if s.prevIdx > 0 && abs(s.prevIdx-peakIdx) < cfg.ContinuityDistance {
		minimum = cfg.ContinuityPeakiness
	}

	if peakiness <= minimum {
		return 0, false
	}

	pitch := s.refine(samples, peakIdx)
	if pitch <= 1 {
		return 0, false
	}

	s.prevIdx = peakIdx

	return pitch, true
}

// refine searches the fine ratios around the period of grid index idx and
// interpolates the peak on a log scale.
func (s *Search) refine(samples []float64, idx int) float64 {
	clear(s.fine)

	size := len(s.fine)
	peak := -1
	prevVal := 0.0
	dir := 4

	for pos := size / 2; pos >= 0 && pos < size; pos += dir {
		val := s.fineScore(samples, idx, pos)
		if peak < 0 || s.fine[peak] < val {
			peak = pos
		}

		if prevVal > val {
			dir = -dir >> 1
			if dir == 0 {
				return s.interpolatePeak(samples, idx, peak)
			}
		}

		prevVal = val
	}

	return 0
}

func (s *Search) interpolatePeak(samples []float64, idx, peak int) float64 {
	size := len(s.fine)
	if peak < 1 || peak >= size-1 {
		return 0
	}

	l := s.fineScore(samples, idx, peak-1)
	c := s.fine[peak]
	r := s.fineScore(samples, idx, peak+1)

	floor := math.Min(l, r)
	floor -= floor / 32

	y1 := math.Log10(l - floor)
	y2 := math.Log10(c - floor)
	y3 := math.Log10(r - floor)

	pos := float64(peak)
	if den := 2 * (2*y2 - y1 - y3); den > 0 {
		pos += (y3 - y1) / den
	}

	return math.Pow(s.cfg.FineRatio, pos-float64(size/2)) * s.freqs[idx]
}

func (s *Search) fineScore(samples []float64, idx, pos int) float64 {
	if s.fine[pos] == 0 {
		s.fine[pos] = scoreHermite(samples, s.periods[idx]*s.ratios[pos], s.blockLen)
	}

	return s.fine[pos]
}

// scoreLinear rates how well samples repeat after the period of grid index
// idx, comparing every step-th sample against the linearly interpolated
// delayed signal. Dense scores are cached per index.
func (s *Search) scoreLinear(samples []float64, idx, blockLen, step int, dense bool) float64 {
	if dense && s.curve[idx] > 0 {
		return s.curve[idx]
	}

	period := s.periods[idx]
	off := int(period)
	frac := period - float64(off)

	rect := 0.0
	diff := 0.01

	for i := 0; i < blockLen; i += step {
		x := samples[i]
		y := interp.Linear2(frac, samples[off+i], samples[off+i+1])
		diff += math.Abs(x - y)
		rect += math.Abs(x) + math.Abs(y)
	}

	score := rect / diff * 100
	if dense {
		s.curve[idx] = score
	}

	return score
}

// scoreHermite is the inverse mean absolute difference between samples and
// the signal delayed by period, using 4-point Hermite interpolation.
func scoreHermite(samples []float64, period float64, blockLen int) float64 {
	off := int(period)
	frac := period - float64(off)
	sum := 0.001

	for i := range blockLen {
		j := off + i
		y := interp.Hermite4(frac, samples[j-1], samples[j], samples[j+1], samples[j+2])
		sum += math.Abs(samples[i] - y)
	}

	return float64(blockLen) / sum
}

// levelIsAbove reports whether any of the first n samples reaches level.
func levelIsAbove(samples []float64, n int, level float64) bool {
	n = min(n, len(samples))
	for _, x := range samples[:max(n, 0)] {
		if math.Abs(x) >= level {
			return true
		}
	}

	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
