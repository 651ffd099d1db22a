package pitch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pitch/internal/testutil"
)

const testRate = 44100.0

func newTestSearch(t *testing.T, opts ...SearchOption) *Search {
	t.Helper()

	s, err := NewSearch(testRate, 50, 1600, 0.01, opts...)
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}

	return s
}

func TestNewSearchValidation(t *testing.T) {
	tests := []struct {
		name                    string
		rate, lo, hi, threshold float64
		opts                    []SearchOption
	}{
		{"zero rate", 0, 50, 1600, 0.01, nil},
		{"nan rate", math.NaN(), 50, 1600, 0.01, nil},
		{"zero min", testRate, 0, 1600, 0.01, nil},
		{"inverted range", testRate, 1600, 50, 0.01, nil},
		{"negative threshold", testRate, 50, 1600, -1, nil},
		{"max too high", 8000, 50, 4000, 0.01, nil},
		{"even fine size", testRate, 50, 1600, 0.01, []SearchOption{WithFineSearch(30, 1.005)}},
		{"flat fine ratio", testRate, 50, 1600, 0.01, []SearchOption{WithFineSearch(31, 1)}},
		{"zero stride", testRate, 50, 1600, 0.01, []SearchOption{WithCoarseStride(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSearch(tt.rate, tt.lo, tt.hi, tt.threshold, tt.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGridLayout(t *testing.T) {
	s := newTestSearch(t)

	if got := s.GridSize(); got != 483 {
		t.Fatalf("GridSize() = %d, want 483", got)
	}
	if got := s.BlockLen(); got != 882 {
		t.Fatalf("BlockLen() = %d, want 882", got)
	}
	if got := s.Crossover(); got != 258 {
		t.Fatalf("Crossover() = %d, want 258", got)
	}

	for i := 1; i < s.GridSize(); i++ {
		if s.GridFrequency(i) >= s.GridFrequency(i-1) {
			t.Fatalf("grid not descending at %d", i)
		}
	}

	if s.GridFrequency(0) <= 1600 || s.GridFrequency(s.GridSize()-1) >= 50 {
		t.Fatalf("grid [%g, %g] does not cover [50, 1600]",
			s.GridFrequency(s.GridSize()-1), s.GridFrequency(0))
	}

	ratio := s.GridFrequency(0) / s.GridFrequency(96)
	if math.Abs(ratio-2) > 1e-9 {
		t.Fatalf("96 grid steps span ratio %g, want 2", ratio)
	}

	if s.MinWindowLen() > 2000 {
		t.Fatalf("MinWindowLen() = %d, want <= 2000", s.MinWindowLen())
	}
}

func TestDetectPitchSine(t *testing.T) {
	for _, freq := range []float64{82.41, 110, 220, 261.63, 440, 880, 1200} {
		s := newTestSearch(t)
		win := testutil.DeterministicSine(freq, testRate, 0.5, s.MinWindowLen())

		got := s.DetectPitch(win, win, len(win))
		if math.Abs(got-freq)/freq > 0.01 {
			t.Fatalf("DetectPitch(%g Hz) = %g", freq, got)
		}
	}
}

func TestDetectPitchHarmonicTone(t *testing.T) {
	s := newTestSearch(t)

	n := s.MinWindowLen()
	win := make([]float64, n)
	for i := range win {
		ph := 2 * math.Pi * 150 * float64(i) / testRate
		win[i] = 0.4*math.Sin(ph) + 0.2*math.Sin(2*ph) + 0.1*math.Sin(3*ph)
	}

	if got := s.DetectPitch(win, win, n); math.Abs(got-150)/150 > 0.01 {
		t.Fatalf("DetectPitch(harmonic 150 Hz) = %g", got)
	}
}

func TestDetectPitchSilence(t *testing.T) {
	s := newTestSearch(t)
	n := s.MinWindowLen()

	if got := s.DetectPitch(make([]float64, n), make([]float64, n), n); got != 0 {
		t.Fatalf("DetectPitch(silence) = %g, want 0", got)
	}

	quiet := testutil.DeterministicSine(220, testRate, 0.005, n)
	if got := s.DetectPitch(quiet, quiet, n); got != 0 {
		t.Fatalf("DetectPitch(below threshold) = %g, want 0", got)
	}
}

func TestDetectPitchShortWindow(t *testing.T) {
	s := newTestSearch(t)
	win := testutil.DeterministicSine(220, testRate, 0.5, s.MinWindowLen()-1)

	if got := s.DetectPitch(win, win, len(win)); got != 0 {
		t.Fatalf("DetectPitch(short window) = %g, want 0", got)
	}
}

func TestDetectPitchUsesBandWindows(t *testing.T) {
	s := newTestSearch(t)
	n := s.MinWindowLen()

	// 110 Hz is below the crossover, so only the low band window counts.
	lo := testutil.DeterministicSine(110, testRate, 0.5, n)
	hi := make([]float64, n)

	if got := s.DetectPitch(lo, hi, n); math.Abs(got-110)/110 > 0.01 {
		t.Fatalf("DetectPitch(lo only) = %g, want 110", got)
	}

	s.Reset()
	if got := s.DetectPitch(hi, lo, n); got != 0 {
		t.Fatalf("DetectPitch(low tone in high band) = %g, want 0", got)
	}
}

func TestContinuityStateAndReset(t *testing.T) {
	s := newTestSearch(t)
	win := testutil.DeterministicSine(330, testRate, 0.5, s.MinWindowLen())

	if s.DetectPitch(win, win, len(win)) == 0 {
		t.Fatal("no pitch detected")
	}
	if s.prevIdx == 0 {
		t.Fatal("accepted pitch not remembered")
	}

	s.Reset()
	if s.prevIdx != 0 {
		t.Fatal("Reset kept the previous pitch")
	}

	silent := make([]float64, len(win))
	s.prevIdx = 100
	s.DetectPitch(silent, silent, len(silent))
	if s.prevIdx != 100 {
		t.Fatal("silence gate touched continuity state")
	}
}

func TestScoreHermiteExactPeriod(t *testing.T) {
	period := testRate / 441
	win := testutil.DeterministicSine(441, testRate, 0.5, 400)

	exact := scoreHermite(win, period, 200)
	off := scoreHermite(win, period*1.02, 200)
	if exact <= off {
		t.Fatalf("score at period %g = %g, not above detuned %g", period, exact, off)
	}
}

func TestLevelIsAbove(t *testing.T) {
	buf := []float64{0, 0.001, -0.5, 0}

	if !levelIsAbove(buf, 4, 0.5) {
		t.Fatal("level 0.5 not found")
	}
	if levelIsAbove(buf, 2, 0.5) {
		t.Fatal("samples beyond n inspected")
	}
	if levelIsAbove(buf, 10, 0.6) {
		t.Fatal("level 0.6 reported")
	}
	if levelIsAbove(nil, 4, 0) {
		t.Fatal("empty buffer reported above")
	}
}

func TestSearchMidiNoteToPitchRange(t *testing.T) {
	s := newTestSearch(t)

	if got := s.MidiNoteToPitch(69); math.Abs(got-440) > 1e-9 {
		t.Fatalf("MidiNoteToPitch(69) = %g, want 440", got)
	}
	if got := s.MidiNoteToPitch(100); got != 0 {
		t.Fatalf("MidiNoteToPitch(100) = %g, want 0 above max pitch", got)
	}
	if s.MinNote() >= s.MaxNote() {
		t.Fatalf("MinNote() = %d, MaxNote() = %d", s.MinNote(), s.MaxNote())
	}
}
