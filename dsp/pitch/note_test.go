package pitch

import (
	"math"
	"testing"
)

func TestPitchToNote(t *testing.T) {
	tests := []struct {
		pitch     float64
		wantNote  int
		wantCents int
		wantOK    bool
	}{
		{55, 33, 0, true},
		{110, 45, 0, true},
		{220, 57, 0, true},
		{440, 69, 0, true},
		{880, 81, 0, true},
		{19.9, 0, 0, false},
		{0, 0, 0, false},
		// a quarter tone above A4 rounds up and reports a flat offset
		{440 * math.Exp2(0.6/12), 70, 40, true},
		{440 * math.Exp2(0.3/12), 69, -30, true},
	}

	for _, tt := range tests {
		note, cents, ok := PitchToNote(tt.pitch)
		if note != tt.wantNote || ok != tt.wantOK {
			t.Fatalf("PitchToNote(%g) = %d, %v; want %d, %v", tt.pitch, note, ok, tt.wantNote, tt.wantOK)
		}
		if abs(cents-tt.wantCents) > 1 {
			t.Fatalf("PitchToNote(%g) cents = %d, want %d", tt.pitch, cents, tt.wantCents)
		}
	}
}

func TestPitchToNoteCentsRange(t *testing.T) {
	for p := 20.0; p < 2000; p *= 1.0037 {
		_, cents, ok := PitchToNote(p)
		if !ok {
			t.Fatalf("PitchToNote(%g) not ok", p)
		}
		if cents < -50 || cents > 50 {
			t.Fatalf("PitchToNote(%g) cents = %d out of [-50, 50]", p, cents)
		}
	}
}

func TestMidiNoteToPitchInverse(t *testing.T) {
	for p := 55.0; p <= 1600; p *= 1.013 {
		got := MidiNoteToPitch(PitchToMidiNote(p))
		if math.Abs(got-p) > 1e-9*p {
			t.Fatalf("MidiNoteToPitch(PitchToMidiNote(%g)) = %g", p, got)
		}
	}
}

func TestMidiNoteToPitchBelowReference(t *testing.T) {
	if got := MidiNoteToPitch(32.9); got != 0 {
		t.Fatalf("MidiNoteToPitch(32.9) = %g, want 0", got)
	}
	if got := MidiNoteToPitch(69); math.Abs(got-440) > 1e-9 {
		t.Fatalf("MidiNoteToPitch(69) = %g, want 440", got)
	}
}

func TestPitchToMidiNoteBelowMinimum(t *testing.T) {
	if got := PitchToMidiNote(10); got != 0 {
		t.Fatalf("PitchToMidiNote(10) = %g, want 0", got)
	}
}
