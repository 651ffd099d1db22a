package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo, hi   float64
		expected float64
	}{
		{name: "inside", value: 0.5, lo: 0, hi: 1, expected: 0.5},
		{name: "below", value: -1, lo: 0, hi: 1, expected: 0},
		{name: "above", value: 2, lo: 0, hi: 1, expected: 1},
		{name: "swapped", value: 2, lo: 1, hi: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(150, 1, 100); got != 100 {
		t.Fatalf("ClampInt(150) = %d, want 100", got)
	}
	if got := ClampInt(0, 1, 100); got != 1 {
		t.Fatalf("ClampInt(0) = %d, want 1", got)
	}
	if got := ClampInt(5, 10, 1); got != 5 {
		t.Fatalf("ClampInt swapped = %d, want 5", got)
	}
}

func TestIsOdd(t *testing.T) {
	for n, want := range map[int]bool{0: false, 1: true, 4: false, 5: true, 15: true} {
		if got := IsOdd(n); got != want {
			t.Fatalf("IsOdd(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestDBConversions(t *testing.T) {
	db := LinearToDB(DBToLinear(-6))
	if math.Abs(db+6) > 1e-10 {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
	if got := PowerRatioToDB(100); math.Abs(got-20) > 1e-12 {
		t.Fatalf("PowerRatioToDB(100) = %v, want 20", got)
	}
}
