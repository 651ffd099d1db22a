package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if math.Abs(got-tc.w) > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestHermite4ExactOnQuadratic(t *testing.T) {
	f := func(x float64) float64 { return 0.5*x*x - x + 2 }
	for _, frac := range []float64{0, 0.1, 0.5, 0.9} {
		got := Hermite4(frac, f(-1), f(0), f(1), f(2))
		if math.Abs(got-f(frac)) > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", frac, got, f(frac))
		}
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear2 = %v, want 2.5", got)
	}
	if got := Linear2(0, 2, 4); got != 2 {
		t.Fatalf("Linear2(t=0) = %v, want 2", got)
	}
}
