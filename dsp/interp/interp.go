package interp

// Linear2 interpolates between x0 and x1 at fraction t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0*(1-t) + x1*t
}

// Hermite4 computes 4-point cubic Hermite interpolation between x0 and x1,
// using the neighbours xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c1 := 0.5 * (x1 - xm1)
	c3 := 1.5*(x0-x1) + 0.5*(x2-xm1)
	c2 := xm1 - x0 + c1 - c3

	return ((c3*t+c2)*t+c1)*t + x0
}
