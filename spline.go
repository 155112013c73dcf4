package ink

// Hermite evaluates the cubic Hermite spline between x0 and x1 with
// tangents v0 and v1 at parameter t in [0, 1].
//
// Stroke smoothing itself relies on the sample moving average; the spline is
// exposed for callers that resample stroke history into curves.
func Hermite(x0, x1, v0, v1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return (2*x0-2*x1+v0+v1)*t3 + (-3*x0+3*x1-2*v0-v1)*t2 + v0*t + x0
}

// HermitePoint applies Hermite to both coordinates.
func HermitePoint(p0, p1, v0, v1 Point, t float64) Point {
	return Point{
		X: Hermite(p0.X, p1.X, v0.X, v1.X, t),
		Y: Hermite(p0.Y, p1.Y, v0.Y, v1.Y, t),
	}
}
