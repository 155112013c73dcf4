package ink

import "math"

// Point represents a 2D point in raster surface coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns the Euclidean distance between two points.
// Coincident points yield exactly 0.
func (p Point) Distance(q Point) float64 {
	dx, dy := q.X-p.X, q.Y-p.Y
	d := dx*dx + dy*dy
	if d == 0 {
		return 0
	}
	return math.Sqrt(d)
}

// Lerp performs linear interpolation between two points.
// t=0 returns p, t=1 returns q. Values outside [0, 1] extrapolate along
// the same line.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}
