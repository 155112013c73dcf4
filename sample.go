package ink

// Pressure is an optional pen pressure reading in [0, 1].
// A zero Value with Valid set is a real reading, distinct from a device
// that reports no pressure at all.
type Pressure struct {
	Value float64
	Valid bool
}

// NoPressure is the reading of a device without pressure support.
var NoPressure = Pressure{}

// PressureOf returns a valid reading clamped to [0, 1].
func PressureOf(v float64) Pressure {
	return Pressure{Value: clamp(v, 0, 1), Valid: true}
}

// Scale returns the reading multiplied by f. Absent readings stay absent.
func (p Pressure) Scale(f float64) Pressure {
	if !p.Valid {
		return p
	}
	return PressureOf(p.Value * f)
}

// Sample is one raw pointer observation in raster surface coordinates.
// T is milliseconds elapsed since the stroke began.
type Sample struct {
	X, Y     float64
	T        float64
	Pressure Pressure
}

// Point returns the sample location.
func (s Sample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Position is a smoothed stroke position: the mean of the most recent
// buffered samples plus the brush size computed for it.
type Position struct {
	X, Y     float64
	T        float64
	Pressure Pressure
	Size     float64
}

// Point returns the position location.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
