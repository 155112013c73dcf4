package ink

import (
	"encoding/json"
	"image"
	"math"
)

// Bounds is an axis-aligned box [minX, minY, maxX, maxY] accumulated over
// all ink stamped since the last clear.
//
// The zero value is not empty; use EmptyBounds.
type Bounds [4]float64

// EmptyBounds returns the empty-box sentinel [+Inf, +Inf, -Inf, -Inf].
func EmptyBounds() Bounds {
	return Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

// NewBounds returns the box spanning two corners in any order.
func NewBounds(x0, y0, x1, y1 float64) Bounds {
	return Bounds{math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)}
}

// MinX returns the left edge.
func (b Bounds) MinX() float64 { return b[0] }

// MinY returns the top edge.
func (b Bounds) MinY() float64 { return b[1] }

// MaxX returns the right edge.
func (b Bounds) MaxX() float64 { return b[2] }

// MaxY returns the bottom edge.
func (b Bounds) MaxY() float64 { return b[3] }

// IsEmpty reports whether the box contains no ink.
func (b Bounds) IsEmpty() bool {
	return b[0] > b[2] || b[1] > b[3]
}

// Width returns the horizontal extent, 0 for an empty box.
func (b Bounds) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b[2] - b[0]
}

// Height returns the vertical extent, 0 for an empty box.
func (b Bounds) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b[3] - b[1]
}

// Extend returns the box grown to include the rectangle (x0, y0)-(x1, y1).
func (b Bounds) Extend(x0, y0, x1, y1 float64) Bounds {
	return Bounds{
		math.Min(b[0], x0),
		math.Min(b[1], y0),
		math.Max(b[2], x1),
		math.Max(b[3], y1),
	}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o[0], o[1], o[2], o[3])
}

// Inflate returns the box grown by d on every side. Empty boxes stay empty.
func (b Bounds) Inflate(d float64) Bounds {
	if b.IsEmpty() {
		return b
	}
	return Bounds{b[0] - d, b[1] - d, b[2] + d, b[3] + d}
}

// Contains reports whether o lies entirely inside b.
func (b Bounds) Contains(o Bounds) bool {
	if o.IsEmpty() {
		return true
	}
	if b.IsEmpty() {
		return false
	}
	return o[0] >= b[0] && o[1] >= b[1] && o[2] <= b[2] && o[3] <= b[3]
}

// Rect returns the integer rectangle covering the box, clipped to clip.
func (b Bounds) Rect(clip image.Rectangle) image.Rectangle {
	if b.IsEmpty() {
		return image.Rectangle{}
	}
	return b.pixels().Intersect(clip)
}

// pixels returns the smallest integer rectangle covering the box.
func (b Bounds) pixels() image.Rectangle {
	return image.Rect(
		int(math.Floor(b[0])), int(math.Floor(b[1])),
		int(math.Ceil(b[2])), int(math.Ceil(b[3])),
	)
}

// MarshalJSON encodes the box as a four-element array, or null when empty.
func (b Bounds) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal([4]float64(b))
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = EmptyBounds()
		return nil
	}
	var v [4]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bounds(v)
	return nil
}
