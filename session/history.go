package session

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/ink"
)

// Operation tags a history entry.
type Operation int

// OpStroke is a freehand stroke, the only operation recorded so far.
const OpStroke Operation = 0

// Point is one recorded stroke sample. T is milliseconds since the stroke
// began; P is omitted when the device reported no pressure.
type Point struct {
	X float64  `json:"X"`
	Y float64  `json:"Y"`
	T float64  `json:"T"`
	P *float64 `json:"P,omitempty"`
}

func pointOf(s ink.Sample) Point {
	p := Point{X: s.X, Y: s.Y, T: s.T}
	if s.Pressure.Valid {
		v := s.Pressure.Value
		p.P = &v
	}
	return p
}

// Sample converts the point back into an engine sample.
func (p Point) Sample() ink.Sample {
	s := ink.Sample{X: p.X, Y: p.Y, T: p.T}
	if p.P != nil {
		s.Pressure = ink.PressureOf(*p.P)
	}
	return s
}

// Stroke is a history entry.
type Stroke struct {
	Op     Operation `json:"O"`
	Points []Point   `json:"D"`
}

// History is the ordered log of finished strokes.
type History []Stroke

// Clone returns a deep copy of h.
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	for i, s := range h {
		out[i] = Stroke{Op: s.Op, Points: append([]Point(nil), s.Points...)}
	}
	return out
}

// Replay redraws every stroke of h through e.
func (h History) Replay(e *ink.Engine) {
	for _, s := range h {
		if s.Op != OpStroke {
			continue
		}
		e.BeginStroke()
		for _, p := range s.Points {
			e.AddStrokePosition(p.Sample())
		}
		e.EndStroke()
	}
}

// StrokeData returns the history as [x, y, t] triples grouped by stroke,
// the compact form consumed by vectorization tools.
func (h History) StrokeData() [][][3]float64 {
	out := make([][][3]float64, 0, len(h))
	for _, s := range h {
		pts := make([][3]float64, len(s.Points))
		for i, p := range s.Points {
			pts[i] = [3]float64{p.X, p.Y, p.T}
		}
		out = append(out, pts)
	}
	return out
}

// MarshalJSON encodes an empty history as [] rather than null.
func (h History) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Stroke(h))
}

// ParseHistory decodes a history written by json.Marshal.
func ParseHistory(data []byte) (History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("session: parse history: %w", err)
	}
	return h, nil
}
