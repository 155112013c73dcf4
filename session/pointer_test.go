package session

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/ink"
)

func TestPointersKeepTheirOwnStrokes(t *testing.T) {
	s, clk := newTestSession(t)
	a, b := s.NewPointer(), s.NewPointer()

	if err := a.Down(10, 10, ink.NoPressure); err != nil {
		t.Fatal(err)
	}
	clk.Advance(10 * time.Millisecond)
	if err := a.Move(30, 10, ink.NoPressure); err != nil {
		t.Fatal(err)
	}

	// Another pointer can neither extend, end nor replace a's stroke.
	if err := b.Move(90, 90, ink.NoPressure); err != nil {
		t.Fatal(err)
	}
	if err := b.Up(); err != nil {
		t.Fatal(err)
	}
	if err := b.Down(90, 90, ink.NoPressure); !errors.Is(err, ErrPointerBusy) {
		t.Errorf("b.Down() error = %v, want ErrPointerBusy", err)
	}
	if !s.InStroke() || !a.Drawing() || b.Drawing() {
		t.Fatalf("InStroke = %v, a.Drawing = %v, b.Drawing = %v, want a still drawing",
			s.InStroke(), a.Drawing(), b.Drawing())
	}

	clk.Advance(10 * time.Millisecond)
	if err := a.Move(50, 10, ink.NoPressure); err != nil {
		t.Fatal(err)
	}
	if err := a.Up(); err != nil {
		t.Fatal(err)
	}

	h := s.History()
	if len(h) != 1 || len(h[0].Points) != 3 {
		t.Fatalf("History() = %+v, want one stroke of three points", h)
	}
	for _, p := range h[0].Points {
		if p.X == 90 {
			t.Errorf("point %+v from another pointer leaked into the stroke", p)
		}
	}

	// Once a lifts off, b may draw.
	if err := b.Down(90, 90, ink.NoPressure); err != nil {
		t.Errorf("b.Down() after a.Up() error = %v", err)
	}
	if !b.Drawing() {
		t.Error("b does not hold the stroke it began")
	}
}

func TestPointerReleasedWhenStrokeEndsElsewhere(t *testing.T) {
	tests := []struct {
		name string
		end  func(s *Session) error
	}{
		{"EndStroke", func(s *Session) error { return s.EndStroke() }},
		{"SelectBrush", func(s *Session) error { return s.SelectBrush(s.Brush()) }},
		{"Undo", func(s *Session) error { return s.Undo() }},
		{"Clear", func(s *Session) error { s.Clear(); return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			a, b := s.NewPointer(), s.NewPointer()
			if err := a.Down(10, 10, ink.NoPressure); err != nil {
				t.Fatal(err)
			}
			if err := tt.end(s); err != nil {
				t.Fatal(err)
			}
			if a.Drawing() {
				t.Error("pointer still holds a closed stroke")
			}
			if err := b.Down(20, 20, ink.NoPressure); err != nil {
				t.Errorf("b.Down() error = %v, want the stroke released", err)
			}
		})
	}
}

func TestSessionState(t *testing.T) {
	s, _ := newTestSession(t)
	if st := s.State(); !st.Bounds.IsEmpty() || st.Strokes != 0 || st.Locked || st.InStroke || st.Drawing {
		t.Errorf("initial State() = %+v, want zero", st)
	}

	p := s.NewPointer()
	if err := p.Down(40, 40, ink.NoPressure); err != nil {
		t.Fatal(err)
	}
	if st := p.State(); !st.InStroke || !st.Drawing || st.Bounds.IsEmpty() {
		t.Errorf("p.State() while drawing = %+v", st)
	}
	if st := s.State(); st.Drawing {
		t.Error("Session.State() reports Drawing")
	}

	if err := p.Up(); err != nil {
		t.Fatal(err)
	}
	s.Lock()
	st := p.State()
	if st.Strokes != 1 || !st.Locked || st.InStroke || st.Drawing {
		t.Errorf("State() after up and lock = %+v, want one stroke, locked, idle", st)
	}
}
