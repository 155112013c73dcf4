package session

import (
	"errors"

	"github.com/gogpu/ink"
)

// ErrPointerBusy is returned by Pointer.Down while another pointer holds
// the open stroke.
var ErrPointerBusy = errors.New("session: another pointer is drawing")

// Pointer is one input source drawing into a session, such as a mouse or
// a remote client. A stroke begun by a pointer belongs to it: moves and
// lift-offs from other pointers never touch it, and other pointers cannot
// go down until it is released.
type Pointer struct {
	s *Session
}

// NewPointer returns a new input source for s.
func (s *Session) NewPointer() *Pointer {
	return &Pointer{s: s}
}

// Down begins a stroke at a screen position owned by p.
func (p *Pointer) Down(screenX, screenY float64, pr ink.Pressure) error {
	s := p.s
	var fire callbacks
	err := s.do(func() error {
		if s.owner != nil && s.owner != p {
			return ErrPointerBusy
		}
		s.beginStroke(&fire)
		s.owner = p
		x, y := s.toRaster(screenX, screenY)
		s.addPosition(&fire, x, y, pr)
		return nil
	})
	fire.run()
	return err
}

// Move extends p's stroke. It is ignored unless p holds the open stroke.
func (p *Pointer) Move(screenX, screenY float64, pr ink.Pressure) error {
	s := p.s
	var fire callbacks
	err := s.do(func() error {
		if s.owner != p {
			return nil
		}
		x, y := s.toRaster(screenX, screenY)
		s.addPosition(&fire, x, y, pr)
		return nil
	})
	fire.run()
	return err
}

// Up ends p's stroke. It is ignored unless p holds the open stroke.
func (p *Pointer) Up() error {
	s := p.s
	var fire callbacks
	err := s.do(func() error {
		if s.owner != p {
			return nil
		}
		s.endStroke(&fire)
		return nil
	})
	fire.run()
	return err
}

// Drawing reports whether p holds the open stroke.
func (p *Pointer) Drawing() bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.owner == p
}

// State returns the session state with Drawing set for p.
func (p *Pointer) State() State {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.state(p)
}
