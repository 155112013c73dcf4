// Package session drives an ink.Engine from pointer events.
//
// A Session owns what sits around the stroke engine in an interactive
// canvas: screen to raster coordinate mapping, pointer-down tracking,
// locking, the stroke history used for undo and export, and callbacks for
// the UI. All methods are safe for concurrent use; calls are serialized so
// the engine sees every stroke's samples in order.
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/ink"
)

// ErrLocked is returned by mutating calls while the session is locked.
var ErrLocked = errors.New("session: locked")

// Viewport describes the on-screen element showing the canvas.
// Screen coordinates are converted to raster coordinates by subtracting the
// offset and scaling by raster size over client size.
type Viewport struct {
	ClientWidth  float64
	ClientHeight float64
	OffsetX      float64
	OffsetY      float64
}

// Session wires pointer input, history and locking around an engine.
type Session struct {
	mu sync.Mutex

	engine   *ink.Engine
	clock    func() time.Time
	viewport Viewport
	ratioX   float64
	ratioY   float64

	locked   bool
	inStroke bool
	owner    *Pointer // pointer holding the open stroke, if any
	pointer  *Pointer // used by PointerDown, PointerMove and PointerUp
	begin    time.Time
	current     []Point
	history     History

	onBegin func()
	onMove  func()
	onEnd   func()
}

// New creates a session around e. Without WithViewport the screen and
// raster coordinates coincide.
func New(e *ink.Engine, opts ...Option) (*Session, error) {
	if e == nil {
		return nil, errors.New("session: nil engine")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		engine: e,
		clock:  o.clock,
		ratioX: 1,
		ratioY: 1,
	}
	s.pointer = s.NewPointer()
	if o.viewport != nil {
		if err := s.setViewport(*o.viewport); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Engine returns the underlying engine. Callers must not drive it directly
// while the session is in use.
func (s *Session) Engine() *ink.Engine {
	return s.engine
}

// SetViewport updates the screen mapping and the engine display ratio.
func (s *Session) SetViewport(v Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setViewport(v)
}

func (s *Session) setViewport(v Viewport) error {
	if v.ClientWidth <= 0 || v.ClientHeight <= 0 {
		return fmt.Errorf("session: viewport %vx%v must be positive", v.ClientWidth, v.ClientHeight)
	}
	r := s.engine.Surface().Bounds()
	rx := float64(r.Dx()) / v.ClientWidth
	ry := float64(r.Dy()) / v.ClientHeight
	if err := s.engine.SetRatio(rx, ry); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.viewport = v
	s.ratioX, s.ratioY = rx, ry
	return nil
}

// ToRaster converts a screen position into raster coordinates.
func (s *Session) ToRaster(screenX, screenY float64) (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toRaster(screenX, screenY)
}

func (s *Session) toRaster(screenX, screenY float64) (x, y float64) {
	return (screenX - s.viewport.OffsetX) * s.ratioX, (screenY - s.viewport.OffsetY) * s.ratioY
}

// Lock makes every mutating call fail with ErrLocked until Unlock.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = true
}

// Unlock re-enables drawing.
func (s *Session) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
}

// Locked reports whether the session is locked.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// InStroke reports whether a stroke is open.
func (s *Session) InStroke() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inStroke
}

// OnBegin registers a callback fired whenever a stroke begins.
func (s *Session) OnBegin(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBegin = f
}

// OnStrokeMove registers a callback fired after every added position.
func (s *Session) OnStrokeMove(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMove = f
}

// OnStrokeEnd registers a callback fired after a stroke is recorded.
func (s *Session) OnStrokeEnd(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = f
}

// BeginStroke ends any open stroke and starts a new one. Sample timestamps
// count from this call.
func (s *Session) BeginStroke() error {
	var fire callbacks
	err := s.do(func() error {
		s.beginStroke(&fire)
		return nil
	})
	fire.run()
	return err
}

// AddPosition appends a raster-space position to the open stroke,
// beginning one if needed.
func (s *Session) AddPosition(x, y float64, p ink.Pressure) error {
	var fire callbacks
	err := s.do(func() error {
		if !s.inStroke {
			s.beginStroke(&fire)
		}
		s.addPosition(&fire, x, y, p)
		return nil
	})
	fire.run()
	return err
}

// EndStroke records the open stroke in the history and lets the engine
// draw its lift-off tail. It is a no-op without an open stroke.
func (s *Session) EndStroke() error {
	var fire callbacks
	err := s.do(func() error {
		s.endStroke(&fire)
		return nil
	})
	fire.run()
	return err
}

// PointerDown begins a stroke at a screen position with the session's
// built-in pointer. Applications with several input sources give each one
// its own Pointer instead.
func (s *Session) PointerDown(screenX, screenY float64, p ink.Pressure) error {
	return s.pointer.Down(screenX, screenY, p)
}

// PointerMove extends the stroke while the built-in pointer is down.
// Moves without a preceding PointerDown are ignored.
func (s *Session) PointerMove(screenX, screenY float64, p ink.Pressure) error {
	return s.pointer.Move(screenX, screenY, p)
}

// PointerUp ends the stroke started by PointerDown.
func (s *Session) PointerUp() error {
	return s.pointer.Up()
}

// SelectBrush swaps the brush sprite and ends any open stroke, so one
// stroke is never drawn with two brushes.
func (s *Session) SelectBrush(b *ink.Brush) error {
	var fire callbacks
	err := s.do(func() error {
		s.engine.SetBrush(b)
		s.endStroke(&fire)
		return nil
	})
	fire.run()
	return err
}

// Brush returns the selected brush sprite.
func (s *Session) Brush() *ink.Brush {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Brush()
}

// Undo removes the last recorded stroke and redraws the remaining history.
func (s *Session) Undo() error {
	var fire callbacks
	err := s.do(func() error {
		s.endStroke(&fire)
		if len(s.history) == 0 {
			return nil
		}
		s.history = s.history[:len(s.history)-1]
		s.engine.Clear()
		s.history.Replay(s.engine)
		return nil
	})
	fire.run()
	return err
}

// Clear erases the canvas and the stroke history. It works while locked so
// an application can always reset.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inStroke {
		s.engine.EndStroke()
	}
	s.inStroke = false
	s.owner = nil
	s.current = nil
	s.history = nil
	s.engine.Clear()
}

// Bounds returns the extent of the ink on the canvas.
func (s *Session) Bounds() ink.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Bounds()
}

// State is a consistent view of the session taken under one lock.
type State struct {
	Bounds   ink.Bounds
	Strokes  int
	Locked   bool
	InStroke bool
	// Drawing reports whether the pointer the state was taken for holds
	// the open stroke. It is always false for Session.State.
	Drawing bool
}

// State returns the ink bounds, stroke count and lock state together.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(nil)
}

func (s *Session) state(p *Pointer) State {
	return State{
		Bounds:   s.engine.Bounds(),
		Strokes:  len(s.history),
		Locked:   s.locked,
		InStroke: s.inStroke,
		Drawing:  p != nil && s.owner == p,
	}
}

// History returns a copy of the recorded strokes.
func (s *Session) History() History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clone()
}

// StrokeData returns the recorded strokes as [x, y, t] triples.
func (s *Session) StrokeData() [][][3]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.StrokeData()
}

// Snapshot captures the ink for hand-off to an export pipeline.
// It returns nil when the engine does not draw onto an *ink.Canvas.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.engine.Surface().(*ink.Canvas)
	if !ok {
		return nil
	}
	raw := c.Image()
	inkCopy := image.NewRGBA(raw.Rect)
	copy(inkCopy.Pix, raw.Pix)

	return &Snapshot{
		Ink:       inkCopy,
		Flattened: c.Composite(nil),
		Bounds:    s.engine.Bounds(),
		History:   s.history.Clone(),
		Taken:     s.clock(),
	}
}

// do runs f under the lock unless the session is locked.
func (s *Session) do(f func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		ink.Logger().Debug("session: call ignored while locked")
		return ErrLocked
	}
	return f()
}

func (s *Session) beginStroke(fire *callbacks) {
	fire.add(s.onBegin)
	s.endStroke(fire)

	s.inStroke = true
	s.begin = s.clock()
	s.current = s.current[:0]
	s.engine.BeginStroke()
}

func (s *Session) addPosition(fire *callbacks, x, y float64, p ink.Pressure) {
	sample := ink.Sample{
		X:        x,
		Y:        y,
		T:        float64(s.clock().Sub(s.begin)) / float64(time.Millisecond),
		Pressure: p,
	}
	s.current = append(s.current, pointOf(sample))
	s.engine.AddStrokePosition(sample)
	fire.add(s.onMove)
}

func (s *Session) endStroke(fire *callbacks) {
	s.owner = nil
	if !s.inStroke {
		return
	}
	s.history = append(s.history, Stroke{Op: OpStroke, Points: append([]Point(nil), s.current...)})
	s.inStroke = false
	s.current = s.current[:0]
	s.engine.EndStroke()
	fire.add(s.onEnd)
}

// callbacks collects user callbacks to run once the lock is released, so a
// callback may call back into the session.
type callbacks []func()

func (c *callbacks) add(f func()) {
	if f != nil {
		*c = append(*c, f)
	}
}

func (c callbacks) run() {
	for _, f := range c {
		f()
	}
}
