// Package pointer streams browser pointer events into a stroke session
// over a websocket.
//
// Each client message is one JSON event:
//
//	{"type": "down", "x": 120, "y": 48, "p": 0.4}
//	{"type": "move", "x": 124, "y": 51}
//	{"type": "up"}
//
// Coordinates are screen pixels relative to the page, converted to raster
// coordinates by the session viewport. "p" is omitted by devices without
// pressure. The types "clear" and "undo" edit the canvas. The server
// answers every event with a Reply.
//
// Every connection is its own session.Pointer: a stroke belongs to the
// client that began it, and other clients cannot go down until it lifts
// off or disconnects.
package pointer

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/session"
)

// Event types.
const (
	TypeDown  = "down"
	TypeMove  = "move"
	TypeUp    = "up"
	TypeClear = "clear"
	TypeUndo  = "undo"
)

// Event is a pointer message from the client.
type Event struct {
	Type     string   `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Pressure *float64 `json:"p,omitempty"`
}

func (e Event) pressure() ink.Pressure {
	if e.Pressure == nil {
		return ink.NoPressure
	}
	return ink.PressureOf(*e.Pressure)
}

// Reply reports the canvas state after an event.
type Reply struct {
	Bounds  ink.Bounds `json:"bounds"`
	Strokes int        `json:"strokes"`
	Locked  bool       `json:"locked,omitempty"`
	// Drawing reports whether this client holds the open stroke.
	Drawing bool       `json:"drawing,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCheckOrigin overrides the websocket origin check. By default only
// same-origin requests are accepted.
func WithCheckOrigin(f func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = f
	}
}

// WithWriteTimeout bounds the time spent writing each reply.
func WithWriteTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.writeTimeout = d
	}
}

// Handler serves the pointer websocket for one session.
type Handler struct {
	session      *session.Session
	pointer      *session.Pointer // used by Apply
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	conns        atomic.Int64
}

// NewHandler returns a handler feeding s.
func NewHandler(s *session.Session, opts ...HandlerOption) *Handler {
	h := &Handler{
		session: s,
		pointer: s.NewPointer(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the connection and processes events until the client
// disconnects. An open stroke is ended when the connection drops.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		ink.Logger().Warn("pointer: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ptr := h.session.NewPointer()
	log := ink.Logger().With("remote", r.RemoteAddr)
	log.Debug("pointer: client connected", "clients", h.conns.Add(1))
	defer func() {
		if err := ptr.Up(); err != nil && !errors.Is(err, session.ErrLocked) {
			log.Warn("pointer: end stroke on disconnect", "err", err)
		}
		log.Debug("pointer: client disconnected", "clients", h.conns.Add(-1))
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("pointer: read failed", "err", err)
			}
			return
		}

		reply := apply(h.session, ptr, ev)
		if h.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("pointer: write failed", "err", err)
			return
		}
	}
}

// Connections returns the number of connected clients.
func (h *Handler) Connections() int {
	return int(h.conns.Load())
}

// Apply dispatches one event to the session and reports the result.
// Events applied this way share one pointer, separate from every
// connected client.
func (h *Handler) Apply(ev Event) Reply {
	return apply(h.session, h.pointer, ev)
}

func apply(s *session.Session, ptr *session.Pointer, ev Event) Reply {
	var err error
	switch ev.Type {
	case TypeDown:
		err = ptr.Down(ev.X, ev.Y, ev.pressure())
	case TypeMove:
		err = ptr.Move(ev.X, ev.Y, ev.pressure())
	case TypeUp:
		err = ptr.Up()
	case TypeClear:
		s.Clear()
	case TypeUndo:
		err = s.Undo()
	default:
		err = fmt.Errorf("pointer: unknown event type %q", ev.Type)
	}

	st := ptr.State()
	reply := Reply{
		Bounds:  st.Bounds,
		Strokes: st.Strokes,
		Locked:  st.Locked,
		Drawing: st.Drawing,
	}
	if err != nil && !errors.Is(err, session.ErrLocked) {
		reply.Error = err.Error()
	}
	return reply
}
