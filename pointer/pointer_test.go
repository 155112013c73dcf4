package pointer

import (
	"image/color"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := ink.DefaultConfig()
	cfg.SkipProbability = 0
	cfg.JitterAmplitude = 0
	e, err := ink.NewEngine(ink.NewCanvas(400, 300),
		ink.WithConfig(cfg),
		ink.WithBrush(ink.SoftBrush(16, color.Black)),
		ink.WithRand(rand.New(rand.NewPCG(5, 5))),
	)
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(e, session.WithViewport(session.Viewport{ClientWidth: 400, ClientHeight: 300}))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func dial(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return dialURL(t, srv.URL)
}

func dialURL(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, ev Event) Reply {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var r Reply
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return r
}

func TestHandlerStroke(t *testing.T) {
	s := newTestSession(t)
	conn := dial(t, NewHandler(s))

	p := 0.7
	r := roundTrip(t, conn, Event{Type: TypeDown, X: 100, Y: 100, Pressure: &p})
	if r.Bounds.IsEmpty() {
		t.Error("bounds empty after pointer down")
	}
	roundTrip(t, conn, Event{Type: TypeMove, X: 140, Y: 120, Pressure: &p})
	r = roundTrip(t, conn, Event{Type: TypeUp})

	if r.Strokes != 1 {
		t.Errorf("Strokes = %d, want 1", r.Strokes)
	}
	if r.Error != "" {
		t.Errorf("Error = %q", r.Error)
	}
	if !r.Bounds.Contains(ink.NewBounds(100, 100, 120, 110)) {
		t.Errorf("Bounds = %v, want the stroke covered", r.Bounds)
	}

	h := s.History()
	if len(h) != 1 || h[0].Points[0].P == nil || *h[0].Points[0].P != 0.7 {
		t.Errorf("History() = %+v, want pressure 0.7 recorded", h)
	}
}

func TestHandlerUndoAndClear(t *testing.T) {
	s := newTestSession(t)
	conn := dial(t, NewHandler(s))

	roundTrip(t, conn, Event{Type: TypeDown, X: 50, Y: 50})
	roundTrip(t, conn, Event{Type: TypeUp})
	roundTrip(t, conn, Event{Type: TypeDown, X: 300, Y: 200})
	r := roundTrip(t, conn, Event{Type: TypeUp})
	if r.Strokes != 2 {
		t.Fatalf("Strokes = %d, want 2", r.Strokes)
	}

	r = roundTrip(t, conn, Event{Type: TypeUndo})
	if r.Strokes != 1 || r.Bounds.MaxX() >= 280 {
		t.Errorf("after undo: %+v, want only the first stroke", r)
	}

	r = roundTrip(t, conn, Event{Type: TypeClear})
	if r.Strokes != 0 || !r.Bounds.IsEmpty() {
		t.Errorf("after clear: %+v, want an empty canvas", r)
	}
}

func TestHandlerLockedAndUnknown(t *testing.T) {
	s := newTestSession(t)
	conn := dial(t, NewHandler(s))

	s.Lock()
	r := roundTrip(t, conn, Event{Type: TypeDown, X: 50, Y: 50})
	if !r.Locked || r.Error != "" || !r.Bounds.IsEmpty() {
		t.Errorf("locked reply = %+v, want locked without ink or error", r)
	}
	s.Unlock()

	r = roundTrip(t, conn, Event{Type: "scribble"})
	if !strings.Contains(r.Error, "unknown event type") {
		t.Errorf("Error = %q, want unknown event type", r.Error)
	}
}

func TestHandlerDisconnectEndsStroke(t *testing.T) {
	s := newTestSession(t)
	conn := dial(t, NewHandler(s))

	roundTrip(t, conn, Event{Type: TypeDown, X: 50, Y: 50})
	_ = conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.InStroke() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.InStroke() {
		t.Error("stroke still open after the client disconnected")
	}
	if len(s.History()) != 1 {
		t.Errorf("len(History()) = %d, want the interrupted stroke recorded", len(s.History()))
	}
}

func TestApplyWithoutConnection(t *testing.T) {
	h := NewHandler(newTestSession(t))
	r := h.Apply(Event{Type: TypeDown, X: 10, Y: 10})
	if r.Bounds.IsEmpty() {
		t.Error("Apply(down) drew nothing")
	}
	if r := h.Apply(Event{Type: TypeUp}); r.Strokes != 1 {
		t.Errorf("Strokes = %d, want 1", r.Strokes)
	}
}

func waitForConnections(t *testing.T, h *Handler, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Connections() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Connections() = %d, want %d", h.Connections(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandlerClientsOwnTheirStrokes(t *testing.T) {
	s := newTestSession(t)
	h := NewHandler(s)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a := dialURL(t, srv.URL)
	roundTrip(t, a, Event{Type: TypeDown, X: 10, Y: 10})
	if r := roundTrip(t, a, Event{Type: TypeMove, X: 30, Y: 10}); !r.Drawing {
		t.Fatalf("reply to the drawing client = %+v, want Drawing", r)
	}

	b := dialURL(t, srv.URL)
	if r := roundTrip(t, b, Event{Type: TypeMove, X: 200, Y: 200}); r.Drawing {
		t.Errorf("reply to the idle client = %+v, want not Drawing", r)
	}
	if r := roundTrip(t, b, Event{Type: TypeDown, X: 200, Y: 200}); !strings.Contains(r.Error, "another pointer") {
		t.Errorf("Error = %q, want the stroke reported busy", r.Error)
	}
	_ = b.Close()
	waitForConnections(t, h, 1)

	if !s.InStroke() {
		t.Fatal("a disconnecting client ended another client's stroke")
	}
	r := roundTrip(t, a, Event{Type: TypeMove, X: 50, Y: 10})
	if !r.Drawing || r.Strokes != 0 {
		t.Errorf("reply after the other client left = %+v, want still drawing", r)
	}
	if r := roundTrip(t, a, Event{Type: TypeUp}); r.Strokes != 1 {
		t.Errorf("Strokes = %d, want 1", r.Strokes)
	}

	hist := s.History()
	if len(hist) != 1 || len(hist[0].Points) != 3 {
		t.Fatalf("History() = %+v, want one stroke of three points", hist)
	}
	for _, p := range hist[0].Points {
		if p.X == 200 {
			t.Errorf("point %+v from the other client leaked into the stroke", p)
		}
	}
}
