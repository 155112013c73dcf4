package ink

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Reporting every level as disabled keeps
// Debug calls on the stroke path free of formatting work.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var (
	silent = slog.New(nopHandler{})
	logger atomic.Pointer[slog.Logger]
)

func init() {
	logger.Store(silent)
}

// SetLogger routes diagnostics from the engine, the session, the exporters
// and the pointer transport to l. Nil silences them again, which is also
// the initial state. It may be called while strokes are being drawn.
//
// Debug records trace single strokes: synthesized lift-off tails and events
// dropped by a locked session. Info records brush reloads and exported
// ink. Warn records failures that leave the canvas usable, such as an
// unreadable brush file or a client that dropped mid-stroke.
//
//	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return logger.Load()
}
