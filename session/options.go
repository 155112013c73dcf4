package session

import "time"

// Option configures a Session during creation.
type Option func(*options)

type options struct {
	clock    func() time.Time
	viewport *Viewport
}

// WithClock sets the time source for sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithViewport maps screen coordinates of the given element onto the
// engine's raster surface and sets the engine display ratio to match.
func WithViewport(v Viewport) Option {
	return func(o *options) {
		o.viewport = &v
	}
}
