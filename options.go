package ink

import "math/rand/v2"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	canvas := ink.NewCanvas(1024, 1024)
//	e, err := ink.NewEngine(canvas,
//	    ink.WithBrush(ink.SoftBrush(64, color.Black)),
//	    ink.WithRatio(2, 2),
//	)
type EngineOption func(*engineOptions)

type engineOptions struct {
	config      Config
	brush       *Brush
	rng         *rand.Rand
	widthRatio  float64
	heightRatio float64
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		config:      DefaultConfig(),
		widthRatio:  1,
		heightRatio: 1,
	}
}

// WithConfig replaces the brush model configuration.
// The configuration is validated by NewEngine.
func WithConfig(cfg Config) EngineOption {
	return func(o *engineOptions) {
		o.config = cfg
	}
}

// WithBrush sets the initial brush sprite. Without a brush the engine
// tracks stroke state but draws nothing.
func WithBrush(b *Brush) EngineOption {
	return func(o *engineOptions) {
		o.brush = b
	}
}

// WithRatio sets the x/y scale from logical brush size to device pixels.
// See Engine.SetRatio.
func WithRatio(width, height float64) EngineOption {
	return func(o *engineOptions) {
		o.widthRatio = width
		o.heightRatio = height
	}
}

// WithRand sets the random source used for stamp jitter and skipping.
// Tests pass a seeded source to make strokes reproducible.
func WithRand(r *rand.Rand) EngineOption {
	return func(o *engineOptions) {
		o.rng = r
	}
}
