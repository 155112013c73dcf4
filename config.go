package ink

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Default tunables. They were tuned by hand against real pen input and are
// not physical constants.
const (
	DefaultMinSize              = 10.0
	DefaultMaxSize              = 40.0
	DefaultVelocityPressureCoff = 10.0
	DefaultBufferingSize        = 4
	DefaultSkipProbability      = 0.2
	DefaultJitterAmplitude      = 1.2
	DefaultMaxTailDelay         = 50.0
)

// Config holds the brush model parameters of an Engine.
type Config struct {
	// MinSize is the floor brush diameter in logical pixels.
	MinSize float64 `toml:"min_size"`
	// MaxSize is the ceiling brush diameter in logical pixels.
	MaxSize float64 `toml:"max_size"`
	// VelocityPressureCoff controls how quickly the brush thins with
	// velocity. Smaller values make the size react over a narrower
	// velocity range.
	VelocityPressureCoff float64 `toml:"velocity_pressure_coff"`
	// BufferingSize is the number of most recent samples averaged into
	// the displayed position.
	BufferingSize int `toml:"buffering_size"`
	// SkipProbability is the chance that a single stamp is dropped.
	SkipProbability float64 `toml:"skip_probability"`
	// JitterAmplitude bounds the diagonal stamp offset in pixels.
	JitterAmplitude float64 `toml:"jitter_amplitude"`
	// MaxTailDelay caps the extrapolated timestamp of a lift-off tail,
	// in milliseconds after the last drawn position.
	MaxTailDelay float64 `toml:"max_tail_delay"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MinSize:              DefaultMinSize,
		MaxSize:              DefaultMaxSize,
		VelocityPressureCoff: DefaultVelocityPressureCoff,
		BufferingSize:        DefaultBufferingSize,
		SkipProbability:      DefaultSkipProbability,
		JitterAmplitude:      DefaultJitterAmplitude,
		MaxTailDelay:         DefaultMaxTailDelay,
	}
}

// Validate reports whether the configuration is usable.
// The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MinSize <= 0:
		return fmt.Errorf("%w: min_size %v must be positive", ErrInvalidConfig, c.MinSize)
	case c.MinSize > c.MaxSize:
		return fmt.Errorf("%w: min_size %v exceeds max_size %v", ErrInvalidConfig, c.MinSize, c.MaxSize)
	case c.VelocityPressureCoff <= 0:
		return fmt.Errorf("%w: velocity_pressure_coff %v must be positive", ErrInvalidConfig, c.VelocityPressureCoff)
	case c.BufferingSize < 1:
		return fmt.Errorf("%w: buffering_size %d must be at least 1", ErrInvalidConfig, c.BufferingSize)
	case c.SkipProbability < 0 || c.SkipProbability >= 1:
		return fmt.Errorf("%w: skip_probability %v outside [0, 1)", ErrInvalidConfig, c.SkipProbability)
	case c.JitterAmplitude < 0:
		return fmt.Errorf("%w: jitter_amplitude %v is negative", ErrInvalidConfig, c.JitterAmplitude)
	case c.MaxTailDelay < 0:
		return fmt.Errorf("%w: max_tail_delay %v is negative", ErrInvalidConfig, c.MaxTailDelay)
	}
	return nil
}

// LoadConfig reads a TOML file on top of DefaultConfig and validates the
// result. Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return cfg, fmt.Errorf("ink: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ink: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
