package ink

import "errors"

// ErrInvalidConfig is returned when an engine configuration cannot produce
// sensible brush sizes. Validation errors wrap it with the offending field.
var ErrInvalidConfig = errors.New("ink: invalid configuration")
