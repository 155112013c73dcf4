package session

import (
	"image"
	"time"

	"github.com/gogpu/ink"
)

// Snapshot is the state of a session handed to an export pipeline.
type Snapshot struct {
	// Ink is a copy of the raw ink on a transparent background.
	Ink *image.RGBA
	// Flattened is the ink composited over white.
	Flattened *image.RGBA
	// Bounds is the extent of the ink.
	Bounds ink.Bounds
	// History is the stroke log the ink was drawn from.
	History History
	// Taken is when the snapshot was captured.
	Taken time.Time
}

// Empty reports whether the snapshot holds no ink.
func (s *Snapshot) Empty() bool {
	return s == nil || s.Bounds.IsEmpty()
}
