// Package export hands finished ink to the pipeline that vectorizes and
// extrudes it.
//
// An export writes two artifacts under a common name: <name>.png, the ink
// flattened over white and cropped to its padded bounds, and <name>.json,
// the stroke history it was drawn from.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/gogpu/ink/session"
)

// ErrNothingToExport is returned for snapshots without ink.
var ErrNothingToExport = errors.New("export: nothing to export")

// DefaultPadding is the margin in pixels kept around the ink when cropping.
const DefaultPadding = 8

// Exporter delivers a snapshot and returns where it was stored.
type Exporter interface {
	Export(ctx context.Context, snap *session.Snapshot) (string, error)
}

// Artifacts are the encoded export files.
type Artifacts struct {
	PNG  []byte
	JSON []byte
}

// Encode crops the flattened ink to its bounds grown by pad pixels and
// encodes it together with the stroke history.
func Encode(snap *session.Snapshot, pad float64) (*Artifacts, error) {
	if snap.Empty() {
		return nil, ErrNothingToExport
	}
	img := Crop(snap, pad)
	if img == nil {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("export: encode png: %w", err)
	}
	hist, err := json.Marshal(snap.History)
	if err != nil {
		return nil, fmt.Errorf("export: encode history: %w", err)
	}
	return &Artifacts{PNG: buf.Bytes(), JSON: hist}, nil
}

// Crop returns the flattened ink inside the padded bounds, clipped to the
// canvas, or nil when that region is empty.
func Crop(snap *session.Snapshot, pad float64) *image.NRGBA {
	r := snap.Bounds.Inflate(pad).Rect(snap.Flattened.Rect)
	if r.Empty() {
		return nil
	}
	return imaging.Crop(snap.Flattened, r)
}

// Name returns the default artifact name for a snapshot, derived from the
// time it was taken.
func Name(snap *session.Snapshot) string {
	return "ink-" + snap.Taken.UTC().Format("20060102T150405.000Z")
}
