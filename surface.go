package ink

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Surface is the raster target of an Engine.
//
// Stamp draws brush b with its top-left corner at (x, y) scaled to w x h
// device pixels. Implementations must tolerate a nil brush.
type Surface interface {
	Stamp(b *Brush, x, y, w, h float64)
	Clear()
	Bounds() image.Rectangle
}

// Canvas is an in-memory RGBA Surface.
type Canvas struct {
	img *image.RGBA
}

var _ Surface = (*Canvas)(nil)

// NewCanvas creates a transparent canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the width of the canvas.
func (c *Canvas) Width() int {
	return c.img.Rect.Dx()
}

// Height returns the height of the canvas.
func (c *Canvas) Height() int {
	return c.img.Rect.Dy()
}

// Bounds implements Surface.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Rect
}

// Image returns the backing image. The ink is drawn on a transparent
// background; use Composite for a flattened copy.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Stamp implements Surface. The sprite fills the pixels covering the stamp
// rectangle, the same pixels Bounds.Rect reports for it. Stamps under a
// pixel wide are dropped.
func (c *Canvas) Stamp(b *Brush, x, y, w, h float64) {
	if b == nil || w < 1 || h < 1 {
		return
	}
	r := NewBounds(x, y, x+w, y+h).pixels()
	sprite := b.Sprite(r.Dx(), r.Dy())
	if sprite == nil {
		return
	}
	xdraw.Draw(c.img, r, sprite, sprite.Bounds().Min, xdraw.Over)
}

// Clear erases all ink.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

// IsBlank reports whether no pixel carries any ink.
func (c *Canvas) IsBlank() bool {
	for i := 3; i < len(c.img.Pix); i += 4 {
		if c.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Composite flattens the ink over a background. A nil background is opaque
// white; other backgrounds are scaled to the canvas size.
func (c *Canvas) Composite(background image.Image) *image.RGBA {
	dst := image.NewRGBA(c.img.Rect)
	if background == nil {
		xdraw.Draw(dst, dst.Rect, image.NewUniform(color.White), image.Point{}, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Rect, background, background.Bounds(), xdraw.Src, nil)
	}
	xdraw.Draw(dst, dst.Rect, c.img, c.img.Rect.Min, xdraw.Over)
	return dst
}

// Crop returns the inked region described by bounds grown by pad pixels,
// clipped to the canvas. It returns nil for empty bounds.
func (c *Canvas) Crop(bounds Bounds, pad float64) *image.NRGBA {
	r := bounds.Inflate(pad).Rect(c.img.Rect)
	if r.Empty() {
		return nil
	}
	return imaging.Crop(c.img, r)
}

// EncodePNG writes the canvas composited over background as PNG.
func (c *Canvas) EncodePNG(w io.Writer, background image.Image) error {
	return png.Encode(w, c.Composite(background))
}

// SavePNG saves the canvas composited over white to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	bw := bufio.NewWriter(f)
	if err := c.EncodePNG(bw, nil); err != nil {
		return fmt.Errorf("ink: encode %s: %w", path, err)
	}
	return bw.Flush()
}
