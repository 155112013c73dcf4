package ink

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/gogpu/ink/internal/cache"
)

// spriteCacheSize bounds the number of scaled sprites kept per brush.
// Brush sizes move continuously within [MinSize, MaxSize], so a stroke
// touches a few dozen integer sizes at most.
const spriteCacheSize = 128

// Brush is the sprite stamped along a stroke.
//
// Scaled copies of the sprite are cached by device pixel size, so stamping
// the same size repeatedly costs one resize.
type Brush struct {
	name    string
	img     image.Image
	sprites *cache.Cache[cache.Size, image.Image]
}

// NewBrush wraps an image as a brush. It returns nil for a nil image.
func NewBrush(name string, img image.Image) *Brush {
	if img == nil {
		return nil
	}
	return &Brush{
		name:    name,
		img:     img,
		sprites: cache.New[cache.Size, image.Image](spriteCacheSize),
	}
}

// LoadBrush decodes a brush sprite from an image file.
func LoadBrush(path string) (*Brush, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ink: load brush: %w", err)
	}
	return NewBrush(path, img), nil
}

// SoftBrush returns a round brush of the given diameter whose alpha falls
// off smoothly towards the rim.
func SoftBrush(diameter int, c color.Color) *Brush {
	if diameter < 1 {
		diameter = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, diameter, diameter))
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	r := float64(diameter) / 2
	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			d := math.Sqrt(dx*dx+dy*dy) / r
			if d >= 1 {
				continue
			}
			// Smoothstep from the solid core to the transparent rim.
			f := clamp((1-d)/0.35, 0, 1)
			f = f * f * (3 - 2*f)
			img.SetNRGBA(x, y, color.NRGBA{R: nc.R, G: nc.G, B: nc.B, A: uint8(math.Round(float64(nc.A) * f))})
		}
	}
	return NewBrush(fmt.Sprintf("soft-%d", diameter), img)
}

// Name returns the brush name, the file path for loaded brushes.
func (b *Brush) Name() string {
	return b.name
}

// Image returns the unscaled sprite.
func (b *Brush) Image() image.Image {
	return b.img
}

// Sprite returns the sprite scaled to w x h device pixels.
func (b *Brush) Sprite(w, h int) image.Image {
	if w < 1 || h < 1 {
		return nil
	}
	key := cache.Size{W: w, H: h}
	return b.sprites.GetOrCreate(key, func() image.Image {
		return resize.Resize(uint(w), uint(h), b.img, resize.Bilinear)
	})
}

// SpriteCacheStats is the statistics snapshot of a brush sprite cache.
type SpriteCacheStats = cache.Stats

// CacheStats reports scaled sprite cache usage.
func (b *Brush) CacheStats() SpriteCacheStats {
	return b.sprites.Stats()
}
