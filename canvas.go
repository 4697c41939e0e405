package brush

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/maskbrush/brush/imop"
	"github.com/pkg/errors"
)

// PasteBlend selects how PasteRegion combines the source with the canvas.
type PasteBlend int

const (
	// Additive adds the channel values, saturating at 255. Transparent
	// source pixels leave the canvas untouched.
	Additive PasteBlend = iota
	// Overwrite replaces every canvas pixel covered by the source.
	Overwrite
)

// IsPainted reports whether c marks a mask pixel: both the green
// paint marker and the alpha channel are non-zero.
func IsPainted(c color.NRGBA) bool {
	return c.G != 0 && c.A != 0
}

// Canvas is a fixed size, non-premultiplied RGBA raster buffer.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas allocates a w×h canvas of background pixels using the
// default memory ceiling.
func NewCanvas(w, h int) (*Canvas, error) {
	return NewCanvasLimit(w, h, DefaultMaxCanvasBytes)
}

// NewCanvasLimit allocates a w×h canvas of background pixels. It fails with
// ErrAllocation if a dimension is not positive or the pixel buffer would
// need more than limit bytes. A non-positive limit disables the ceiling.
func NewCanvasLimit(w, h int, limit int64) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.Wrapf(ErrAllocation, "invalid dimensions %dx%d", w, h)
	}
	if limit > 0 && int64(w) > limit/4/int64(h) {
		Logger().Warn("canvas allocation refused", "width", w, "height", h, "limit", limit)
		return nil, errors.Wrapf(ErrAllocation, "%dx%d canvas exceeds the %d bytes ceiling", w, h, limit)
	}
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, w, h))}, nil
}

// newCanvasFrom wraps img, which must have its min point at (0, 0).
func newCanvasFrom(img *image.NRGBA) *Canvas {
	return &Canvas{img: img}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

// Image exposes the underlying pixel buffer. Writes to it modify the canvas.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// At returns the pixel at (x, y), or background outside of the canvas.
func (c *Canvas) At(x, y int) color.NRGBA {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return Background
	}
	return c.img.NRGBAAt(x, y)
}

// Set writes the pixel at (x, y). Coordinates outside of the canvas are ignored.
func (c *Canvas) Set(x, y int, col color.NRGBA) {
	c.img.SetNRGBA(x, y, col)
}

// Painted reports whether the pixel at (x, y) is part of the mask.
func (c *Canvas) Painted(x, y int) bool {
	return IsPainted(c.At(x, y))
}

// Clear resets every pixel to background.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	return newCanvasFrom(imaging.Clone(c.img))
}

// Equal reports whether both canvases have the same size and pixels.
func (c *Canvas) Equal(o *Canvas) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.img.Rect.Eq(o.img.Rect) && bytes.Equal(c.img.Pix, o.img.Pix)
}

// CopyRegion returns a new canvas holding the pixels covered by r.
// The rect is rounded outwards to whole pixels and clipped to the canvas;
// the result is zero sized when nothing of r lies inside of the canvas.
func (c *Canvas) CopyRegion(r Rect) *Canvas {
	rect := r.Image().Intersect(c.img.Rect)
	if rect.Empty() {
		return newCanvasFrom(&image.NRGBA{})
	}
	return newCanvasFrom(imaging.Crop(c.img, rect))
}

// PasteRegion composites src into the canvas with the source's top-left
// corner placed at origin. Source pixels outside of the canvas are dropped.
// The canvas buffer is updated in place, images previously returned by
// Image stay live.
func (c *Canvas) PasteRegion(origin image.Point, src *Canvas, blend PasteBlend) {
	if src == nil || src.img.Rect.Empty() {
		return
	}
	switch blend {
	case Overwrite:
		copy(c.img.Pix, imaging.Paste(c.img, src.img, origin).Pix)
	default:
		op := imop.InitOp()
		op.Set(imop.Add)
		op.Draw(c.img, src.img, origin, 1, nil)
	}
}

// PaintedCount returns the number of mask pixels. It scans the whole buffer.
func (c *Canvas) PaintedCount() int {
	n := 0
	for i := 0; i+3 < len(c.img.Pix); i += 4 {
		if c.img.Pix[i+1] != 0 && c.img.Pix[i+3] != 0 {
			n++
		}
	}
	return n
}
