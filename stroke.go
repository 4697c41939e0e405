package brush

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/maskbrush/brush/imop"
	"github.com/maskbrush/brush/utils"
	"golang.org/x/image/vector"
)

// coverageThreshold is the minimum antialiased coverage (out of 255)
// for a pixel to be considered covered by the brush. Mask pixels are
// binary, so the rasterized coverage is thresholded instead of blended.
const coverageThreshold = 0x80

var rasterizers = sync.Pool{
	New: func() any { return vector.NewRasterizer(0, 0) },
}

// DrawSegment composites a round capped stroke of the given diameter
// between from and to. Paint writes col wherever the brush covers;
// Erase clears the covered pixels using destination-out, whatever col is.
// A diameter below one is treated as one and segments with a non-finite
// endpoint are ignored. The bounds tracker is not updated, that is the
// caller's responsibility.
func (c *Canvas) DrawSegment(from, to Point, diameter int, op StrokeOp, col color.NRGBA) {
	if !from.Finite() || !to.Finite() {
		return
	}
	mask := strokeMask(from, to, diameter, c.img.Rect)
	if mask == nil {
		return
	}

	comp := imop.InitOp()
	switch op {
	case Erase:
		comp.Set(imop.DstOut)
		col = color.NRGBA{A: 0xff}
	default:
		comp.Set(imop.Copy)
	}

	b := mask.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		mi := mask.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, mi = x+1, mi+1 {
			if mask.Pix[mi] == 0 {
				continue
			}
			di := c.img.PixOffset(x, y)
			dst := color.NRGBA{R: c.img.Pix[di], G: c.img.Pix[di+1], B: c.img.Pix[di+2], A: c.img.Pix[di+3]}
			out := comp.Pixel(col, dst)
			c.img.Pix[di+0] = out.R
			c.img.Pix[di+1] = out.G
			c.img.Pix[di+2] = out.B
			c.img.Pix[di+3] = out.A
		}
	}
}

// DrawDab composites a single disc of the given diameter centered at at.
func (c *Canvas) DrawDab(at Point, diameter int, op StrokeOp, col color.NRGBA) {
	c.DrawSegment(at, at, diameter, op, col)
}

// strokeMask rasterizes the round capped segment between from and to,
// clipped to clip. The returned mask is expressed in canvas coordinates
// and holds either 0 or 0xff per pixel. It is nil when nothing is covered.
//
// Integer coordinates fall on pixel corners, a pixel being covered when the
// shape covers at least half of it. The pixels under both endpoints are
// always covered, so the thinnest brushes still leave a trace.
func strokeMask(from, to Point, diameter int, clip image.Rectangle) *image.Alpha {
	r := float64(utils.Max(diameter, 1)) / 2

	bb := image.Rect(
		int(math.Floor(utils.Min(from.X, to.X)-r))-1,
		int(math.Floor(utils.Min(from.Y, to.Y)-r))-1,
		int(math.Ceil(utils.Max(from.X, to.X)+r))+1,
		int(math.Ceil(utils.Max(from.Y, to.Y)+r))+1,
	).Intersect(clip)
	if bb.Empty() {
		return nil
	}

	z := rasterizers.Get().(*vector.Rasterizer)
	defer rasterizers.Put(z)
	z.Reset(bb.Dx(), bb.Dy())

	off := Pt(float64(bb.Min.X), float64(bb.Min.Y))
	capsule(z, from.Sub(off), to.Sub(off), r)

	mask := image.NewAlpha(bb)
	z.Draw(mask, bb, image.Opaque, image.Point{})

	covered := false
	for i, v := range mask.Pix {
		if v >= coverageThreshold {
			mask.Pix[i] = 0xff
			covered = true
		} else {
			mask.Pix[i] = 0
		}
	}
	for _, p := range [...]Point{from, to} {
		if pt := p.Image(); pt.In(bb) {
			mask.Pix[mask.PixOffset(pt.X, pt.Y)] = 0xff
			covered = true
		}
	}
	if !covered {
		return nil
	}
	return mask
}

// capsule adds the outline of a stadium shape to the rasterizer: the
// segment from-to swept by a disc of radius r. When from equals to
// the outline degenerates to a circle.
func capsule(z *vector.Rasterizer, from, to Point, r float64) {
	steps := utils.Clamp(int(math.Ceil(2*r)), 8, 256)

	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		z.MoveTo(float32(to.X+r), float32(to.Y))
		for i := 1; i < 2*steps; i++ {
			t := math.Pi * float64(i) / float64(steps)
			z.LineTo(float32(to.X+r*math.Cos(t)), float32(to.Y+r*math.Sin(t)))
		}
		z.ClosePath()
		return
	}

	// unit direction and its normal
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	// cap around to, from the left side to the right side
	for i := 0; i <= steps; i++ {
		t := math.Pi * float64(i) / float64(steps)
		cos, sin := math.Cos(t), math.Sin(t)
		x := to.X + r*(nx*cos+ux*sin)
		y := to.Y + r*(ny*cos+uy*sin)
		if i == 0 {
			z.MoveTo(float32(x), float32(y))
		} else {
			z.LineTo(float32(x), float32(y))
		}
	}
	// cap around from, back to the left side
	for i := 0; i <= steps; i++ {
		t := math.Pi * float64(i) / float64(steps)
		cos, sin := math.Cos(t), math.Sin(t)
		z.LineTo(
			float32(from.X-r*(nx*cos+ux*sin)),
			float32(from.Y-r*(ny*cos+uy*sin)),
		)
	}
	z.ClosePath()
}
