package brush

import (
	"image"
	"math"

	"github.com/maskbrush/brush/utils"
)

// Point is a position in canvas coordinates. Pointer positions may fall
// between pixels, hence the floating point components.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Finite reports whether both components of p are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Image returns the pixel containing p.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

// Rect is an axis aligned bounding box. For pixel extents all edges are
// inclusive: a single pixel at (x, y) is Rect{x, y, x, y}.
// A rect with Left > Right or Top > Bottom is empty.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Empty reports whether the rect contains no points.
func (r Rect) Empty() bool {
	return r.Left > r.Right || r.Top > r.Bottom
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Union returns the smallest rect containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Left:   utils.Min(r.Left, s.Left),
		Top:    utils.Min(r.Top, s.Top),
		Right:  utils.Max(r.Right, s.Right),
		Bottom: utils.Max(r.Bottom, s.Bottom),
	}
}

// Translate returns r moved by the offset d.
func (r Rect) Translate(d Point) Rect {
	return Rect{
		Left:   r.Left + d.X,
		Top:    r.Top + d.Y,
		Right:  r.Right + d.X,
		Bottom: r.Bottom + d.Y,
	}
}

// Clamp restricts r to the pixels of a w×h canvas.
// The result is empty if r lies completely outside of the canvas.
func (r Rect) Clamp(w, h int) Rect {
	return Rect{
		Left:   utils.Max(r.Left, 0),
		Top:    utils.Max(r.Top, 0),
		Right:  utils.Min(r.Right, float64(w-1)),
		Bottom: utils.Min(r.Bottom, float64(h-1)),
	}
}

// Image rounds r outwards to the pixel rectangle covering it.
// The returned rectangle follows the image package convention of an
// exclusive maximum point.
func (r Rect) Image() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Floor(r.Right))+1,
		int(math.Floor(r.Bottom))+1,
	)
}

// RectFromImage converts a pixel rectangle to inclusive pixel bounds.
func RectFromImage(b image.Rectangle) Rect {
	if b.Empty() {
		return Rect{Left: 1, Right: 0, Top: 1, Bottom: 0}
	}
	return Rect{
		Left:   float64(b.Min.X),
		Top:    float64(b.Min.Y),
		Right:  float64(b.Max.X - 1),
		Bottom: float64(b.Max.Y - 1),
	}
}

// Tracker maintains the bounding box of every painted pixel of a canvas
// incrementally, without rescanning the pixel buffer.
type Tracker struct {
	rect          Rect
	empty         bool
	width, height int
}

// NewTracker returns an empty tracker for a w×h canvas.
func NewTracker(w, h int) *Tracker {
	t := &Tracker{}
	t.Reset(w, h)
	return t
}

// Reset puts the tracker back into its empty state. The stored rect is
// inverted (Left=w, Right=0, Top=h, Bottom=0) until the first expansion.
func (t *Tracker) Reset(w, h int) {
	t.width, t.height = w, h
	t.rect = Rect{Left: float64(w), Top: float64(h)}
	t.empty = true
}

// Expand widens the box to include a disc of the given radius centered at p.
// Non-finite centers or radii are ignored.
func (t *Tracker) Expand(p Point, radius float64) {
	if !p.Finite() || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return
	}
	radius = utils.Max(radius, 0)
	t.ExpandRect(Rect{
		Left:   p.X - radius,
		Top:    p.Y - radius,
		Right:  p.X + radius,
		Bottom: p.Y + radius,
	})
}

// ExpandPoint widens the box to include the pixel at (x, y).
func (t *Tracker) ExpandPoint(x, y int) {
	fx, fy := float64(x), float64(y)
	if t.empty {
		t.rect = Rect{Left: fx, Top: fy, Right: fx, Bottom: fy}
		t.empty = false
		return
	}
	if fx < t.rect.Left {
		t.rect.Left = fx
	}
	if fx > t.rect.Right {
		t.rect.Right = fx
	}
	if fy < t.rect.Top {
		t.rect.Top = fy
	}
	if fy > t.rect.Bottom {
		t.rect.Bottom = fy
	}
}

// ExpandRect widens the box to include r. Empty rects are ignored.
func (t *Tracker) ExpandRect(r Rect) {
	if r.Empty() {
		return
	}
	if t.empty {
		t.rect = r
		t.empty = false
		return
	}
	t.rect = t.rect.Union(r)
}

// Translate moves the tracked box by d. An empty tracker stays empty.
func (t *Tracker) Translate(d Point) {
	if t.empty {
		return
	}
	t.rect = t.rect.Translate(d)
}

// Rect returns the tracked box. While nothing was tracked the inverted
// empty marker is returned, for which Rect.Empty reports true.
func (t *Tracker) Rect() Rect {
	return t.rect
}

// Empty reports whether the tracker was never expanded since the last reset.
func (t *Tracker) Empty() bool {
	return t.empty
}
