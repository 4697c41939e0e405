package brush

import (
	"image"
	"image/color"
	"math"

	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
)

// Label is the identity metadata carried alongside a mask.
type Label struct {
	Label       string
	GroupID     *int
	Flags       map[string]bool
	Description string
}

// Mask is a single brush annotation. It owns a draft canvas sized like the
// annotated image, the bounds of the painted pixels, the undo history of
// the completed strokes and the cropped canvas produced by Finalize.
//
// A Mask is not safe for concurrent use.
type Mask struct {
	Label

	opts    Options
	draft   *Canvas
	tracker *Tracker
	history *History
	origin  Point

	final     *Canvas
	finalRect Rect
}

// NewMask creates a blank w×h mask. Nil options mean DefaultOptions.
// The blank state is pushed as the first history snapshot, so the first
// stroke can be undone.
func NewMask(w, h int, opts *Options) (*Mask, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	draft, err := NewCanvasLimit(w, h, opts.MaxCanvasBytes)
	if err != nil {
		return nil, err
	}
	m := &Mask{
		opts:    *opts,
		draft:   draft,
		tracker: NewTracker(w, h),
		history: NewHistory(opts.HistoryDepth),
	}
	m.commit()
	return m, nil
}

// Width returns the width of the draft canvas.
func (m *Mask) Width() int { return m.draft.Width() }

// Height returns the height of the draft canvas.
func (m *Mask) Height() int { return m.draft.Height() }

// Draft returns the live draft canvas. It is replaced on undo and rollback.
func (m *Mask) Draft() *Canvas { return m.draft }

// Bounds returns the tracked bounds of the painted pixels.
// The rect is empty while nothing was painted.
func (m *Mask) Bounds() Rect { return m.tracker.Rect() }

// Empty reports whether nothing was painted on the mask.
func (m *Mask) Empty() bool { return m.tracker.Empty() }

// Origin returns the translation accumulated by MoveBy. Undo restores it
// along with the pixels.
func (m *Mask) Origin() Point { return m.origin }

// History returns the undo history of the mask.
func (m *Mask) History() *History { return m.history }

// Options returns a copy of the mask options.
func (m *Mask) Options() Options { return m.opts }

// BrushSize returns the brush diameter.
func (m *Mask) BrushSize() int { return m.opts.BrushSize }

// SetBrushSize sets the brush diameter, clamped to [MinBrushSize, MaxBrushSize],
// and returns the effective size.
func (m *Mask) SetBrushSize(size int) int {
	m.opts.BrushSize = utils.Clamp(size, MinBrushSize, MaxBrushSize)
	return m.opts.BrushSize
}

// Color returns the paint colour of the mask.
func (m *Mask) Color() color.NRGBA { return m.opts.Color }

// SetColor changes the paint colour used by the following strokes and fills.
// The colour must be recognized as painted.
func (m *Mask) SetColor(c color.NRGBA) error {
	if !IsPainted(c) {
		return errors.Wrapf(ErrInvalidColor, "%s", utils.RGBAToHex(c))
	}
	m.opts.Color = c
	return nil
}

// BeginStroke marks the start of a stroke. The drawing calls which follow
// mutate the draft directly; the stroke is snapshotted once by CommitStroke.
func (m *Mask) BeginStroke() {}

// DrawSegment draws a stroke segment with the current brush between from and to.
// Painting widens the tracked bounds by the brush radius around both
// endpoints. Erasing never shrinks them. Segments with a non-finite
// endpoint are ignored.
func (m *Mask) DrawSegment(from, to Point, op StrokeOp) {
	if !from.Finite() || !to.Finite() {
		Logger().Debug("non-finite stroke segment ignored", "from", from, "to", to)
		return
	}
	size := m.opts.BrushSize
	m.final = nil
	m.draft.DrawSegment(from, to, size, op, m.opts.Color)
	if op == Paint {
		r := float64(size) / 2
		m.tracker.Expand(from, r)
		m.tracker.Expand(to, r)
	}
}

// DrawDab draws a single dab with the current brush at p.
func (m *Mask) DrawDab(p Point, op StrokeOp) {
	m.DrawSegment(p, p, op)
}

// Fill flood fills the unpainted region around seed with the paint colour
// and returns the number of recolored pixels. Out of canvas seeds are a
// silent no-op, unless the mask was created with StrictSeed.
func (m *Mask) Fill(seed Point) (int, error) {
	pt := seed.Image()
	m.final = nil
	if m.opts.StrictSeed {
		return FillStrict(m.draft, pt, m.opts.Color, m.tracker)
	}
	return Fill(m.draft, pt, m.opts.Color, m.tracker), nil
}

// CommitStroke snapshots the draft into the history. It is called once per
// completed stroke or fill.
func (m *Mask) CommitStroke() {
	m.commit()
}

func (m *Mask) commit() {
	m.history.push(m.draft, snapshot{tracker: *m.tracker, origin: m.origin})
}

// CanUndo reports whether a committed stroke can be undone.
func (m *Mask) CanUndo() bool { return m.history.CanUndo() }

// Undo reverts the last committed stroke and returns the restored draft.
// Without a previous state the draft is returned unchanged.
func (m *Mask) Undo() *Canvas {
	if s, ok := m.history.undo(); ok {
		m.restore(s)
	}
	return m.draft
}

// Rollback discards everything drawn since the last commit by reloading
// the most recent snapshot.
func (m *Mask) Rollback() {
	if m.history.Len() > 0 {
		m.restore(m.history.top())
	}
}

func (m *Mask) restore(s snapshot) {
	m.draft = s.canvas
	*m.tracker = s.tracker
	m.origin = s.origin
	m.final = nil
}

// Finalize crops the draft to the tracked bounds, clamped to the canvas.
// It fails with ErrEmptyMask when nothing was painted.
func (m *Mask) Finalize() (*Canvas, Rect, error) {
	if m.tracker.Empty() {
		return nil, Rect{}, ErrEmptyMask
	}
	rect := m.tracker.Rect().Clamp(m.Width(), m.Height())
	if rect.Empty() {
		return nil, Rect{}, errors.Wrap(ErrEmptyMask, "bounds outside of the canvas")
	}
	m.final = m.draft.CopyRegion(rect)
	m.finalRect = rect
	return m.final, rect, nil
}

// Final returns the result of the last Finalize call, if the mask was not
// modified since.
func (m *Mask) Final() (*Canvas, Rect, bool) {
	if m.final == nil {
		return nil, Rect{}, false
	}
	return m.final, m.finalRect, true
}

// MergeFrom pastes the finalized crop of other into the draft, additively,
// at its own position moved by offset. The bounds widen by the pasted
// footprint and the merge is committed as a single stroke.
func (m *Mask) MergeFrom(other *Mask, offset Point) error {
	if !offset.Finite() {
		return errors.Errorf("merge: non-finite offset %v", offset)
	}
	crop, rect, err := other.Finalize()
	if err != nil {
		return errors.Wrap(err, "merge")
	}
	d := roundPoint(offset)
	at := rect.Image().Min.Add(d)
	m.final = nil
	m.draft.PasteRegion(at, crop, Additive)

	footprint := RectFromImage(image.Rectangle{Min: at, Max: at.Add(crop.Bounds().Size())})
	m.tracker.ExpandRect(footprint.Clamp(m.Width(), m.Height()))
	Logger().Debug("mask merged", "at", at, "size", crop.Bounds().Size())

	m.CommitStroke()
	return nil
}

// MoveBy translates the mask by offset, rounded to whole pixels. The
// painted region is cropped, the draft cleared and the crop pasted back at
// the translated position; pixels moved out of the canvas are lost.
// The bounds and the origin move along and the move is committed.
// Non-finite offsets are ignored.
func (m *Mask) MoveBy(offset Point) {
	if !offset.Finite() {
		return
	}
	d := roundPoint(offset)
	m.origin = m.origin.Add(Pt(float64(d.X), float64(d.Y)))
	if m.tracker.Empty() {
		return
	}

	rect := m.tracker.Rect().Clamp(m.Width(), m.Height())
	crop := m.draft.CopyRegion(rect)
	at := rect.Image().Min.Add(d)

	m.final = nil
	m.draft.Clear()
	m.draft.PasteRegion(at, crop, Overwrite)

	moved := rect.Translate(Pt(float64(d.X), float64(d.Y))).Clamp(m.Width(), m.Height())
	m.tracker.Reset(m.Width(), m.Height())
	m.tracker.ExpandRect(moved)
	Logger().Debug("mask moved", "offset", d, "bounds", moved)

	m.CommitStroke()
}

// paste loads a persisted crop into the draft at origin and tracks its footprint.
func (m *Mask) paste(origin image.Point, crop *Canvas) {
	m.draft.PasteRegion(origin, crop, Overwrite)
	footprint := RectFromImage(image.Rectangle{Min: origin, Max: origin.Add(crop.Bounds().Size())})
	m.tracker.ExpandRect(footprint.Clamp(m.Width(), m.Height()))
}

// rebase drops the undo history, making the current draft the base state.
func (m *Mask) rebase() {
	m.history = NewHistory(m.opts.HistoryDepth)
	m.commit()
}

func roundPoint(p Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
