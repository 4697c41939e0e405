package brush

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMask(t *testing.T, w, h int) *Mask {
	t.Helper()
	m, err := NewMask(w, h, nil)
	if err != nil {
		t.Fatalf("could not create the mask: %v", err)
	}
	return m
}

func TestMask_FinalizeWithoutPaintFails(t *testing.T) {
	m := newTestMask(t, 100, 100)

	_, _, err := m.Finalize()
	assert.ErrorIs(t, err, ErrEmptyMask)
}

func TestMask_FinalizeCropsToBounds(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 100, 100)
	m.SetBrushSize(4)

	m.BeginStroke()
	m.DrawSegment(Pt(10, 10), Pt(10, 20), Paint)
	m.CommitStroke()

	crop, rect, err := m.Finalize()
	assert.NoError(err)
	assert.Equal(Rect{Left: 8, Top: 8, Right: 12, Bottom: 22}, rect)
	assert.Equal(5, crop.Width())
	assert.Equal(15, crop.Height())
	assert.Equal(m.Draft().PaintedCount(), crop.PaintedCount())
	assert.True(crop.Painted(0, 7))

	final, frect, ok := m.Final()
	assert.True(ok)
	assert.Same(crop, final)
	assert.Equal(rect, frect)
}

func TestMask_FinalizeClampsToCanvas(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 20, 20)
	m.SetBrushSize(10)

	m.DrawDab(Pt(0, 0), Paint)
	crop, rect, err := m.Finalize()
	assert.NoError(err)
	assert.Equal(Rect{Left: 0, Top: 0, Right: 5, Bottom: 5}, rect)
	assert.Equal(6, crop.Width())

	o := newTestMask(t, 20, 20)
	o.DrawDab(Pt(-40, -40), Paint)
	_, _, err = o.Finalize()
	assert.ErrorIs(err, ErrEmptyMask)
}

func TestMask_BrushSizeIsClamped(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 10, 10)

	assert.Equal(MinBrushSize, m.BrushSize())
	assert.Equal(1, m.SetBrushSize(0))
	assert.Equal(256, m.SetBrushSize(1000))
	assert.Equal(32, m.SetBrushSize(32))
	assert.Equal(32, m.BrushSize())
}

func TestMask_Color(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 10, 10)
	assert.Equal(DefaultPaintColor, m.Color())

	assert.ErrorIs(m.SetColor(color.NRGBA{R: 255, A: 255}), ErrInvalidColor)
	assert.ErrorIs(m.SetColor(color.NRGBA{G: 255}), ErrInvalidColor)
	assert.Equal(DefaultPaintColor, m.Color())

	teal := color.NRGBA{G: 128, B: 128, A: 255}
	assert.NoError(m.SetColor(teal))
	m.SetBrushSize(3)
	m.DrawDab(Pt(5, 5), Paint)
	assert.Equal(teal, m.Draft().At(5, 5))
}

func TestMask_MasksDoNotShareColor(t *testing.T) {
	assert := assert.New(t)
	a := newTestMask(t, 10, 10)
	b := newTestMask(t, 10, 10)

	assert.NoError(a.SetColor(color.NRGBA{R: 255, G: 255, A: 255}))
	b.DrawDab(Pt(2, 2), Paint)
	assert.Equal(DefaultPaintColor, b.Draft().At(2, 2))
}

func TestMask_UndoFirstStrokeBackToBlank(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 50, 50)
	m.SetBrushSize(6)

	assert.False(m.CanUndo())
	m.DrawSegment(Pt(5, 5), Pt(40, 40), Paint)
	m.CommitStroke()
	assert.True(m.CanUndo())

	c := m.Undo()
	assert.Same(m.Draft(), c)
	assert.Equal(0, c.PaintedCount())
	assert.True(m.Empty())

	// nothing left: undo is a no-op returning the live draft
	assert.Same(c, m.Undo())
}

func TestMask_UndoRestoresBounds(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 100, 100)
	m.SetBrushSize(4)

	m.DrawDab(Pt(10, 10), Paint)
	m.CommitStroke()
	first := m.Bounds()

	m.DrawDab(Pt(80, 80), Paint)
	m.CommitStroke()
	assert.Equal(Rect{Left: 8, Top: 8, Right: 82, Bottom: 82}, m.Bounds())

	m.Undo()
	assert.Equal(first, m.Bounds())
	assert.False(m.Draft().Painted(80, 80))
	assert.True(m.Draft().Painted(10, 10))
}

func TestMask_RollbackDiscardsUncommittedStroke(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 30, 30)
	m.SetBrushSize(4)

	m.DrawDab(Pt(5, 5), Paint)
	m.CommitStroke()
	committed := m.Draft().Clone()

	m.BeginStroke()
	m.DrawSegment(Pt(10, 10), Pt(25, 25), Paint)
	m.Rollback()

	assert.True(m.Draft().Equal(committed))
	assert.Equal(Rect{Left: 3, Top: 3, Right: 7, Bottom: 7}, m.Bounds())
	assert.Equal(2, m.History().Len())
}

func TestMask_EraseKeepsBounds(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 30, 30)
	m.SetBrushSize(4)

	m.DrawDab(Pt(10, 10), Paint)
	before := m.Bounds()
	m.DrawSegment(Pt(10, 10), Pt(29, 29), Erase)

	assert.Equal(before, m.Bounds())
	assert.Equal(0, m.Draft().PaintedCount())
}

func TestMask_Fill(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 20, 20)

	n, err := m.Fill(Pt(3.5, 4.5))
	assert.NoError(err)
	assert.Equal(400, n)
	assert.Equal(Rect{Left: 0, Top: 0, Right: 19, Bottom: 19}, m.Bounds())

	n, err = m.Fill(Pt(-1, 4))
	assert.NoError(err)
	assert.Equal(0, n)
}

func TestMask_StrictSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.StrictSeed = true
	m, err := NewMask(20, 20, opts)
	assert.NoError(t, err)

	_, err = m.Fill(Pt(25, 4))
	assert.ErrorIs(t, err, ErrOutOfBoundsSeed)
}

func TestMask_NewMaskValidatesOptions(t *testing.T) {
	assert := assert.New(t)

	opts := DefaultOptions()
	opts.Opacity = 2
	_, err := NewMask(10, 10, opts)
	assert.Error(err)

	opts = DefaultOptions()
	opts.MaxCanvasBytes = 100
	_, err = NewMask(10, 10, opts)
	assert.ErrorIs(err, ErrAllocation)

	_, err = NewMask(0, 10, nil)
	assert.ErrorIs(err, ErrAllocation)
}

func TestMask_MergeFrom(t *testing.T) {
	assert := assert.New(t)
	other := newTestMask(t, 100, 100)
	other.SetBrushSize(4)
	other.DrawDab(Pt(20, 20), Paint)

	m := newTestMask(t, 100, 100)
	assert.NoError(m.MergeFrom(other, Pt(10, 5)))

	assert.True(m.Draft().Painted(30, 25))
	assert.True(m.Draft().Painted(29, 24))
	assert.False(m.Draft().Painted(20, 20))
	assert.Equal(other.Draft().PaintedCount(), m.Draft().PaintedCount())
	assert.Equal(Rect{Left: 28, Top: 23, Right: 32, Bottom: 27}, m.Bounds())
	assert.Equal(2, m.History().Len())

	// overlapping merges saturate instead of overflowing
	assert.NoError(m.MergeFrom(other, Pt(10, 5)))
	assert.Equal(DefaultPaintColor, m.Draft().At(30, 25))

	m.Undo()
	m.Undo()
	assert.True(m.Empty())
}

func TestMask_MergeFromEmptyFails(t *testing.T) {
	m := newTestMask(t, 10, 10)
	err := m.MergeFrom(newTestMask(t, 10, 10), Pt(0, 0))
	assert.ErrorIs(t, err, ErrEmptyMask)
}

func TestMask_MoveBy(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 100, 100)
	m.SetBrushSize(4)
	m.DrawDab(Pt(20, 20), Paint)
	m.CommitStroke()
	count := m.Draft().PaintedCount()

	m.MoveBy(Pt(10, -5))
	assert.Equal(Pt(10, -5), m.Origin())
	assert.False(m.Draft().Painted(20, 20))
	assert.True(m.Draft().Painted(30, 15))
	assert.Equal(count, m.Draft().PaintedCount())
	assert.Equal(Rect{Left: 28, Top: 13, Right: 32, Bottom: 17}, m.Bounds())

	m.Undo()
	assert.True(m.Draft().Painted(20, 20))
	assert.Equal(Rect{Left: 18, Top: 18, Right: 22, Bottom: 22}, m.Bounds())
	assert.Equal(Pt(0, 0), m.Origin())
}

func TestMask_MoveByOutOfCanvasDropsPixels(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 30, 30)
	m.SetBrushSize(4)
	m.DrawDab(Pt(5, 5), Paint)

	m.MoveBy(Pt(-100, 0))
	assert.Equal(0, m.Draft().PaintedCount())
	assert.True(m.Empty())

	empty := newTestMask(t, 30, 30)
	empty.MoveBy(Pt(3, 3))
	assert.Equal(Pt(3, 3), empty.Origin())
	assert.Equal(1, empty.History().Len())
}

func TestMask_NonFiniteStrokeIsIgnored(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 40, 40)
	m.SetBrushSize(4)

	m.DrawDab(Pt(math.NaN(), 5), Paint)
	m.DrawSegment(Pt(5, 5), Pt(math.Inf(1), 5), Paint)
	assert.Equal(0, m.Draft().PaintedCount())
	assert.True(m.Empty())

	m.DrawDab(Pt(20, 20), Paint)
	m.CommitStroke()
	crop, rect, err := m.Finalize()
	assert.NoError(err)
	assert.Equal(Rect{Left: 18, Top: 18, Right: 22, Bottom: 22}, rect)
	assert.Equal(5, crop.Width())

	m.MoveBy(Pt(math.NaN(), 1))
	assert.Equal(Pt(0, 0), m.Origin())
	assert.Equal(rect, m.Bounds())
	assert.Error(m.MergeFrom(m, Pt(0, math.Inf(1))))
}

func TestMask_MoveByKeepsClippedBoundsTight(t *testing.T) {
	assert := assert.New(t)
	m := newTestMask(t, 60, 60)
	m.SetBrushSize(8)
	m.DrawDab(Pt(1, 20), Paint)
	m.CommitStroke()
	assert.True(m.Draft().Painted(0, 20))

	m.MoveBy(Pt(20, 0))
	assert.Equal(Rect{Left: 20, Top: 16, Right: 25, Bottom: 24}, m.Bounds())
	assert.True(m.Draft().Painted(20, 20))
	assert.False(m.Draft().Painted(19, 20))
}
