package brush

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/maskbrush/brush/imop"
	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
)

// Maximum preview size used by Fit.
const (
	MaxScreenX = 1366
	MaxScreenY = 768
)

// Preview renders the live overlay of a mask: the draft at a reduced
// opacity plus a dab following the cursor which shows the footprint of
// the next stroke. Rendering never modifies the mask.
type Preview struct {
	// EraseColor is the colour of the cursor dab in erase mode.
	EraseColor color.NRGBA
}

// NewPreview returns a preview using the erase colour of opts.
// Nil options mean DefaultOptions.
func NewPreview(opts *Options) *Preview {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Preview{EraseColor: opts.EraseColor}
}

// Render draws the draft of m onto dst at the given opacity, clamped to
// [0,1]. In draw and erase modes, when the cursor lies within the canvas,
// a dab of the current brush size is drawn at full opacity at the cursor:
// in the paint colour while drawing, in the erase colour while erasing.
// No dab is drawn in fill mode or without a cursor.
func (p *Preview) Render(dst draw.Image, m *Mask, cursor *Point, mode Mode, opacity float64) error {
	if !mode.valid() {
		return errors.Wrapf(ErrUnknownMode, "%d", int(mode))
	}
	draft := m.Draft().Image()
	alpha := uint8(math.Round(utils.Clamp(opacity, 0, 1) * 0xff))
	draw.DrawMask(dst, draft.Rect, draft, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)

	if cursor == nil || !p.inside(m, *cursor) {
		return nil
	}
	var col color.NRGBA
	switch mode {
	case ModeDraw:
		col = m.Color()
	case ModeErase:
		col = p.EraseColor
	default:
		return nil
	}
	if dab := strokeMask(*cursor, *cursor, m.BrushSize(), dst.Bounds()); dab != nil {
		draw.DrawMask(dst, dab.Rect, image.NewUniform(col), image.Point{}, dab, dab.Rect.Min, draw.Over)
	}
	return nil
}

// inside reports whether the cursor lies on the canvas, its far edges included.
func (p *Preview) inside(m *Mask, c Point) bool {
	return c.X >= 0 && c.Y >= 0 && c.X <= float64(m.Width()) && c.Y <= float64(m.Height())
}

// Flatten composites the draft of m over bg at the given opacity and
// returns the result as a new image. The normal blend mode is a plain
// source-over, the other modes mix the mask colour with the photo first.
func (p *Preview) Flatten(bg image.Image, m *Mask, opacity float64, mode imop.BlendMode) (*image.NRGBA, error) {
	opacity = utils.Clamp(opacity, 0, 1)
	draft := m.Draft().Image()
	if mode == imop.Normal {
		return imaging.Overlay(bg, draft, image.Point{}, opacity), nil
	}

	blend := imop.NewBlend()
	if err := blend.Set(mode); err != nil {
		return nil, err
	}
	dst := imaging.Clone(bg)
	imop.InitOp().Draw(dst, draft, image.Point{}, opacity, blend)
	return dst, nil
}

// Fit downscales img to fit into MaxScreenX×MaxScreenY, retaining the aspect
// ratio. Images which already fit are returned unchanged.
func (p *Preview) Fit(img *image.NRGBA) *image.NRGBA {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if width <= MaxScreenX && height <= MaxScreenY {
		return img
	}
	widthRatio := float64(MaxScreenX) / float64(width)
	heightRatio := float64(MaxScreenY) / float64(height)
	ratio := utils.Min(widthRatio, heightRatio)

	newWidth := utils.Max(int(math.Round(float64(width)*ratio)), 1)
	newHeight := utils.Max(int(math.Round(float64(height)*ratio)), 1)
	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}
