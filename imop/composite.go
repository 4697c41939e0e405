// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition operation,
// but the image/draw core package implements only the source-over-destination and source.
// This package is aimed to overcome the missing composite operations.
//
// The brush engine relies on it for every pixel write: painting is Copy,
// erasing is DstOut, overlap tolerant pastes use the saturating Add (plus)
// operator and previews are composited with SrcOver.
package imop

import (
	"image"
	"image/color"
	"math"

	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
)

// Op identifies a Porter-Duff composition operator.
type Op int

const (
	Copy Op = iota
	SrcOver
	DstOver
	SrcIn
	DstIn
	SrcOut
	DstOut
	SrcAtop
	DstAtop
	Xor
	Add
	Clear
)

var opNames = [...]string{
	Copy:    "copy",
	SrcOver: "src_over",
	DstOver: "dst_over",
	SrcIn:   "src_in",
	DstIn:   "dst_in",
	SrcOut:  "src_out",
	DstOut:  "dst_out",
	SrcAtop: "src_atop",
	DstAtop: "dst_atop",
	Xor:     "xor",
	Add:     "add",
	Clear:   "clear",
}

// ErrUnsupportedOp is returned for operators outside of the supported set.
var ErrUnsupportedOp = errors.New("unsupported composite operation")

func (o Op) String() string {
	if o.valid() {
		return opNames[o]
	}
	return "unknown"
}

func (o Op) valid() bool {
	return o >= Copy && o <= Clear
}

// ParseOp returns the operator with the given name.
func ParseOp(name string) (Op, error) {
	for i, n := range opNames {
		if n == name {
			return Op(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedOp, "%q", name)
}

// factors returns the Porter-Duff source and destination fractions.
func (o Op) factors(as, ab float64) (fa, fb float64) {
	switch o {
	case Copy:
		return 1, 0
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	case Add:
		return 1, 1
	case Clear:
		return 0, 0
	}
	panic("imop: unhandled operator " + o.String())
}

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
}

// InitOp initializes a new Composite using source-over as the default operator.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(o Op) error {
	if !o.valid() {
		return errors.Wrapf(ErrUnsupportedOp, "%d", int(o))
	}
	op.current = o
	return nil
}

// Get returns the currently active composition operator.
func (op *Composite) Get() Op {
	return op.current
}

// Pixel composes a single source pixel over a backdrop pixel.
// Channel values saturate at [0,255].
func (op *Composite) Pixel(src, dst color.NRGBA) color.NRGBA {
	return compose(op.current, src, dst, nil)
}

// Draw composes src onto dst with the source's top-left corner placed at at.
// The source alpha is scaled by opacity, which is clamped to [0,1].
// When blend is not nil, the source colour is first mixed with the backdrop
// using the blend mode. Pixels falling outside of dst are skipped.
func (op *Composite) Draw(dst, src *image.NRGBA, at image.Point, opacity float64, blend *Blend) {
	opacity = utils.Clamp(opacity, 0, 1)
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			si := src.PixOffset(x-at.X+sb.Min.X, y-at.Y+sb.Min.Y)
			di := dst.PixOffset(x, y)

			s := color.NRGBA{R: src.Pix[si], G: src.Pix[si+1], B: src.Pix[si+2], A: src.Pix[si+3]}
			if opacity < 1 {
				s.A = uint8(math.Round(float64(s.A) * opacity))
			}
			d := color.NRGBA{R: dst.Pix[di], G: dst.Pix[di+1], B: dst.Pix[di+2], A: dst.Pix[di+3]}

			c := compose(op.current, s, d, blend)
			dst.Pix[di+0] = c.R
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.B
			dst.Pix[di+3] = c.A
		}
	}
}

// compose applies the alpha composition formula on non-premultiplied
// colours and returns a non-premultiplied result.
func compose(o Op, src, dst color.NRGBA, blend *Blend) color.NRGBA {
	if o == Copy && blend == nil {
		if src.A == 0 {
			return color.NRGBA{}
		}
		return src
	}

	as := float64(src.A) / 255
	ab := float64(dst.A) / 255

	cs := [3]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255}
	cb := [3]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255}

	// applying the blending mode
	if blend != nil && blend.Get() != Normal {
		for i := range cs {
			cs[i] = (1-ab)*cs[i] + ab*blend.apply(cb[i], cs[i])
		}
	}

	fa, fb := o.factors(as, ab)
	an := math.Min(1, as*fa+ab*fb)
	if an <= 0 {
		return color.NRGBA{}
	}

	var out [3]uint8
	for i := range cs {
		co := math.Min(1, as*fa*cs[i]+ab*fb*cb[i])
		out[i] = toByte(co / an)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: toByte(an)}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(utils.Clamp(v, 0, 1) * 255))
}
