package imop

import (
	"math"

	"github.com/pkg/errors"
)

// BlendMode identifies a separable blend function.
type BlendMode int

const (
	Normal BlendMode = iota
	Darken
	Lighten
	Multiply
	Screen
	Overlay
	Difference
)

var blendNames = [...]string{
	Normal:     "normal",
	Darken:     "darken",
	Lighten:    "lighten",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Difference: "difference",
}

// ErrUnsupportedBlend is returned for blend modes outside of the supported set.
var ErrUnsupportedBlend = errors.New("unsupported blend mode")

func (m BlendMode) String() string {
	if m >= Normal && m <= Difference {
		return blendNames[m]
	}
	return "unknown"
}

// ParseBlend returns the blend mode with the given name.
func ParseBlend(name string) (BlendMode, error) {
	for i, n := range blendNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return Normal, errors.Wrapf(ErrUnsupportedBlend, "%q", name)
}

// Blend holds the currently active blend mode.
type Blend struct {
	mode BlendMode
}

// NewBlend initializes a new Blend using the normal mode.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(mode BlendMode) error {
	if mode < Normal || mode > Difference {
		return errors.Wrapf(ErrUnsupportedBlend, "%d", int(mode))
	}
	b.mode = mode
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() BlendMode {
	return b.mode
}

// apply returns B(cb, cs) for normalized backdrop and source channels.
func (b *Blend) apply(cb, cs float64) float64 {
	switch b.mode {
	case Normal:
		return cs
	case Darken:
		return math.Min(cb, cs)
	case Lighten:
		return math.Max(cb, cs)
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		// hard light with the layers swapped
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return 1 - 2*(1-cs)*(1-cb)
	case Difference:
		return math.Abs(cb - cs)
	}
	panic("imop: unhandled blend mode " + b.mode.String())
}
