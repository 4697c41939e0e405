package brush

import "github.com/pkg/errors"

var (
	// ErrAllocation is returned when the canvas dimensions are not positive
	// or the pixel buffer would exceed the configured memory ceiling.
	ErrAllocation = errors.New("canvas allocation failed")

	// ErrEmptyMask is returned when finalizing a mask with no painted pixels.
	// The annotation should be discarded.
	ErrEmptyMask = errors.New("mask has no painted pixels")

	// ErrOutOfBoundsSeed is returned by the strict flood fill
	// for a seed point outside of the canvas.
	ErrOutOfBoundsSeed = errors.New("fill seed outside of canvas")

	// ErrInvalidColor is returned for paint colours which would not be
	// recognized as painted (zero green channel or zero alpha).
	ErrInvalidColor = errors.New("invalid paint color")

	// ErrUnknownMode is returned for an editing mode outside of the known set.
	ErrUnknownMode = errors.New("unknown editing mode")

	// ErrDecode is returned when a persisted mask cannot be decoded.
	ErrDecode = errors.New("could not decode mask")
)
