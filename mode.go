package brush

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode is the editing mode selected by the user.
type Mode int

const (
	ModeNone Mode = iota
	ModeDraw
	ModeErase
	ModeFill
)

var modeNames = [...]string{
	ModeNone:  "none",
	ModeDraw:  "draw",
	ModeErase: "erase",
	ModeFill:  "fill",
}

func (m Mode) String() string {
	if m.valid() {
		return modeNames[m]
	}
	return "unknown"
}

func (m Mode) valid() bool {
	return m >= ModeNone && m <= ModeFill
}

// ParseMode returns the mode with the given name. Names are case insensitive.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeNone, errors.Wrapf(ErrUnknownMode, "%q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, errors.Wrapf(ErrUnknownMode, "%d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// strokeOp maps a drawing mode to its stroke operation.
func (m Mode) strokeOp() (StrokeOp, bool) {
	switch m {
	case ModeDraw:
		return Paint, true
	case ModeErase:
		return Erase, true
	}
	return Paint, false
}

// StrokeOp selects how a stroke is composited into the canvas.
type StrokeOp int

const (
	// Paint writes the paint colour wherever the brush covers.
	Paint StrokeOp = iota
	// Erase clears the covered pixels back to background (destination-out).
	Erase
)

func (o StrokeOp) String() string {
	switch o {
	case Paint:
		return "paint"
	case Erase:
		return "erase"
	}
	return "unknown"
}
