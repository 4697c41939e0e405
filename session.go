package brush

import (
	"github.com/pkg/errors"
)

// Session translates pointer input into mask edits. A press starts a
// stroke in draw and erase modes, moves extend it segment by segment and
// the release commits it into the history. In fill mode a press fills the
// region under the pointer and commits it at once.
type Session struct {
	mask   *Mask
	mode   Mode
	down   bool
	last   Point
	cursor *Point
}

// NewSession returns a session editing m, with no mode selected.
func NewSession(m *Mask) *Session {
	return &Session{mask: m}
}

// Mask returns the edited mask.
func (s *Session) Mask() *Mask { return s.mask }

// Mode returns the selected editing mode.
func (s *Session) Mode() Mode { return s.mode }

// Cursor returns the last known pointer position, or nil if the pointer
// never moved over the canvas.
func (s *Session) Cursor() *Point { return s.cursor }

// Stroking reports whether a stroke is in progress.
func (s *Session) Stroking() bool { return s.down }

// SetMode selects the editing mode. A stroke in progress is committed first.
func (s *Session) SetMode(m Mode) error {
	if !m.valid() {
		return errors.Wrapf(ErrUnknownMode, "%d", int(m))
	}
	if s.down {
		s.commit()
	}
	s.mode = m
	return nil
}

// SetBrushSize changes the brush diameter and returns the effective, clamped size.
func (s *Session) SetBrushSize(size int) int {
	return s.mask.SetBrushSize(size)
}

// Down handles a pointer press at p.
func (s *Session) Down(p Point) error {
	s.track(p)
	switch s.mode {
	case ModeNone:
		return nil
	case ModeDraw, ModeErase:
		if s.down {
			s.commit()
		}
		op, _ := s.mode.strokeOp()
		s.mask.BeginStroke()
		s.mask.DrawDab(p, op)
		s.down = true
		s.last = p
		return nil
	case ModeFill:
		n, err := s.mask.Fill(p)
		if err != nil {
			return err
		}
		if n > 0 {
			s.mask.CommitStroke()
		}
		return nil
	}
	return errors.Wrapf(ErrUnknownMode, "%d", int(s.mode))
}

// Move handles a pointer move to p, extending the stroke in progress.
func (s *Session) Move(p Point) error {
	s.track(p)
	if !s.down {
		return nil
	}
	op, ok := s.mode.strokeOp()
	if !ok {
		return errors.Wrapf(ErrUnknownMode, "%d", int(s.mode))
	}
	s.mask.DrawSegment(s.last, p, op)
	s.last = p
	return nil
}

// Up handles a pointer release at p and commits the stroke in progress.
func (s *Session) Up(p Point) error {
	if s.down && p != s.last {
		if err := s.Move(p); err != nil {
			return err
		}
	}
	s.track(p)
	if s.down {
		s.commit()
	}
	return nil
}

// Undo reverts the last committed stroke. A stroke in progress is
// discarded instead.
func (s *Session) Undo() {
	if s.down {
		s.Rollback()
		return
	}
	s.mask.Undo()
}

// Rollback discards the stroke in progress.
func (s *Session) Rollback() {
	s.mask.Rollback()
	s.down = false
}

// MoveBy commits the stroke in progress and translates the mask.
func (s *Session) MoveBy(offset Point) {
	if s.down {
		s.commit()
	}
	s.mask.MoveBy(offset)
}

// Apply dispatches a single event.
func (s *Session) Apply(e Event) error {
	switch e.Kind {
	case EventMode:
		return s.SetMode(e.Mode)
	case EventSize:
		s.SetBrushSize(e.Size)
	case EventColor:
		return s.mask.SetColor(e.Color)
	case EventDown:
		return s.Down(e.Point)
	case EventMove:
		return s.Move(e.Point)
	case EventUp:
		return s.Up(e.Point)
	case EventUndo:
		s.Undo()
	case EventRollback:
		s.Rollback()
	case EventMoveBy:
		s.MoveBy(e.Point)
	default:
		return errors.Errorf("unknown event kind %d", int(e.Kind))
	}
	return nil
}

// Replay applies the events in order, stopping at the first failure.
// A stroke left open by the events is committed.
func (s *Session) Replay(events []Event) error {
	for _, e := range events {
		if err := s.Apply(e); err != nil {
			if e.Line > 0 {
				return errors.Wrapf(err, "line %d", e.Line)
			}
			return err
		}
	}
	if s.down {
		s.commit()
	}
	return nil
}

func (s *Session) commit() {
	s.mask.CommitStroke()
	s.down = false
}

func (s *Session) track(p Point) {
	s.cursor = &p
}
