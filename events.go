package brush

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
)

// EventKind identifies an input event.
type EventKind int

const (
	EventMode EventKind = iota
	EventSize
	EventColor
	EventDown
	EventMove
	EventUp
	EventUndo
	EventRollback
	EventMoveBy
)

var eventNames = [...]string{
	EventMode:     "mode",
	EventSize:     "size",
	EventColor:    "color",
	EventDown:     "down",
	EventMove:     "move",
	EventUp:       "up",
	EventUndo:     "undo",
	EventRollback: "rollback",
	EventMoveBy:   "move-by",
}

func (k EventKind) String() string {
	if k >= EventMode && k <= EventMoveBy {
		return eventNames[k]
	}
	return "unknown"
}

// Event is a single input event. Only the fields used by its kind are set:
// Point for pointer events (and the offset of move-by), Mode, Size or Color
// for the selection events. Line is the script line the event was read
// from, zero for events built in code.
type Event struct {
	Kind  EventKind
	Point Point
	Mode  Mode
	Size  int
	Color color.NRGBA
	Line  int
}

// String formats the event the way ParseEvents reads it.
func (e Event) String() string {
	switch e.Kind {
	case EventMode:
		return "mode " + e.Mode.String()
	case EventSize:
		return "size " + strconv.Itoa(e.Size)
	case EventColor:
		return "color " + utils.RGBAToHex(e.Color)
	case EventDown, EventMove, EventUp, EventMoveBy:
		return fmt.Sprintf("%s %s %s", e.Kind, formatFloat(e.Point.X), formatFloat(e.Point.Y))
	}
	return e.Kind.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseEvents reads a line oriented event script:
//
//	# comment
//	mode draw|erase|fill|none
//	size 16
//	color #00ff00
//	down 10 10
//	move 10 20
//	up 10 20
//	undo
//	rollback
//	move-by 5 -3
//
// Blank lines and lines starting with '#' are skipped.
func ParseEvents(r io.Reader) ([]Event, error) {
	var (
		events []Event
		line   int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		e, err := parseEvent(strings.Fields(text))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		e.Line = line
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read the events")
	}
	return events, nil
}

func parseEvent(fields []string) (Event, error) {
	var e Event
	name, args := fields[0], fields[1:]

	kind := -1
	for i, n := range eventNames {
		if n == strings.ToLower(name) {
			kind = i
			break
		}
	}
	if kind < 0 {
		return e, errors.Errorf("unknown event %q", name)
	}
	e.Kind = EventKind(kind)

	arity := 0
	switch e.Kind {
	case EventMode, EventSize, EventColor:
		arity = 1
	case EventDown, EventMove, EventUp, EventMoveBy:
		arity = 2
	}
	if len(args) != arity {
		return e, errors.Errorf("%s expects %d arguments, got %d", e.Kind, arity, len(args))
	}

	var err error
	switch e.Kind {
	case EventMode:
		e.Mode, err = ParseMode(args[0])
	case EventSize:
		e.Size, err = strconv.Atoi(args[0])
	case EventColor:
		e.Color, err = utils.HexToRGBA(args[0])
	case EventDown, EventMove, EventUp, EventMoveBy:
		e.Point, err = parsePoint(args[0], args[1])
	}
	if err != nil {
		return e, errors.Wrap(err, e.Kind.String())
	}
	return e, nil
}

func parsePoint(xs, ys string) (Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Point{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Point{}, err
	}
	p := Pt(x, y)
	if !p.Finite() {
		return Point{}, errors.Errorf("non-finite point %s %s", xs, ys)
	}
	return p, nil
}
