package utils

import (
	"fmt"
	"strings"
	"time"
)

// MessageType classifies the status lines printed by the command line tool.
type MessageType int

const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
	// WarnMessage flags results which are not failures but produced no
	// output, like a script that never painted a pixel.
	WarnMessage
)

// ANSI colour sequences of the message types.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
	WarnColor    = "\x1b[33m"
)

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
	WarnMessage:    WarnColor,
}

// DecorateText wraps s in the colour of its message type and resets the
// terminal colour afterwards. Unknown types leave s untouched.
func DecorateText(s string, msgType MessageType) string {
	col, ok := messageColors[msgType]
	if !ok {
		return s
	}
	return col + s + DefaultColor
}

// FormatTime prints d with the largest units first, e.g. "2m 5.00s" or
// "1d 2h 0m 0.00s". Durations below a minute only show the seconds.
func FormatTime(d time.Duration) string {
	units := []struct {
		size   time.Duration
		suffix string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
	}

	var parts []string
	for _, u := range units {
		if d < u.size && len(parts) == 0 {
			continue
		}
		n := d / u.size
		d -= n * u.size
		parts = append(parts, fmt.Sprintf("%d%s", n, u.suffix))
	}
	parts = append(parts, fmt.Sprintf("%.2fs", d.Seconds()))
	return strings.Join(parts, " ")
}
