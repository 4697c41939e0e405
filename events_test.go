package brush

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents_Parse(t *testing.T) {
	assert := assert.New(t)
	script := `# header comment
mode Draw
size 16

color #ff00ff80
down 10 10.5
move 11 -2
up 12 3
undo
rollback
move-by 5 -3
mode fill
`
	events, err := ParseEvents(strings.NewReader(script))
	assert.NoError(err)
	assert.Equal([]Event{
		{Kind: EventMode, Mode: ModeDraw, Line: 2},
		{Kind: EventSize, Size: 16, Line: 3},
		{Kind: EventColor, Color: color.NRGBA{R: 255, B: 255, A: 128}, Line: 5},
		{Kind: EventDown, Point: Pt(10, 10.5), Line: 6},
		{Kind: EventMove, Point: Pt(11, -2), Line: 7},
		{Kind: EventUp, Point: Pt(12, 3), Line: 8},
		{Kind: EventUndo, Line: 9},
		{Kind: EventRollback, Line: 10},
		{Kind: EventMoveBy, Point: Pt(5, -3), Line: 11},
		{Kind: EventMode, Mode: ModeFill, Line: 12},
	}, events)
}

func TestEvents_ParseErrors(t *testing.T) {
	testCases := []struct {
		name   string
		script string
		want   string
	}{
		{"unknown event", "jump 1 2", "unknown event"},
		{"missing argument", "down 1", "expects 2 arguments"},
		{"extra argument", "undo now", "expects 0 arguments"},
		{"bad number", "move 1 x", "move"},
		{"bad size", "size big", "size"},
		{"bad color", "color #12", "color"},
		{"bad mode", "mode paint", "unknown editing mode"},
		{"nan point", "down NaN 5", "non-finite point"},
		{"infinite point", "move-by 1 +Inf", "non-finite point"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEvents(strings.NewReader("mode draw\n" + tc.script))
			assert.ErrorContains(t, err, tc.want)
			assert.ErrorContains(t, err, "line 2")
		})
	}
}

func TestEvents_StringRoundTrip(t *testing.T) {
	assert := assert.New(t)
	events := []Event{
		{Kind: EventMode, Mode: ModeErase},
		{Kind: EventSize, Size: 3},
		{Kind: EventColor, Color: color.NRGBA{G: 10, A: 255}},
		{Kind: EventDown, Point: Pt(1.25, 2)},
		{Kind: EventUndo},
		{Kind: EventMoveBy, Point: Pt(-4, 0)},
	}

	var lines []string
	for _, e := range events {
		lines = append(lines, e.String())
	}
	assert.Equal("down 1.25 2", lines[3])

	parsed, err := ParseEvents(strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(err)
	for i := range parsed {
		parsed[i].Line = 0
	}
	assert.Equal(events, parsed)
}

func TestMode_ParseAndText(t *testing.T) {
	assert := assert.New(t)

	for _, m := range []Mode{ModeNone, ModeDraw, ModeErase, ModeFill} {
		b, err := m.MarshalText()
		assert.NoError(err)

		var got Mode
		assert.NoError(got.UnmarshalText(b))
		assert.Equal(m, got)
	}

	_, err := Mode(9).MarshalText()
	assert.ErrorIs(err, ErrUnknownMode)
	assert.Equal("unknown", Mode(9).String())

	m, err := ParseMode(" ERASE ")
	assert.NoError(err)
	assert.Equal(ModeErase, m)

	_, err = ParseMode("lasso")
	assert.ErrorIs(err, ErrUnknownMode)

	assert.Equal("paint", Paint.String())
	assert.Equal("erase", Erase.String())
}
