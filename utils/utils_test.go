package utils

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMaxClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(-1.5, Min(3.0, -1.5))
	assert.Equal(5, Max(2, 5))

	assert.Equal(0, Clamp(-4, 0, 10))
	assert.Equal(10, Clamp(12, 0, 10))
	assert.Equal(6, Clamp(6, 0, 10))
	assert.Equal(256, Clamp(1000, 1, 256))
}

func TestColor_HexToRGBA(t *testing.T) {
	assert := assert.New(t)

	c, err := HexToRGBA("#00ff00")
	assert.NoError(err)
	assert.Equal(color.NRGBA{G: 255, A: 255}, c)

	c, err = HexToRGBA("fff")
	assert.NoError(err)
	assert.Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c)

	c, err = HexToRGBA("#10203040")
	assert.NoError(err)
	assert.Equal(color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, c)

	_, err = HexToRGBA("#12345")
	assert.Error(err)
	_, err = HexToRGBA("#zzzzzz")
	assert.Error(err)
}

func TestColor_RGBAToHexRoundTrip(t *testing.T) {
	assert := assert.New(t)

	in := color.NRGBA{R: 1, G: 200, B: 33, A: 128}
	out, err := HexToRGBA(RGBAToHex(in))
	assert.NoError(err)
	assert.Equal(in, out)
	assert.Equal("#01c82180", RGBAToHex(in))
}

func TestFormat_DecorateText(t *testing.T) {
	assert := assert.New(t)

	s := DecorateText("done", SuccessMessage)
	assert.True(strings.HasPrefix(s, SuccessColor))
	assert.True(strings.HasSuffix(s, DefaultColor))
	assert.Equal(WarnColor+"empty"+DefaultColor, DecorateText("empty", WarnMessage))
	assert.Equal("plain", DecorateText("plain", MessageType(42)))
}

func TestFormat_FormatTime(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal("2m 5.00s", FormatTime(2*time.Minute+5*time.Second))
	assert.Equal("1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
	assert.Equal("1d 2h 0m 0.00s", FormatTime(26*time.Hour))
	assert.Equal("1h 0m 0.25s", FormatTime(time.Hour+250*time.Millisecond))
}
