package utils

import (
	"fmt"
	"image/color"
	"strings"
)

// HexToRGBA converts a color expressed in hexadecimal format to an RGBA value.
// Both the short (#rgb) and the long (#rrggbb, #rrggbbaa) forms are accepted,
// with or without the leading hash.
func HexToRGBA(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var err error
	switch len(hex) {
	case 8:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	case 6:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &c.R, &c.G, &c.B)
		// Double the hex digits: 0xf -> 0xff.
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("invalid length, must be 3, 6 or 8")
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

// RGBAToHex converts a color to its #rrggbbaa hexadecimal representation.
func RGBAToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
