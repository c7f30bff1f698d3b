package render

import (
	"fmt"
	"image/color"
	"strings"
)

// DefaultBackground is the colour a base surface starts with before tiles are
// drawn. The base-tile assertion looks for pixels that differ from it.
var DefaultBackground = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return c, fmt.Errorf("invalid colour %q: missing '#'", s)
	}

	var err error
	switch len(s) {
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("unexpected length %d", len(s))
	}
	if err != nil {
		return color.NRGBA{A: 0xff}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// colorOr parses s, falling back to def when s is empty or malformed.
func colorOr(s string, def color.Color) color.Color {
	if s == "" {
		return def
	}
	c, err := ParseHexColor(s)
	if err != nil {
		return def
	}
	return c
}
