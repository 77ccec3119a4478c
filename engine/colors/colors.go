package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is linear RGBA in [0..1].
type Color [4]float32

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{0, 0, 0, 0}
	Red         = Color{1, 0, 0, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.08, 0.10, 0.12, 1}
	Meadow      = Color{0.3, 0.6, 0.3, 1} // default clear color

	// Widget palette.
	Panel      = Color{0.11, 0.11, 0.11, 0.94}
	Widget     = Color{0.24, 0.24, 0.24, 1}
	WidgetHot  = Color{0.33, 0.33, 0.33, 1}
	WidgetDown = Color{0.18, 0.18, 0.18, 1}
	Accent     = Color{0.35, 0.55, 0.85, 1}
	Text       = Color{0.86, 0.86, 0.86, 1}
)

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Scale multiplies the RGB channels by k, leaving alpha untouched.
func (c Color) Scale(k float32) Color {
	c[0] *= k
	c[1] *= k
	c[2] *= k
	return c
}

// Visible reports whether painting c would change any pixel.
func (c Color) Visible() bool { return c[3] > 0 }

// RGBA8 converts to 8-bit channels, clamping out-of-range values.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return to8(c[0]), to8(c[1]), to8(c[2]), to8(c[3])
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// ParseHex reads "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	r, g, b, a := c.RGBA8()
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}
