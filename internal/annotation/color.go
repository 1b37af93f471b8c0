package annotation

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a non-premultiplied RGBA colour. A zero alpha means "none".
type Color struct {
	R, G, B, A uint8
}

// None is the transparent colour used for unfilled shapes.
var None = Color{}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// IsNone reports whether the colour paints nothing.
func (c Color) IsNone() bool { return c.A == 0 }

// NRGBA converts c to the standard library colour type.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// WithAlpha returns c with its alpha scaled by opacity.
func (c Color) WithAlpha(opacity float64) Color {
	if opacity >= 1 {
		return c
	}
	if opacity <= 0 {
		return Color{R: c.R, G: c.G, B: c.B}
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// String renders the colour as #RRGGBB, #RRGGBBAA or "none".
func (c Color) String() string {
	switch c.A {
	case 0:
		return "none"
	case 255:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts CSS colour names, #RGB, #RRGGBB, #RRGGBBAA, "none" and
// "transparent".
func ParseColor(s string) (Color, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return Color{}, fmt.Errorf("color cannot be empty")
	}
	if in == "none" || in == "transparent" {
		return None, nil
	}
	if c, ok := colornames.Map[in]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if !strings.HasPrefix(in, "#") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	hex := in[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		return Color{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	}
	return Color{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}
