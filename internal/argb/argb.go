// Package argb implements packed 32-bit ARGB colour values as stored in
// widget preferences (alpha in the high byte).
package argb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB value.
type Color uint32

const (
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
	Transparent Color = 0x00000000
	// NearBlack is the dark-mode surface colour used when the theme cannot
	// supply a background.
	NearBlack Color = 0xFF1F1F1F
)

// named mirrors the colour names accepted by the widget bridge.
var named = map[string]Color{
	"black":     Black,
	"darkgray":  0xFF444444,
	"darkgrey":  0xFF444444,
	"gray":      0xFF888888,
	"grey":      0xFF888888,
	"lightgray": 0xFFCCCCCC,
	"lightgrey": 0xFFCCCCCC,
	"white":     White,
	"red":       0xFFFF0000,
	"green":     0xFF00FF00,
	"blue":      0xFF0000FF,
	"yellow":    0xFFFFFF00,
	"cyan":      0xFF00FFFF,
	"magenta":   0xFFFF00FF,
	"aqua":      0xFF00FFFF,
	"fuchsia":   0xFFFF00FF,
	"lime":      0xFF00FF00,
	"maroon":    0xFF800000,
	"navy":      0xFF000080,
	"olive":     0xFF808000,
	"purple":    0xFF800080,
	"silver":    0xFFC0C0C0,
	"teal":      0xFF008080,
}

// New packs the four channels into a Color.
func New(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Alpha returns the alpha channel.
func (c Color) Alpha() uint8 { return uint8(c >> 24) }

// Red returns the red channel.
func (c Color) Red() uint8 { return uint8(c >> 16) }

// Green returns the green channel.
func (c Color) Green() uint8 { return uint8(c >> 8) }

// Blue returns the blue channel.
func (c Color) Blue() uint8 { return uint8(c) }

// WithAlpha returns c with its alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	return New(a, c.Red(), c.Green(), c.Blue())
}

// Opaque returns c with full alpha.
func (c Color) Opaque() Color {
	return c.WithAlpha(0xFF)
}

// ScaleAlpha multiplies the alpha channel by factor, rounding half away from
// zero, and clamps the result to 0..255.
func (c Color) ScaleAlpha(factor float64) Color {
	a := math.Round(float64(c.Alpha()) * factor)
	return c.WithAlpha(clampByte(a))
}

// String formats c as "#AARRGGBB" with upper-case hex digits.
func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Parse accepts "#RRGGBB", "#AARRGGBB" or one of the well-known colour names
// (case-insensitive). Six-digit values are fully opaque.
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("argb: empty colour")
	}
	if s[0] != '#' {
		if c, ok := named[strings.ToLower(s)]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("argb: unknown colour %q", s)
	}
	hex := s[1:]
	switch len(hex) {
	case 6, 8:
	default:
		return 0, fmt.Errorf("argb: unknown colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("argb: unknown colour %q", s)
	}
	if len(hex) == 6 {
		v |= 0xFF000000
	}
	return Color(v), nil
}

// AlphaFromOpacity converts an opacity in 0..1 to an alpha byte using
// round(opacity*255), clamped to 0..255.
func AlphaFromOpacity(opacity float64) uint8 {
	return clampByte(math.Round(opacity * 255))
}

func clampByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
