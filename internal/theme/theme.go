// Package theme resolves device colours from a platform theme.
//
// A Platform answers attribute lookups ("textColorPrimary", ...) and reports
// whether night mode is active. Device colours are resolved by walking an
// ordered Chain of strategies and stopping at the first one that succeeds.
// Lookup failures are absorbed by the chain and never reach the caller.
package theme

import (
	"errors"
	"log/slog"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
)

// Theme attribute names consulted by the device colour chains.
const (
	AttrTextColorPrimary = "textColorPrimary"
	AttrColorBackground  = "colorBackground"
	AttrWindowBackground = "windowBackground"
)

// ErrUnresolved is returned by a Platform that has no value for an attribute.
var ErrUnresolved = errors.New("theme attribute not resolved")

// Platform supplies theme-derived colours and the current light/dark mode.
type Platform interface {
	Attribute(name string) (argb.Color, error)
	NightMode() bool
}

// Strategy is one step of a fallback chain. ok is false when the step could
// not produce a colour.
type Strategy func(p Platform) (c argb.Color, ok bool)

// FromAttribute resolves a single theme attribute.
func FromAttribute(name string) Strategy {
	return func(p Platform) (argb.Color, bool) {
		if p == nil {
			return 0, false
		}
		c, err := p.Attribute(name)
		if err != nil {
			slog.Debug("theme attribute unavailable", "attr", name, "err", err)
			return 0, false
		}
		return c, true
	}
}

// ByNightMode picks a constant by the platform's night-mode flag. It always
// succeeds; a nil platform counts as day.
func ByNightMode(day, night argb.Color) Strategy {
	return func(p Platform) (argb.Color, bool) {
		if p != nil && p.NightMode() {
			return night, true
		}
		return day, true
	}
}

// Chain is an ordered list of strategies.
type Chain []Strategy

// Resolve returns the colour of the first successful strategy, or def when
// none succeeds.
func (c Chain) Resolve(p Platform, def argb.Color) argb.Color {
	for _, s := range c {
		if col, ok := s(p); ok {
			return col
		}
	}
	return def
}

var (
	// TextChain resolves the device text colour.
	TextChain = Chain{
		FromAttribute(AttrTextColorPrimary),
		ByNightMode(argb.Black, argb.White),
	}

	// BackgroundChain resolves the device background colour.
	BackgroundChain = Chain{
		FromAttribute(AttrColorBackground),
		FromAttribute(AttrWindowBackground),
		ByNightMode(argb.White, argb.NearBlack),
	}
)

// DeviceTextColor resolves the text colour for the "device" colour mode.
func DeviceTextColor(p Platform) argb.Color {
	return TextChain.Resolve(p, argb.Black)
}

// DeviceBackgroundColor resolves the background colour for the "device" colour mode.
func DeviceBackgroundColor(p Platform) argb.Color {
	return BackgroundChain.Resolve(p, argb.White)
}
