// Package ui holds terminal styling helpers for the qw CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
)

// ANSI256 colour codes for CLI chrome.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorWarn   = 214 // orange
)

var noColor bool

func ansi256(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) colour.
func RenderAccent(s string) string { return ansi256(colorAccent, s) }

// RenderMuted returns s in the muted (gray) colour.
func RenderMuted(s string) string { return ansi256(colorMuted, s) }

// RenderWarn returns s in the warning (orange) colour.
func RenderWarn(s string) string { return ansi256(colorWarn, s) }

// RenderSwatch returns a two-cell block painted with c in 24-bit colour,
// followed by its "#AARRGGBB" form. Alpha is not representable on a terminal
// and is ignored for the block.
func RenderSwatch(c argb.Color) string {
	if noColor {
		return c.String()
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m %s", c.Red(), c.Green(), c.Blue(), c.String())
}

// RenderText returns s drawn in c (24-bit foreground) on bg.
func RenderText(s string, fg, bg argb.Color) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s\x1b[0m",
		fg.Red(), fg.Green(), fg.Blue(), bg.Red(), bg.Green(), bg.Blue(), s)
}

// Wrap breaks s into lines of at most width runes on word boundaries.
// Words longer than width are kept whole.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, word := range strings.Fields(s) {
		n := len([]rune(word))
		if curLen > 0 && curLen+1+n > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// ForceNoColor disables colour output globally.
func ForceNoColor() {
	noColor = true
}
