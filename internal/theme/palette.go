package theme

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
)

//go:embed default.toml
var defaultPaletteTOML []byte

// Palette modes.
const (
	ModeLight = "light"
	ModeDark  = "dark"
	ModeAuto  = "auto"
)

// Palette is a Platform backed by static light and dark attribute tables.
// In auto mode night is active outside [DayStart, NightStart) local hours.
type Palette struct {
	Mode       string            `toml:"mode"`
	DayStart   int               `toml:"day_start"`
	NightStart int               `toml:"night_start"`
	Light      map[string]string `toml:"light"`
	Dark       map[string]string `toml:"dark"`

	now func() time.Time
}

// Compile-time check that Palette implements Platform.
var _ Platform = (*Palette)(nil)

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	p, err := ParsePalette(defaultPaletteTOML)
	if err != nil {
		panic(fmt.Sprintf("theme: built-in palette: %v", err))
	}
	return p
}

// LoadPalette reads a TOML palette from path.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", path, err)
	}
	return ParsePalette(data)
}

// ParsePalette decodes a TOML palette and validates its colours.
func ParsePalette(data []byte) (*Palette, error) {
	p := &Palette{Mode: ModeAuto, DayStart: 7, NightStart: 19}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("theme: parse TOML: %w", err)
	}
	p.Mode = strings.ToLower(p.Mode)
	switch p.Mode {
	case ModeLight, ModeDark, ModeAuto:
	default:
		return nil, fmt.Errorf("theme: unknown mode %q", p.Mode)
	}
	if p.DayStart < 0 || p.DayStart > 23 || p.NightStart < 0 || p.NightStart > 23 {
		return nil, fmt.Errorf("theme: day_start and night_start must be hours in [0,23]")
	}
	for table, attrs := range map[string]map[string]string{"light": p.Light, "dark": p.Dark} {
		for name, v := range attrs {
			if _, err := argb.Parse(v); err != nil {
				return nil, fmt.Errorf("theme: [%s] %s: %w", table, name, err)
			}
		}
	}
	return p, nil
}

// WithClock returns a copy of p that reads the time from now.
func (p *Palette) WithClock(now func() time.Time) *Palette {
	cp := *p
	cp.now = now
	return &cp
}

// NightMode reports whether the dark table is active.
func (p *Palette) NightMode() bool {
	switch p.Mode {
	case ModeDark:
		return true
	case ModeLight:
		return false
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	h := now().Hour()
	if p.DayStart <= p.NightStart {
		return h < p.DayStart || h >= p.NightStart
	}
	// Day window wraps midnight.
	return h < p.DayStart && h >= p.NightStart
}

// Attribute looks name up in the active table.
func (p *Palette) Attribute(name string) (argb.Color, error) {
	table := p.Light
	if p.NightMode() {
		table = p.Dark
	}
	v, ok := table[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrUnresolved)
	}
	return argb.Parse(v)
}

// SetMode forces the palette into mode (light, dark or auto).
func (p *Palette) SetMode(mode string) error {
	mode = strings.ToLower(mode)
	switch mode {
	case ModeLight, ModeDark, ModeAuto:
		p.Mode = mode
		return nil
	}
	return fmt.Errorf("theme: unknown mode %q", mode)
}
