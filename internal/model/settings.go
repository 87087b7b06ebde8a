package model

import (
	"fmt"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
)

// DefaultWidgetID is the widget id of the shared default bucket.
const DefaultWidgetID = 0

// FontWeight is a semantic or numeric weight token ("bold", "700", ...).
type FontWeight string

// Well-known font weight tokens accepted by the bridge.
const (
	WeightThin      FontWeight = "thin"
	WeightLight     FontWeight = "light"
	WeightNormal    FontWeight = "normal"
	WeightRegular   FontWeight = "regular"
	WeightMedium    FontWeight = "medium"
	WeightBold      FontWeight = "bold"
	WeightExtraBold FontWeight = "extrabold"
)

// String returns the string representation of the font weight.
func (w FontWeight) String() string {
	return string(w)
}

// IsValid reports whether the token is one of the recognised weights.
func (w FontWeight) IsValid() bool {
	switch w {
	case WeightThin, WeightLight, WeightNormal, WeightRegular, WeightMedium, WeightBold, WeightExtraBold,
		"100", "200", "300", "400", "500", "700", "800", "900":
		return true
	}
	return false
}

// ColorMode selects between a theme-derived and a user-chosen colour.
type ColorMode string

const (
	ColorModeDevice ColorMode = "device"
	ColorModeCustom ColorMode = "custom"
)

// String returns the string representation of the colour mode.
func (m ColorMode) String() string {
	return string(m)
}

// IsValid checks whether the colour mode is a known value.
func (m ColorMode) IsValid() bool {
	return m == ColorModeDevice || m == ColorModeCustom
}

// BackgroundType describes how the widget background is drawn.
type BackgroundType string

const (
	BackgroundSolid       BackgroundType = "solid"
	BackgroundTransparent BackgroundType = "transparent"
	BackgroundTranslucent BackgroundType = "translucent"
)

// String returns the string representation of the background type.
func (b BackgroundType) String() string {
	return string(b)
}

// IsValid checks whether the background type is a known value.
func (b BackgroundType) IsValid() bool {
	switch b {
	case BackgroundSolid, BackgroundTransparent, BackgroundTranslucent:
		return true
	}
	return false
}

// ColorSetting is a colour preference: either "device" or a custom ARGB value.
// It marshals to "device" or "#AARRGGBB".
type ColorSetting struct {
	Mode  ColorMode
	Value argb.Color
}

// DeviceColor returns a colour setting that follows the platform theme.
func DeviceColor() ColorSetting {
	return ColorSetting{Mode: ColorModeDevice}
}

// CustomColor returns a colour setting pinned to c.
func CustomColor(c argb.Color) ColorSetting {
	return ColorSetting{Mode: ColorModeCustom, Value: c}
}

// IsDevice reports whether the setting follows the platform theme.
func (c ColorSetting) IsDevice() bool {
	return c.Mode == ColorModeDevice
}

func (c ColorSetting) String() string {
	if c.IsDevice() {
		return string(ColorModeDevice)
	}
	return c.Value.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorSetting) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColorSetting) UnmarshalText(text []byte) error {
	s := string(text)
	if s == string(ColorModeDevice) {
		*c = DeviceColor()
		return nil
	}
	v, err := argb.Parse(s)
	if err != nil {
		return fmt.Errorf("color setting: %w", err)
	}
	*c = CustomColor(v)
	return nil
}

// WidgetSettings is the effective display configuration of one widget.
// JSON field names follow the bridge contract used by hosting apps.
type WidgetSettings struct {
	FontFamily             string         `json:"fontFamily"`
	FontSize               int            `json:"fontSize"`
	FontWeight             FontWeight     `json:"fontWeight"`
	TextColor              ColorSetting   `json:"textColor"`
	BackgroundColor        ColorSetting   `json:"backgroundColor"`
	BackgroundType         BackgroundType `json:"backgroundType"`
	BackgroundOpacity      float64        `json:"backgroundOpacity"`
	BorderRadius           int            `json:"borderRadius"`
	RefreshIntervalMinutes int            `json:"refreshInterval"`
	AutoTheme              bool           `json:"autoTheme"`
	IsBold                 bool           `json:"isBold"`
}

// Per-field defaults applied when a key is absent from the selected bucket.
const (
	DefaultFontFamily      = "sans-serif"
	DefaultFontSize        = 14
	DefaultFontWeight      = FontWeight("400")
	DefaultBackgroundType  = BackgroundSolid
	DefaultOpacity         = 1.0
	DefaultBorderRadius    = 12
	DefaultRefreshInterval = 60
	DefaultTextColor       = argb.Black
	DefaultBackgroundColor = argb.White
)

// DefaultSettings returns the hardcoded settings used when nothing has been
// written for either the widget or the default bucket.
func DefaultSettings() WidgetSettings {
	return WidgetSettings{
		FontFamily:             DefaultFontFamily,
		FontSize:               DefaultFontSize,
		FontWeight:             DefaultFontWeight,
		TextColor:              CustomColor(DefaultTextColor),
		BackgroundColor:        CustomColor(DefaultBackgroundColor),
		BackgroundType:         DefaultBackgroundType,
		BackgroundOpacity:      DefaultOpacity,
		BorderRadius:           DefaultBorderRadius,
		RefreshIntervalMinutes: DefaultRefreshInterval,
	}
}

// SettingsPatch is a partial settings write. Nil fields are left untouched.
// Colours are raw strings: "device" or anything argb.Parse accepts.
type SettingsPatch struct {
	FontFamily        *string         `json:"fontFamily,omitempty"`
	FontSize          *int            `json:"fontSize,omitempty"`
	FontWeight        *FontWeight     `json:"fontWeight,omitempty"`
	TextColor         *string         `json:"textColor,omitempty"`
	BackgroundColor   *string         `json:"backgroundColor,omitempty"`
	BackgroundType    *BackgroundType `json:"backgroundType,omitempty"`
	BackgroundOpacity *float64        `json:"backgroundOpacity,omitempty"`
	BorderRadius      *int            `json:"borderRadius,omitempty"`
	RefreshInterval   *int            `json:"refreshInterval,omitempty"`
	AutoTheme         *bool           `json:"autoTheme,omitempty"`
	IsBold            *bool           `json:"isBold,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p *SettingsPatch) IsEmpty() bool {
	return p.FontFamily == nil && p.FontSize == nil && p.FontWeight == nil &&
		p.TextColor == nil && p.BackgroundColor == nil && p.BackgroundType == nil &&
		p.BackgroundOpacity == nil && p.BorderRadius == nil && p.RefreshInterval == nil &&
		p.AutoTheme == nil && p.IsBold == nil
}
