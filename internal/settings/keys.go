package settings

import "github.com/alfredjeanlab/quotewidget/internal/model"

// Preference field names. The stored key is "<field>_<widgetID>".
const (
	FieldFontFamily          = "font_family"
	FieldFontSize            = "font_size"
	FieldFontWeight          = "font_weight"
	FieldIsBold              = "is_bold"
	FieldTextColorType       = "text_color_type"
	FieldTextColor           = "text_color"
	FieldBackgroundColorType = "background_color_type"
	FieldBackgroundColor     = "background_color"
	FieldBackgroundType      = "background_type"
	FieldBackgroundOpacity   = "background_opacity"
	FieldBorderRadius        = "border_radius"
	FieldRefreshInterval     = "refresh_interval"
	FieldAutoTheme           = "auto_theme"
)

// Fields lists every preference field a widget bucket may hold.
var Fields = []string{
	FieldFontFamily,
	FieldFontSize,
	FieldFontWeight,
	FieldIsBold,
	FieldTextColorType,
	FieldTextColor,
	FieldBackgroundColorType,
	FieldBackgroundColor,
	FieldBackgroundType,
	FieldBackgroundOpacity,
	FieldBorderRadius,
	FieldRefreshInterval,
	FieldAutoTheme,
}

// Group is a set of fields read from one bucket after a single presence probe.
type Group int

const (
	GroupFont Group = iota
	GroupColor
	GroupBackground
	GroupSchedule
)

func (g Group) String() string {
	switch g {
	case GroupFont:
		return "font"
	case GroupColor:
		return "color"
	case GroupBackground:
		return "background"
	case GroupSchedule:
		return "schedule"
	}
	return "unknown"
}

// ProbeField returns the field whose presence decides the group's bucket.
func (g Group) ProbeField() string {
	if g == GroupSchedule {
		return FieldRefreshInterval
	}
	return FieldFontFamily
}

func key(field string, bucket int) string {
	return model.PrefKey(field, bucket)
}
