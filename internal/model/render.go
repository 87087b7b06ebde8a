package model

import (
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
)

// BackgroundAsset names a pre-rendered background drawable tier.
type BackgroundAsset string

// Background tiers in ascending corner radius.
const (
	AssetNone   BackgroundAsset = ""
	AssetSquare BackgroundAsset = "widget_background"
	Asset8dp    BackgroundAsset = "widget_background_8dp"
	Asset16dp   BackgroundAsset = "widget_background_16dp"
	Asset24dp   BackgroundAsset = "widget_background_24dp"
	Asset32dp   BackgroundAsset = "widget_background_32dp"
	Asset40dp   BackgroundAsset = "widget_background_40dp"
	Asset48dp   BackgroundAsset = "widget_background_48dp"
	Asset56dp   BackgroundAsset = "widget_background_56dp"
)

// FontStyle is the typeface adjustment derived from a font weight token.
// Family is empty when the base family is kept.
type FontStyle struct {
	Family string `json:"family,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
}

// RenderParams is everything needed to draw one widget.
type RenderParams struct {
	RenderID   string    `json:"render_id"`
	WidgetID   int       `json:"widget_id"`
	RenderedAt time.Time `json:"rendered_at"`

	QuoteText      string     `json:"quote_text"`
	QuoteAuthor    string     `json:"quote_author"`
	FontFamily     string     `json:"font_family"`
	FontStyle      FontStyle  `json:"font_style"`
	FontSize       float64    `json:"font_size"`
	AuthorFontSize float64    `json:"author_font_size"`
	TextColor      argb.Color `json:"text_color"`
	AuthorColor    argb.Color `json:"author_color"`

	BackgroundType    BackgroundType  `json:"background_type"`
	BackgroundAsset   BackgroundAsset `json:"background_asset"`
	BackgroundColor   argb.Color      `json:"background_color"`
	BackgroundAlpha   uint8           `json:"background_alpha"`
	BorderRadius      int             `json:"border_radius"`
	RefreshInterval   time.Duration   `json:"refresh_interval"`
	AutoTheme         bool            `json:"auto_theme"`
	UsedDefaultBucket bool            `json:"used_default_bucket"`
}

// Assignment is one (view, property, value) update pushed to a view sink.
type Assignment struct {
	View     string `json:"view"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}
