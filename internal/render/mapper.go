// Package render turns resolved widget settings into view parameters and
// pushes them to view sinks.
package render

import (
	"github.com/alfredjeanlab/quotewidget/internal/argb"
	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// AuthorAlphaFactor scales the text alpha for the attribution line.
const AuthorAlphaFactor = 0.70

// AuthorSizeFactor scales the font size for the attribution line.
const AuthorSizeFactor = 0.8

// TransparentOpacity is the opacity at or below which the background is
// dropped entirely.
const TransparentOpacity = 0.05

// AuthorPrefix is prepended to the author name.
const AuthorPrefix = "— "

// Font family substitutions.
const (
	FamilyThin   = "sans-serif-thin"
	FamilyLight  = "sans-serif-light"
	FamilyMedium = "sans-serif-medium"
	FamilyBlack  = "sans-serif-black"
)

// weightClass is the closed set of typeface adjustments.
type weightClass int

const (
	weightUnchanged weightClass = iota
	weightThin
	weightLight
	weightMedium
	weightBold
	weightBlack
)

var weightClasses = map[model.FontWeight]weightClass{
	"100":                 weightThin,
	"200":                 weightThin,
	model.WeightThin:      weightThin,
	"300":                 weightLight,
	model.WeightLight:     weightLight,
	"400":                 weightUnchanged,
	model.WeightNormal:    weightUnchanged,
	model.WeightRegular:   weightUnchanged,
	"500":                 weightMedium,
	model.WeightMedium:    weightMedium,
	"700":                 weightBold,
	model.WeightBold:      weightBold,
	"800":                 weightBlack,
	"900":                 weightBlack,
	model.WeightExtraBold: weightBlack,
}

// FontStyleFor maps a weight token to a typeface adjustment. Unknown tokens
// leave the typeface unchanged.
func FontStyleFor(w model.FontWeight) model.FontStyle {
	switch weightClasses[w] {
	case weightThin:
		return model.FontStyle{Family: FamilyThin}
	case weightLight:
		return model.FontStyle{Family: FamilyLight}
	case weightMedium:
		return model.FontStyle{Family: FamilyMedium}
	case weightBold:
		return model.FontStyle{Bold: true}
	case weightBlack:
		return model.FontStyle{Family: FamilyBlack}
	default:
		return model.FontStyle{}
	}
}

// radiusTiers lists the inclusive upper bound of each rounded tier.
var radiusTiers = []struct {
	max   int
	asset model.BackgroundAsset
}{
	{8, model.Asset8dp},
	{16, model.Asset16dp},
	{24, model.Asset24dp},
	{32, model.Asset32dp},
	{40, model.Asset40dp},
	{48, model.Asset48dp},
}

// BackgroundAssetFor returns the pre-rendered background tier for a corner
// radius.
func BackgroundAssetFor(radius int) model.BackgroundAsset {
	if radius <= 0 {
		return model.AssetSquare
	}
	for _, t := range radiusTiers {
		if radius <= t.max {
			return t.asset
		}
	}
	return model.Asset56dp
}

// BackgroundAlpha converts an opacity to an alpha byte. Opacities at or below
// TransparentOpacity yield 0.
func BackgroundAlpha(opacity float64) uint8 {
	if opacity <= TransparentOpacity {
		return 0
	}
	return argb.AlphaFromOpacity(opacity)
}

// AuthorColor derives the attribution colour from the text colour.
func AuthorColor(text argb.Color) argb.Color {
	return text.ScaleAlpha(AuthorAlphaFactor)
}

// Input is everything Compute needs for one widget.
type Input struct {
	WidgetID          int
	Settings          model.WidgetSettings
	TextColor         argb.Color
	BackgroundColor   argb.Color
	Quote             model.Quote
	UsedDefaultBucket bool
}

// Compute derives the render parameters. It is a pure function of in; the
// caller stamps RenderID and RenderedAt.
func Compute(in Input) model.RenderParams {
	s := in.Settings
	alpha := BackgroundAlpha(s.BackgroundOpacity)
	asset := BackgroundAssetFor(s.BorderRadius)
	if alpha == 0 {
		asset = model.AssetNone
	}
	refresh := s.RefreshIntervalMinutes
	if refresh <= 0 {
		refresh = model.DefaultRefreshInterval
	}

	return model.RenderParams{
		WidgetID:          in.WidgetID,
		QuoteText:         in.Quote.Text,
		QuoteAuthor:       AuthorPrefix + in.Quote.Author,
		FontFamily:        s.FontFamily,
		FontStyle:         FontStyleFor(s.FontWeight),
		FontSize:          float64(s.FontSize),
		AuthorFontSize:    float64(s.FontSize) * AuthorSizeFactor,
		TextColor:         in.TextColor,
		AuthorColor:       AuthorColor(in.TextColor),
		BackgroundType:    s.BackgroundType,
		BackgroundAsset:   asset,
		BackgroundColor:   in.BackgroundColor.Opaque(),
		BackgroundAlpha:   alpha,
		BorderRadius:      s.BorderRadius,
		RefreshInterval:   minutes(refresh),
		AutoTheme:         s.AutoTheme,
		UsedDefaultBucket: in.UsedDefaultBucket,
	}
}

// View and property names understood by view sinks.
const (
	ViewQuoteText  = "quote_text"
	ViewAuthor     = "quote_author"
	ViewBackground = "widget_background_image"

	PropText          = "text"
	PropTextSize      = "textSize"
	PropTextColor     = "textColor"
	PropFontFamily    = "fontFamily"
	PropBold          = "bold"
	PropImageResource = "imageResource"
	PropColorFilter   = "colorFilter"
	PropImageAlpha    = "imageAlpha"
)

// Assignments flattens params into view property assignments. A transparent
// background clears the image and its filter.
func Assignments(p *model.RenderParams) []model.Assignment {
	family := p.FontFamily
	if p.FontStyle.Family != "" {
		family = p.FontStyle.Family
	}
	out := []model.Assignment{
		{View: ViewQuoteText, Property: PropText, Value: p.QuoteText},
		{View: ViewQuoteText, Property: PropFontFamily, Value: family},
		{View: ViewQuoteText, Property: PropBold, Value: p.FontStyle.Bold},
		{View: ViewQuoteText, Property: PropTextSize, Value: p.FontSize},
		{View: ViewQuoteText, Property: PropTextColor, Value: p.TextColor},
		{View: ViewAuthor, Property: PropText, Value: p.QuoteAuthor},
		{View: ViewAuthor, Property: PropTextSize, Value: p.AuthorFontSize},
		{View: ViewAuthor, Property: PropTextColor, Value: p.AuthorColor},
	}
	if p.BackgroundAlpha == 0 {
		return append(out,
			model.Assignment{View: ViewBackground, Property: PropColorFilter, Value: argb.Transparent},
			model.Assignment{View: ViewBackground, Property: PropImageResource, Value: string(model.AssetNone)},
			model.Assignment{View: ViewBackground, Property: PropImageAlpha, Value: 0},
		)
	}
	return append(out,
		model.Assignment{View: ViewBackground, Property: PropImageResource, Value: string(p.BackgroundAsset)},
		model.Assignment{View: ViewBackground, Property: PropColorFilter, Value: p.BackgroundColor},
		model.Assignment{View: ViewBackground, Property: PropImageAlpha, Value: int(p.BackgroundAlpha)},
	)
}
