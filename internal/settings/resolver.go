// Package settings resolves and persists per-widget display settings.
//
// Every read selects a bucket first: the widget's own keys when its probe key
// is present, otherwise the shared default bucket 0. All fields of a group are
// then read from that one bucket with per-field defaults. Fields are never
// mixed across buckets, with one exception: a missing font_weight in a widget
// bucket falls back to font_weight_0 before the hardcoded default.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/prefs"
	"github.com/alfredjeanlab/quotewidget/internal/store"
	"github.com/alfredjeanlab/quotewidget/internal/theme"
)

// ErrDefaultBucket is returned when an operation would destroy bucket 0.
var ErrDefaultBucket = errors.New("the default bucket cannot be removed")

// Resolver reads and writes widget settings in a preference store.
type Resolver struct {
	store    store.Store
	prefs    *prefs.Prefs
	platform theme.Platform
}

// New creates a Resolver. platform may be nil, in which case device colours
// resolve to the day-mode constants.
func New(s store.Store, platform theme.Platform) *Resolver {
	return &Resolver{store: s, prefs: prefs.New(s), platform: platform}
}

// Buckets holds the bucket selected for each probe, computed once per read.
type Buckets struct {
	Display  int // font, colour and background groups
	Schedule int
}

// For returns the bucket for g.
func (b Buckets) For(g Group) int {
	if g == GroupSchedule {
		return b.Schedule
	}
	return b.Display
}

// SelectBucket returns widgetID when the group's probe key exists for it and
// the default bucket otherwise.
func (r *Resolver) SelectBucket(ctx context.Context, widgetID int, g Group) (int, error) {
	if widgetID == model.DefaultWidgetID {
		return model.DefaultWidgetID, nil
	}
	ok, err := r.prefs.Contains(ctx, key(g.ProbeField(), widgetID))
	if err != nil {
		return 0, fmt.Errorf("select %s bucket for widget %d: %w", g, widgetID, err)
	}
	if ok {
		return widgetID, nil
	}
	return model.DefaultWidgetID, nil
}

// SelectBuckets probes both the display and schedule buckets.
func (r *Resolver) SelectBuckets(ctx context.Context, widgetID int) (Buckets, error) {
	display, err := r.SelectBucket(ctx, widgetID, GroupFont)
	if err != nil {
		return Buckets{}, err
	}
	sched, err := r.SelectBucket(ctx, widgetID, GroupSchedule)
	if err != nil {
		return Buckets{}, err
	}
	return Buckets{Display: display, Schedule: sched}, nil
}

// Get returns the stored settings for widgetID with colour modes unresolved.
// Widget 0 returns the defaults bucket.
func (r *Resolver) Get(ctx context.Context, widgetID int) (model.WidgetSettings, error) {
	b, err := r.SelectBuckets(ctx, widgetID)
	if err != nil {
		return model.WidgetSettings{}, err
	}
	return r.read(ctx, b)
}

// Resolved is a settings snapshot with device colours resolved.
type Resolved struct {
	WidgetID        int
	Buckets         Buckets
	Settings        model.WidgetSettings
	TextColor       argb.Color
	BackgroundColor argb.Color
}

// UsedDefaultBucket reports whether the display groups came from bucket 0.
func (rs *Resolved) UsedDefaultBucket() bool {
	return rs.Buckets.Display == model.DefaultWidgetID
}

// Resolve reads the effective settings of widgetID for rendering.
func (r *Resolver) Resolve(ctx context.Context, widgetID int) (*Resolved, error) {
	b, err := r.SelectBuckets(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	s, err := r.read(ctx, b)
	if err != nil {
		return nil, err
	}
	rs := &Resolved{
		WidgetID:        widgetID,
		Buckets:         b,
		Settings:        s,
		TextColor:       s.TextColor.Value,
		BackgroundColor: s.BackgroundColor.Value,
	}
	if s.TextColor.IsDevice() {
		rs.TextColor = theme.DeviceTextColor(r.platform)
	}
	if s.BackgroundColor.IsDevice() {
		rs.BackgroundColor = theme.DeviceBackgroundColor(r.platform)
	}
	return rs, nil
}

// RefreshInterval returns the schedule-group refresh interval for widgetID.
func (r *Resolver) RefreshInterval(ctx context.Context, widgetID int) (time.Duration, error) {
	bucket, err := r.SelectBucket(ctx, widgetID, GroupSchedule)
	if err != nil {
		return 0, err
	}
	rd := &reader{ctx: ctx, prefs: r.prefs}
	minutes := rd.int(key(FieldRefreshInterval, bucket), model.DefaultRefreshInterval)
	if rd.err != nil {
		return 0, rd.err
	}
	if minutes <= 0 {
		minutes = model.DefaultRefreshInterval
	}
	return time.Duration(minutes) * time.Minute, nil
}

func (r *Resolver) read(ctx context.Context, b Buckets) (model.WidgetSettings, error) {
	rd := &reader{ctx: ctx, prefs: r.prefs}
	d := b.Display

	globalWeight := rd.str(key(FieldFontWeight, model.DefaultWidgetID), string(model.DefaultFontWeight))

	s := model.WidgetSettings{
		FontFamily:             rd.str(key(FieldFontFamily, d), model.DefaultFontFamily),
		FontSize:               rd.int(key(FieldFontSize, d), model.DefaultFontSize),
		FontWeight:             model.FontWeight(rd.str(key(FieldFontWeight, d), globalWeight)),
		IsBold:                 rd.bool(key(FieldIsBold, d), false),
		TextColor:              rd.color(FieldTextColorType, FieldTextColor, d, model.DefaultTextColor),
		BackgroundColor:        rd.color(FieldBackgroundColorType, FieldBackgroundColor, d, model.DefaultBackgroundColor),
		BackgroundType:         model.BackgroundType(rd.str(key(FieldBackgroundType, d), string(model.DefaultBackgroundType))),
		BackgroundOpacity:      rd.float(key(FieldBackgroundOpacity, d), model.DefaultOpacity),
		BorderRadius:           rd.int(key(FieldBorderRadius, d), model.DefaultBorderRadius),
		AutoTheme:              rd.bool(key(FieldAutoTheme, d), false),
		RefreshIntervalMinutes: rd.int(key(FieldRefreshInterval, b.Schedule), model.DefaultRefreshInterval),
	}
	if rd.err != nil {
		return model.WidgetSettings{}, rd.err
	}
	return s, nil
}

// reader threads the first store error through a sequence of typed reads.
type reader struct {
	ctx   context.Context
	prefs *prefs.Prefs
	err   error
}

func (rd *reader) str(k, def string) string {
	if rd.err != nil {
		return def
	}
	v, err := rd.prefs.GetString(rd.ctx, k, def)
	rd.err = err
	return v
}

func (rd *reader) int(k string, def int) int {
	if rd.err != nil {
		return def
	}
	v, err := rd.prefs.GetInt(rd.ctx, k, def)
	rd.err = err
	return v
}

func (rd *reader) float(k string, def float64) float64 {
	if rd.err != nil {
		return def
	}
	v, err := rd.prefs.GetFloat(rd.ctx, k, def)
	rd.err = err
	return v
}

func (rd *reader) bool(k string, def bool) bool {
	if rd.err != nil {
		return def
	}
	v, err := rd.prefs.GetBool(rd.ctx, k, def)
	rd.err = err
	return v
}

// color reads a (type, value) field pair. A stored custom value that does not
// parse yields def.
func (rd *reader) color(typeField, valueField string, bucket int, def argb.Color) model.ColorSetting {
	mode := rd.str(key(typeField, bucket), string(model.ColorModeCustom))
	if mode == string(model.ColorModeDevice) {
		return model.DeviceColor()
	}
	raw := rd.str(key(valueField, bucket), def.String())
	c, err := argb.Parse(raw)
	if err != nil {
		slog.Warn("stored colour is invalid, using default",
			"key", key(valueField, bucket), "value", raw, "default", def.String())
		return model.CustomColor(def)
	}
	return model.CustomColor(c)
}
