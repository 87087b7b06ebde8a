package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/prefs"
)

// ApplyPatch writes the fields present in patch to widgetID's bucket in one
// transaction. A colour of "device" switches the field to device mode and
// removes the stored custom value. A colour that does not parse is replaced by
// the field's default and logged.
func (r *Resolver) ApplyPatch(ctx context.Context, widgetID int, patch *model.SettingsPatch) error {
	if widgetID < 0 {
		return fmt.Errorf("invalid widget id %d", widgetID)
	}
	if err := model.ValidatePatch(patch); err != nil {
		return err
	}

	e := r.prefs.Edit()
	if patch.FontFamily != nil {
		e.PutString(key(FieldFontFamily, widgetID), *patch.FontFamily)
	}
	if patch.FontSize != nil {
		e.PutInt(key(FieldFontSize, widgetID), *patch.FontSize)
	}
	if patch.FontWeight != nil {
		e.PutString(key(FieldFontWeight, widgetID), string(*patch.FontWeight))
	}
	if patch.IsBold != nil {
		e.PutBool(key(FieldIsBold, widgetID), *patch.IsBold)
	}
	if patch.TextColor != nil {
		putColor(e, FieldTextColorType, FieldTextColor, widgetID, *patch.TextColor, model.DefaultTextColor)
	}
	if patch.BackgroundColor != nil {
		putColor(e, FieldBackgroundColorType, FieldBackgroundColor, widgetID, *patch.BackgroundColor, model.DefaultBackgroundColor)
	}
	if patch.BackgroundType != nil {
		e.PutString(key(FieldBackgroundType, widgetID), string(*patch.BackgroundType))
	}
	if patch.BackgroundOpacity != nil {
		e.PutFloat(key(FieldBackgroundOpacity, widgetID), *patch.BackgroundOpacity)
	}
	if patch.BorderRadius != nil {
		e.PutInt(key(FieldBorderRadius, widgetID), *patch.BorderRadius)
	}
	if patch.RefreshInterval != nil {
		e.PutInt(key(FieldRefreshInterval, widgetID), *patch.RefreshInterval)
	}
	if patch.AutoTheme != nil {
		e.PutBool(key(FieldAutoTheme, widgetID), *patch.AutoTheme)
	}

	if err := e.Commit(ctx); err != nil {
		return fmt.Errorf("write settings for widget %d: %w", widgetID, err)
	}
	return nil
}

func putColor(e *prefs.Editor, typeField, valueField string, widgetID int, raw string, def argb.Color) {
	if raw == string(model.ColorModeDevice) {
		e.PutString(key(typeField, widgetID), string(model.ColorModeDevice))
		e.Remove(key(valueField, widgetID))
		return
	}
	c, err := argb.Parse(raw)
	if err != nil {
		slog.Warn("invalid colour, storing default",
			"widget", widgetID, "field", valueField, "value", raw, "default", def.String(), "err", err)
		c = def
	}
	e.PutString(key(typeField, widgetID), string(model.ColorModeCustom))
	e.PutString(key(valueField, widgetID), c.String())
}

// Seed gives a newly placed widget its own bucket by copying the default
// bucket's values, or the hardcoded defaults where bucket 0 has none. Colour
// modes default to "device". font_weight is not copied; a widget bucket
// without it follows font_weight_0. Seed does nothing when the widget
// already has its own settings.
func (r *Resolver) Seed(ctx context.Context, widgetID int) error {
	if widgetID == model.DefaultWidgetID {
		return fmt.Errorf("seed: %w", ErrDefaultBucket)
	}
	exists, err := r.prefs.Contains(ctx, key(FieldFontFamily, widgetID))
	if err != nil {
		return fmt.Errorf("seed widget %d: %w", widgetID, err)
	}
	if exists {
		return nil
	}

	rd := &reader{ctx: ctx, prefs: r.prefs}
	d := model.DefaultWidgetID
	e := r.prefs.Edit().
		PutString(key(FieldFontFamily, widgetID), rd.str(key(FieldFontFamily, d), model.DefaultFontFamily)).
		PutInt(key(FieldFontSize, widgetID), rd.int(key(FieldFontSize, d), model.DefaultFontSize)).
		PutString(key(FieldTextColorType, widgetID), rd.str(key(FieldTextColorType, d), string(model.ColorModeDevice))).
		PutString(key(FieldTextColor, widgetID), rd.str(key(FieldTextColor, d), model.DefaultTextColor.String())).
		PutBool(key(FieldIsBold, widgetID), rd.bool(key(FieldIsBold, d), false)).
		PutString(key(FieldBackgroundColorType, widgetID), rd.str(key(FieldBackgroundColorType, d), string(model.ColorModeDevice))).
		PutString(key(FieldBackgroundColor, widgetID), rd.str(key(FieldBackgroundColor, d), model.DefaultBackgroundColor.String())).
		PutString(key(FieldBackgroundType, widgetID), rd.str(key(FieldBackgroundType, d), string(model.DefaultBackgroundType))).
		PutFloat(key(FieldBackgroundOpacity, widgetID), rd.float(key(FieldBackgroundOpacity, d), model.DefaultOpacity)).
		PutInt(key(FieldBorderRadius, widgetID), rd.int(key(FieldBorderRadius, d), model.DefaultBorderRadius)).
		PutInt(key(FieldRefreshInterval, widgetID), rd.int(key(FieldRefreshInterval, d), model.DefaultRefreshInterval)).
		PutBool(key(FieldAutoTheme, widgetID), rd.bool(key(FieldAutoTheme, d), false))
	if rd.err != nil {
		return fmt.Errorf("seed widget %d: read defaults: %w", widgetID, rd.err)
	}
	if err := e.Commit(ctx); err != nil {
		return fmt.Errorf("seed widget %d: %w", widgetID, err)
	}
	return nil
}

// Purge removes every key of widgetID's bucket and returns how many were
// removed. Bucket 0 is never purged.
func (r *Resolver) Purge(ctx context.Context, widgetID int) (int, error) {
	if widgetID == model.DefaultWidgetID {
		return 0, fmt.Errorf("purge: %w", ErrDefaultBucket)
	}
	n, err := r.store.DeleteWidgetPrefs(ctx, widgetID)
	if err != nil {
		return 0, fmt.Errorf("purge widget %d: %w", widgetID, err)
	}
	return n, nil
}
