package widget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// UpdateWidgetSettings writes patch to widgetID's bucket and re-renders. A
// write to the default bucket re-renders every placed widget; a write to an
// unplaced widget is stored for later and renders nothing.
//
// Only a failed write is returned. Once the write has committed, a failed
// re-render is logged and the widget catches up on its next refresh.
func (p *Provider) UpdateWidgetSettings(ctx context.Context, widgetID int, patch *model.SettingsPatch) error {
	if err := p.resolver.ApplyPatch(ctx, widgetID, patch); err != nil {
		return err
	}
	p.publish(ctx, events.TopicSettingsUpdated, events.SettingsUpdated{WidgetID: widgetID, Patch: patch})

	if err := p.rerender(ctx, widgetID); err != nil {
		slog.Warn("settings written, re-render failed", "widget", widgetID, "err", err)
	}
	return nil
}

func (p *Provider) rerender(ctx context.Context, widgetID int) error {
	if widgetID == model.DefaultWidgetID {
		ids, err := p.WidgetIDs(ctx)
		if err != nil {
			return err
		}
		return p.OnUpdate(ctx, ids)
	}
	// OnUpdate skips unplaced ids.
	return p.OnUpdate(ctx, []int{widgetID})
}

// UpdateDefaultSettings writes patch to the default bucket.
func (p *Provider) UpdateDefaultSettings(ctx context.Context, patch *model.SettingsPatch) error {
	return p.UpdateWidgetSettings(ctx, model.DefaultWidgetID, patch)
}

// GetWidgetSettings returns the settings widgetID currently resolves to.
func (p *Provider) GetWidgetSettings(ctx context.Context, widgetID int) (model.WidgetSettings, error) {
	s, err := p.resolver.Get(ctx, widgetID)
	if err != nil {
		return model.WidgetSettings{}, fmt.Errorf("get widget settings: %w", err)
	}
	return s, nil
}

// GetDefaultSettings returns the default bucket's settings.
func (p *Provider) GetDefaultSettings(ctx context.Context) (model.WidgetSettings, error) {
	return p.GetWidgetSettings(ctx, model.DefaultWidgetID)
}

// ForceUpdateWidget renders widgetID immediately without touching its refresh
// timer. Id 0 renders every placed widget.
func (p *Provider) ForceUpdateWidget(ctx context.Context, widgetID int) ([]*model.RenderParams, error) {
	ids := []int{widgetID}
	if widgetID == model.DefaultWidgetID {
		var err error
		if ids, err = p.WidgetIDs(ctx); err != nil {
			return nil, err
		}
	} else {
		placed, err := p.isPlaced(ctx, widgetID)
		if err != nil {
			return nil, err
		}
		if !placed {
			return nil, fmt.Errorf("force update widget %d: %w", widgetID, ErrNotPlaced)
		}
	}

	out := make([]*model.RenderParams, 0, len(ids))
	for _, id := range ids {
		params, err := p.renderer.Render(ctx, id)
		if err != nil {
			return out, fmt.Errorf("force update widget %d: %w", id, err)
		}
		out = append(out, params)
	}
	return out, nil
}

// GetAllWidgetIDs returns the ids of every placed widget.
func (p *Provider) GetAllWidgetIDs(ctx context.Context) ([]int, error) {
	return p.WidgetIDs(ctx)
}
