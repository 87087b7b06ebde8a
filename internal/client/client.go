// Package client provides a transport-agnostic interface for the quotewidget
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/render"
)

// WidgetClient is the interface that the qw CLI commands use to communicate
// with the widget server. It is implemented by HTTPClient.
type WidgetClient interface {
	// Widgets
	ListWidgets(ctx context.Context) ([]int, error)
	PlaceWidget(ctx context.Context, id int) (*model.Widget, error)
	DeleteWidget(ctx context.Context, id int) error
	RefreshWidget(ctx context.Context, id int) ([]*model.RenderParams, error)
	GetView(ctx context.Context, id int) (*render.View, error)
	GetSchedule(ctx context.Context, id int) (*Schedule, error)

	// Settings
	GetSettings(ctx context.Context, id int) (*model.WidgetSettings, error)
	UpdateSettings(ctx context.Context, id int, patch *model.SettingsPatch) (*model.WidgetSettings, error)
	GetDefaults(ctx context.Context) (*model.WidgetSettings, error)
	UpdateDefaults(ctx context.Context, patch *model.SettingsPatch) (*model.WidgetSettings, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// Schedule is the pending refresh of one widget.
type Schedule struct {
	WidgetID int    `json:"widget_id"`
	Due      string `json:"due"`
}
