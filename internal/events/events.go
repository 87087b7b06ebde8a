package events

import (
	"context"
	"errors"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// Event topic constants
const (
	TopicWidgetRendered   = "quotewidget.widget.rendered"
	TopicWidgetPlaced     = "quotewidget.widget.placed"
	TopicWidgetDeleted    = "quotewidget.widget.deleted"
	TopicSettingsUpdated  = "quotewidget.settings.updated"
	TopicRefreshScheduled = "quotewidget.refresh.scheduled"

	// TopicBroadcastAll matches lifecycle broadcasts sent by hosting apps.
	TopicBroadcastAll = "quotewidget.broadcast.>"

	// TopicAll matches every quotewidget topic.
	TopicAll = "quotewidget.>"
)

// Event types

// WidgetRendered carries the view assignments produced by one render.
type WidgetRendered struct {
	WidgetID    int                 `json:"widget_id"`
	RenderID    string              `json:"render_id"`
	Params      *model.RenderParams `json:"params"`
	Assignments []model.Assignment  `json:"assignments"`
}

type WidgetPlaced struct {
	Widget *model.Widget `json:"widget"`
}

type WidgetDeleted struct {
	WidgetID    int `json:"widget_id"`
	KeysRemoved int `json:"keys_removed"`
}

type SettingsUpdated struct {
	WidgetID int                  `json:"widget_id"`
	Patch    *model.SettingsPatch `json:"patch"`
}

type RefreshScheduled struct {
	WidgetID int       `json:"widget_id"`
	Due      time.Time `json:"due"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// multiPublisher fans every event out to several publishers.
type multiPublisher []Publisher

// Multi returns a Publisher that publishes to each of pubs in order. Nil
// entries are skipped. Errors are joined; one failing publisher does not stop
// delivery to the rest.
func Multi(pubs ...Publisher) Publisher {
	var m multiPublisher
	for _, p := range pubs {
		if p != nil {
			m = append(m, p)
		}
	}
	return m
}

func (m multiPublisher) Publish(ctx context.Context, topic string, event any) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
