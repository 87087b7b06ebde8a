// Package broadcast drives the widget provider from lifecycle broadcasts
// published by hosting apps on the event bus.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// Action constants match the "action" field of a broadcast payload.
const (
	ActionUpdate  = "update"
	ActionRefresh = "refresh"
	ActionPlaced  = "placed"
	ActionDeleted = "deleted"
)

// Broadcast is the payload a host publishes on a TopicBroadcast subject.
// Update and deleted take WidgetIDs; refresh and placed take WidgetID.
type Broadcast struct {
	Action    string `json:"action"`
	WidgetID  int    `json:"widget_id,omitempty"`
	WidgetIDs []int  `json:"widget_ids,omitempty"`
}

// Provider is the part of the widget provider a broadcast can reach.
type Provider interface {
	OnUpdate(ctx context.Context, ids []int) error
	OnRefresh(ctx context.Context, widgetID int) error
	OnPlaced(ctx context.Context, widgetID int) (*model.Widget, error)
	OnDeleted(ctx context.Context, ids []int) error
}

var (
	// ErrUnknownAction is returned for a broadcast with an unrecognised action.
	ErrUnknownAction = errors.New("unknown broadcast action")

	// ErrMissingWidgetID is returned for a refresh or placed broadcast
	// without a positive widget_id.
	ErrMissingWidgetID = errors.New("broadcast has no widget_id")
)

// Handler dispatches broadcasts to a Provider.
type Handler struct {
	provider Provider
	logger   *slog.Logger
}

// NewHandler creates a broadcast handler. A nil logger uses slog.Default().
func NewHandler(p Provider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{provider: p, logger: logger}
}

// Handle runs the provider operation named by b.
func (h *Handler) Handle(ctx context.Context, b Broadcast) error {
	switch b.Action {
	case ActionUpdate:
		if len(b.WidgetIDs) == 0 {
			return nil
		}
		return h.provider.OnUpdate(ctx, b.WidgetIDs)
	case ActionRefresh:
		if b.WidgetID <= model.DefaultWidgetID {
			return fmt.Errorf("%s: %w", b.Action, ErrMissingWidgetID)
		}
		return h.provider.OnRefresh(ctx, b.WidgetID)
	case ActionPlaced:
		if b.WidgetID <= model.DefaultWidgetID {
			return fmt.Errorf("%s: %w", b.Action, ErrMissingWidgetID)
		}
		_, err := h.provider.OnPlaced(ctx, b.WidgetID)
		return err
	case ActionDeleted:
		if len(b.WidgetIDs) == 0 {
			return nil
		}
		return h.provider.OnDeleted(ctx, b.WidgetIDs)
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, b.Action)
	}
}

// StartSubscriber listens for broadcasts on the event bus and handles them
// one at a time. It blocks until ctx is cancelled or the subscription closes.
func (h *Handler) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicBroadcastAll)
	if err != nil {
		return fmt.Errorf("broadcast: subscribe: %w", err)
	}
	defer cancel()

	h.logger.Info("broadcast: subscriber started", "topic", events.TopicBroadcastAll)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("broadcast: subscriber stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				h.logger.Info("broadcast: subscription channel closed")
				return nil
			}

			var b Broadcast
			if err := json.Unmarshal(raw, &b); err != nil {
				h.logger.Warn("broadcast: bad payload", "err", err)
				continue
			}
			if err := h.Handle(ctx, b); err != nil {
				h.logger.Error("broadcast: handling failed", "action", b.Action, "err", err)
				continue
			}
			h.logger.Debug("broadcast: handled", "action", b.Action, "widget", b.WidgetID, "widgets", b.WidgetIDs)
		}
	}
}
