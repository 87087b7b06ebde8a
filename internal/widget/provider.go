// Package widget implements the widget provider lifecycle and the settings
// bridge used by hosting applications.
package widget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/render"
	"github.com/alfredjeanlab/quotewidget/internal/schedule"
	"github.com/alfredjeanlab/quotewidget/internal/settings"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

var (
	// ErrNotPlaced is returned for operations that need a placed widget.
	ErrNotPlaced = errors.New("widget is not placed")

	// ErrInvalidWidgetID is returned for a widget id below 1 where a real
	// widget is required.
	ErrInvalidWidgetID = errors.New("invalid widget id")
)

// Provider reacts to widget lifecycle events: placement, periodic refresh,
// explicit updates and removal.
type Provider struct {
	store     store.Store
	resolver  *settings.Resolver
	renderer  *render.Renderer
	publisher events.Publisher
	views     *render.Recorder
	scheduler *schedule.Scheduler

	// mu serializes lifecycle events so a refresh cannot re-arm a timer for
	// a widget that is being deleted.
	mu sync.Mutex
}

// Config wires a Provider. Publisher and Views are optional.
type Config struct {
	Store     store.Store
	Resolver  *settings.Resolver
	Renderer  *render.Renderer
	Publisher events.Publisher
	Views     *render.Recorder
}

// NewProvider creates a Provider and its refresh scheduler.
func NewProvider(cfg Config) *Provider {
	p := &Provider{
		store:     cfg.Store,
		resolver:  cfg.Resolver,
		renderer:  cfg.Renderer,
		publisher: cfg.Publisher,
		views:     cfg.Views,
	}
	if p.publisher == nil {
		p.publisher = &events.NoopPublisher{}
	}
	p.scheduler = schedule.New(func(ctx context.Context, widgetID int) {
		err := p.OnRefresh(ctx, widgetID)
		switch {
		case errors.Is(err, ErrNotPlaced):
			slog.Debug("dropping refresh for removed widget", "widget", widgetID)
		case err != nil:
			slog.Warn("scheduled refresh failed", "widget", widgetID, "err", err)
		}
	})
	return p
}

// Start renders every placed widget and arms its refresh timer.
func (p *Provider) Start(ctx context.Context) error {
	ids, err := p.WidgetIDs(ctx)
	if err != nil {
		return err
	}
	slog.Info("starting widget provider", "widgets", len(ids))
	return p.OnUpdate(ctx, ids)
}

// Stop cancels all pending refreshes.
func (p *Provider) Stop() {
	p.scheduler.Stop()
}

// Scheduler exposes the refresh scheduler.
func (p *Provider) Scheduler() *schedule.Scheduler {
	return p.scheduler
}

// OnUpdate renders each widget in turn and re-arms its refresh. Ids that are
// not placed are skipped. A failure on one widget does not stop the batch;
// all failures are returned together.
func (p *Provider) OnUpdate(ctx context.Context, ids []int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.update(ctx, ids)
}

func (p *Provider) update(ctx context.Context, ids []int) error {
	placed, err := p.WidgetIDs(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if id <= model.DefaultWidgetID {
			errs = append(errs, fmt.Errorf("update widget %d: %w", id, ErrInvalidWidgetID))
			continue
		}
		if _, ok := slices.BinarySearch(placed, id); !ok {
			slog.Debug("skipping update for unplaced widget", "widget", id)
			continue
		}
		if _, err := p.renderer.Render(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.scheduleNext(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnRefresh handles a fired refresh timer. A widget that is no longer
// placed has its timer cancelled and yields ErrNotPlaced.
func (p *Provider) OnRefresh(ctx context.Context, widgetID int) error {
	if widgetID <= model.DefaultWidgetID {
		return fmt.Errorf("refresh widget %d: %w", widgetID, ErrInvalidWidgetID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	placed, err := p.isPlaced(ctx, widgetID)
	if err != nil {
		return err
	}
	if !placed {
		p.scheduler.Cancel(widgetID)
		return fmt.Errorf("refresh widget %d: %w", widgetID, ErrNotPlaced)
	}
	if _, err := p.renderer.Render(ctx, widgetID); err != nil {
		return err
	}
	return p.scheduleNext(ctx, widgetID)
}

// OnPlaced registers a new widget, seeds its settings from the defaults,
// renders it and arms its refresh.
func (p *Provider) OnPlaced(ctx context.Context, widgetID int) (*model.Widget, error) {
	if widgetID <= model.DefaultWidgetID {
		return nil, fmt.Errorf("place widget %d: %w", widgetID, ErrInvalidWidgetID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	w := &model.Widget{ID: widgetID}
	if err := p.store.PlaceWidget(ctx, w); err != nil {
		return nil, fmt.Errorf("place widget %d: %w", widgetID, err)
	}
	if err := p.resolver.Seed(ctx, widgetID); err != nil {
		return nil, err
	}
	p.publish(ctx, events.TopicWidgetPlaced, events.WidgetPlaced{Widget: w})

	if err := p.update(ctx, []int{widgetID}); err != nil {
		return w, err
	}
	return w, nil
}

// OnDeleted cancels each widget's refresh, purges its preference keys and
// unregisters it.
func (p *Provider) OnDeleted(ctx context.Context, ids []int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if id == model.DefaultWidgetID {
			errs = append(errs, fmt.Errorf("delete widget: %w", settings.ErrDefaultBucket))
			continue
		}
		p.scheduler.Cancel(id)
		n, err := p.resolver.Purge(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.store.RemoveWidget(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
			errs = append(errs, fmt.Errorf("remove widget %d: %w", id, err))
			continue
		}
		if p.views != nil {
			p.views.Forget(id)
		}
		slog.Info("widget deleted", "widget", id, "keys_removed", n)
		p.publish(ctx, events.TopicWidgetDeleted, events.WidgetDeleted{WidgetID: id, KeysRemoved: n})
	}
	return errors.Join(errs...)
}

func (p *Provider) scheduleNext(ctx context.Context, widgetID int) error {
	interval, err := p.resolver.RefreshInterval(ctx, widgetID)
	if err != nil {
		return err
	}
	due := p.scheduler.Schedule(widgetID, interval)
	if due.IsZero() {
		return nil
	}
	p.publish(ctx, events.TopicRefreshScheduled, events.RefreshScheduled{WidgetID: widgetID, Due: due.UTC()})
	return nil
}

// publish is best-effort; failures are logged but do not block the caller.
func (p *Provider) publish(ctx context.Context, topic string, event any) {
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// WidgetIDs returns the ids of all placed widgets in ascending order.
func (p *Provider) WidgetIDs(ctx context.Context) ([]int, error) {
	widgets, err := p.store.ListWidgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}
	ids := make([]int, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	slices.Sort(ids)
	return ids, nil
}

func (p *Provider) isPlaced(ctx context.Context, widgetID int) (bool, error) {
	ids, err := p.WidgetIDs(ctx)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(ids, widgetID)
	return found, nil
}
