package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/events"
	"github.com/alfredjeanlab/quotewidget/internal/idgen"
	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/quotes"
	"github.com/alfredjeanlab/quotewidget/internal/settings"
)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// ViewSink receives the view assignments for one widget.
type ViewSink interface {
	Apply(ctx context.Context, params *model.RenderParams, assignments []model.Assignment) error
}

// Renderer resolves settings, picks a quote, computes render parameters and
// pushes the resulting assignments to its sinks.
type Renderer struct {
	resolver *settings.Resolver
	picker   *quotes.Picker
	sinks    []ViewSink
	now      func() time.Time
}

// NewRenderer creates a Renderer.
func NewRenderer(r *settings.Resolver, p *quotes.Picker, sinks ...ViewSink) *Renderer {
	return &Renderer{resolver: r, picker: p, sinks: sinks, now: time.Now}
}

// Preview computes the parameters and assignments for widgetID without
// pushing them anywhere.
func (r *Renderer) Preview(ctx context.Context, widgetID int) (*model.RenderParams, []model.Assignment, error) {
	rs, err := r.resolver.Resolve(ctx, widgetID)
	if err != nil {
		return nil, nil, fmt.Errorf("render widget %d: %w", widgetID, err)
	}
	quote, _ := r.picker.Pick(ctx)

	params := Compute(Input{
		WidgetID:          widgetID,
		Settings:          rs.Settings,
		TextColor:         rs.TextColor,
		BackgroundColor:   rs.BackgroundColor,
		Quote:             quote,
		UsedDefaultBucket: rs.UsedDefaultBucket(),
	})
	params.RenderID = idgen.RenderID()
	params.RenderedAt = r.now().UTC()

	slog.Debug("computed render params",
		"widget", widgetID,
		"render_id", params.RenderID,
		"font_size", params.FontSize,
		"text_color", params.TextColor.String(),
		"background_color", params.BackgroundColor.String(),
		"border_radius", params.BorderRadius,
		"background_alpha", params.BackgroundAlpha,
		"font_weight", rs.Settings.FontWeight,
		"default_bucket", params.UsedDefaultBucket,
	)
	return &params, Assignments(&params), nil
}

// Render computes widgetID's view and pushes it to every sink. Sink failures
// are logged and do not fail the render.
func (r *Renderer) Render(ctx context.Context, widgetID int) (*model.RenderParams, error) {
	params, assignments, err := r.Preview(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	for _, s := range r.sinks {
		if err := s.Apply(ctx, params, assignments); err != nil {
			slog.Warn("view sink failed", "widget", widgetID, "render_id", params.RenderID, "err", err)
		}
	}
	return params, nil
}

// PublishSink publishes every render as a WidgetRendered event.
type PublishSink struct {
	Publisher events.Publisher
}

// Apply publishes the render.
func (s PublishSink) Apply(ctx context.Context, params *model.RenderParams, assignments []model.Assignment) error {
	if s.Publisher == nil {
		return errors.New("publish sink has no publisher")
	}
	return s.Publisher.Publish(ctx, events.TopicWidgetRendered, events.WidgetRendered{
		WidgetID:    params.WidgetID,
		RenderID:    params.RenderID,
		Params:      params,
		Assignments: assignments,
	})
}

// View is the last render applied to a widget.
type View struct {
	Params      *model.RenderParams `json:"params"`
	Assignments []model.Assignment  `json:"assignments"`
}

// Recorder is a ViewSink that remembers the latest view of each widget.
type Recorder struct {
	mu    sync.RWMutex
	views map[int]*View
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{views: make(map[int]*View)}
}

// Apply stores the view.
func (rec *Recorder) Apply(_ context.Context, params *model.RenderParams, assignments []model.Assignment) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.views[params.WidgetID] = &View{Params: params, Assignments: assignments}
	return nil
}

// Get returns the latest view of widgetID.
func (rec *Recorder) Get(widgetID int) (*View, bool) {
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	v, ok := rec.views[widgetID]
	return v, ok
}

// Forget drops widgetID's view.
func (rec *Recorder) Forget(widgetID int) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	delete(rec.views, widgetID)
}
