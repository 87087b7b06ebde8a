// Package server exposes the widget provider and bridge operations over
// HTTP, streams render events over SSE, and serves gRPC health checks.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/render"
	"github.com/alfredjeanlab/quotewidget/internal/settings"
	"github.com/alfredjeanlab/quotewidget/internal/widget"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported by the server.
const ServiceName = "quotewidget"

// WidgetServer serves the bridge operations of a widget.Provider.
type WidgetServer struct {
	provider *widget.Provider
	views    *render.Recorder
	hub      *Hub
	health   *health.Server
}

// NewWidgetServer returns a WidgetServer for p. The hub receives the events
// that are streamed to SSE clients and should be one of p's publishers.
// views may be nil, in which case GET /v1/widgets/{id}/view always 404s.
func NewWidgetServer(p *widget.Provider, views *render.Recorder, hub *Hub) *WidgetServer {
	if hub == nil {
		hub = NewHub()
	}
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &WidgetServer{
		provider: p,
		views:    views,
		hub:      hub,
		health:   hs,
	}
}

// Shutdown marks the service as not serving.
func (s *WidgetServer) Shutdown() {
	s.health.Shutdown()
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// statusFor maps a provider error to an HTTP status code.
func statusFor(err error) int {
	var ie inputError
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ie), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, settings.ErrDefaultBucket), errors.Is(err, widget.ErrInvalidWidgetID):
		return http.StatusBadRequest
	case errors.Is(err, widget.ErrNotPlaced), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
