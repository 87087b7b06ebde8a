package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *WidgetServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/widgets", s.handleListWidgets)
	mux.HandleFunc("POST /v1/widgets/{id}", s.handlePlaceWidget)
	mux.HandleFunc("DELETE /v1/widgets/{id}", s.handleDeleteWidget)
	mux.HandleFunc("POST /v1/widgets/{id}/refresh", s.handleForceUpdate)
	mux.HandleFunc("GET /v1/widgets/{id}/view", s.handleGetView)
	mux.HandleFunc("GET /v1/widgets/{id}/schedule", s.handleGetSchedule)
	mux.HandleFunc("GET /v1/widgets/{id}/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /v1/widgets/{id}/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /v1/defaults", s.handleGetDefaults)
	mux.HandleFunc("PATCH /v1/defaults", s.handleUpdateDefaults)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *WidgetServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// widgetID parses the {id} path value. Widget ids are non-negative.
func widgetID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, inputError("id is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, inputError("invalid widget id " + strconv.Quote(raw))
	}
	return id, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps err to a status code and writes it. Server-side failures
// are logged.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}
