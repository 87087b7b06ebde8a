package server

import (
	"encoding/json"
	"net/http"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// handleGetSettings handles GET /v1/widgets/{id}/settings.
func (s *WidgetServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	settings, err := s.provider.GetWidgetSettings(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings handles PATCH /v1/widgets/{id}/settings.
func (s *WidgetServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.updateSettings(w, r, id)
}

// handleGetDefaults handles GET /v1/defaults.
func (s *WidgetServer) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	settings, err := s.provider.GetDefaultSettings(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateDefaults handles PATCH /v1/defaults.
func (s *WidgetServer) handleUpdateDefaults(w http.ResponseWriter, r *http.Request) {
	s.updateSettings(w, r, model.DefaultWidgetID)
}

// updateSettings decodes a SettingsPatch, applies it and responds with the
// settings the widget now resolves to.
func (s *WidgetServer) updateSettings(w http.ResponseWriter, r *http.Request, id int) {
	var patch model.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "no settings fields in request")
		return
	}

	ctx := r.Context()
	if err := s.provider.UpdateWidgetSettings(ctx, id, &patch); err != nil {
		writeFailure(w, r, err)
		return
	}

	settings, err := s.provider.GetWidgetSettings(ctx, id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
