package server

import (
	"net/http"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// handleListWidgets handles GET /v1/widgets.
func (s *WidgetServer) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	ids, err := s.provider.GetAllWidgetIDs(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"widget_ids": ids})
}

// handlePlaceWidget handles POST /v1/widgets/{id}.
func (s *WidgetServer) handlePlaceWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if id == model.DefaultWidgetID {
		writeError(w, http.StatusBadRequest, "widget id 0 is reserved for default settings")
		return
	}

	widget, err := s.provider.OnPlaced(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, widget)
}

// handleDeleteWidget handles DELETE /v1/widgets/{id}.
func (s *WidgetServer) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := s.provider.OnDeleted(r.Context(), []int{id}); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleForceUpdate handles POST /v1/widgets/{id}/refresh. Id 0 refreshes
// every placed widget.
func (s *WidgetServer) handleForceUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	renders, err := s.provider.ForceUpdateWidget(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renders": renders})
}

// handleGetView handles GET /v1/widgets/{id}/view.
func (s *WidgetServer) handleGetView(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if s.views == nil {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	view, ok := s.views.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetSchedule handles GET /v1/widgets/{id}/schedule.
func (s *WidgetServer) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	due, ok := s.provider.Scheduler().Due(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no refresh scheduled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"widget_id": id,
		"due":       due.UTC().Format(time.RFC3339),
	})
}
