package api

import (
	"encoding/json"
	"net/http"
)

// Toggle pauses and resumes gesture processing.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// EnabledHandler reads and sets whether gestures are processed.
type EnabledHandler struct {
	toggle Toggle
}

// NewEnabledHandler creates an EnabledHandler.
func NewEnabledHandler(t Toggle) *EnabledHandler {
	return &EnabledHandler{toggle: t}
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/enabled.
func (h *EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body enabledBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if body.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggle.SetEnabled(*body.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.toggle.IsEnabled()
	writeJSON(w, http.StatusOK, enabledBody{Enabled: &enabled})
}
