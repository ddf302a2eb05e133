package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// LinkEventHandler serves controller reachability transitions.
type LinkEventHandler struct {
	store *store.Store
}

// NewLinkEventHandler creates a LinkEventHandler.
func NewLinkEventHandler(s *store.Store) *LinkEventHandler {
	return &LinkEventHandler{store: s}
}

type listLinkEventsResponse struct {
	Events []*store.LinkEvent `json:"events"`
}

// ServeHTTP handles GET /api/link-events.
func (h *LinkEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	events, err := h.store.LinkEvents().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list link events")
		return
	}
	if events == nil {
		events = []*store.LinkEvent{}
	}
	writeJSON(w, http.StatusOK, listLinkEventsResponse{Events: events})
}
