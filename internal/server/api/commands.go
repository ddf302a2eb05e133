package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/link"
	"github.com/ayusman/mudra/internal/store"
)

// Sender queues a controller command.
type Sender interface {
	Dispatch(path string)
}

// CommandHandler serves the command log and accepts manual commands.
type CommandHandler struct {
	store  *store.Store
	sender Sender
}

// NewCommandHandler creates a CommandHandler. Either argument may be nil,
// which disables the matching endpoints.
func NewCommandHandler(s *store.Store, sender Sender) *CommandHandler {
	return &CommandHandler{store: s, sender: sender}
}

// ServeHTTP routes /api/commands and /api/commands/{id}.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/commands")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.send(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type listCommandsResponse struct {
	Commands []*store.Command `json:"commands"`
	Counts   map[string]int   `json:"counts"`
}

type sendCommandRequest struct {
	Finger string `json:"finger"`
	On     bool   `json:"on"`
	AllOff bool   `json:"all_off"`
}

type sendCommandResponse struct {
	Endpoint string `json:"endpoint"`
}

func (h *CommandHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	cmds, err := h.store.Commands().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list commands")
		return
	}
	counts, err := h.store.Commands().CountByOutcome()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count commands")
		return
	}
	if cmds == nil {
		cmds = []*store.Command{}
	}

	writeJSON(w, http.StatusOK, listCommandsResponse{Commands: cmds, Counts: counts})
}

func (h *CommandHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}
	c, err := h.store.Commands().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Command not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get command")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// send queues a manual command. Delivery happens in the background, so
// the reply is 202 with the endpoint that was queued.
func (h *CommandHandler) send(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		writeError(w, http.StatusServiceUnavailable, "No dispatcher configured")
		return
	}

	var req sendCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	endpoint, err := link.CommandPath(req.Finger, req.On, req.AllOff)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.sender.Dispatch(endpoint)
	writeJSON(w, http.StatusAccepted, sendCommandResponse{Endpoint: endpoint})
}
