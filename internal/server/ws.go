package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultStateInterval is the websocket push period (~15 Hz).
const DefaultStateInterval = 66 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes the pipeline status to websocket clients.
type StateHandler struct {
	source   StatusProvider
	interval time.Duration
	logger   *slog.Logger

	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewStateHandler creates a StateHandler and starts its broadcaster.
func NewStateHandler(source StatusProvider, interval time.Duration, logger *slog.Logger) *StateHandler {
	if interval <= 0 {
		interval = DefaultStateInterval
	}
	h := &StateHandler{
		source:   source,
		interval: interval,
		logger:   logger,
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster and disconnects every client.
func (h *StateHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.stopCh)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.clients = make(map[*websocket.Conn]bool)
		h.mu.Unlock()
	})
}

func (h *StateHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// broadcast sends the status to all connected clients.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.clients))
		for conn := range h.clients {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()
		if len(conns) == 0 {
			continue
		}

		msg, err := json.Marshal(map[string]any{
			"status":    h.source.Status(),
			"timestamp": time.Now().UnixMilli(),
		})
		if err != nil {
			h.logger.Error("failed to encode status", "error", err)
			continue
		}

		for _, conn := range conns {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(conn)
				conn.Close()
			}
		}
	}
}
