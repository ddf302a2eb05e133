// Package server provides the local HTTP status server for mudra.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// StatusProvider reports the pipeline status.
type StatusProvider interface {
	Status() app.Status
}

// Controls is what the server needs from the running pipeline.
type Controls interface {
	StatusProvider
	api.Toggle
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Controls  Controls
	Sender    api.Sender
	// StateInterval is the websocket push period; zero means ~15 Hz.
	StateInterval time.Duration
	Logger        *slog.Logger
}

// Server represents the HTTP server for the mudra status API.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	state  *StateHandler
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.With("component", "server")
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: config.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Controls != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/enabled", api.NewEnabledHandler(s.config.Controls))

		s.state = NewStateHandler(s.config.Controls, s.config.StateInterval, s.logger)
		s.mux.Handle("/api/ws", s.state)
	}

	if s.config.Store != nil || s.config.Sender != nil {
		commands := api.NewCommandHandler(s.config.Store, s.config.Sender)
		s.mux.Handle("/api/commands", commands)
		s.mux.Handle("/api/commands/", commands)
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/link-events", api.NewLinkEventHandler(s.config.Store))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Controls != nil {
		st := s.config.Controls.Status()
		response["controller_reachable"] = st.Reachable
		response["running"] = st.Running
	}

	writeJSON(w, response)
}

// handleState handles GET requests to /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.Controls.Status())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Close stops the websocket broadcaster.
func (s *Server) Close() {
	if s.state != nil {
		s.state.Close()
	}
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
