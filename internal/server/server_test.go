package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/log"
)

func TestServer_HealthMethods(t *testing.T) {
	s := New(Config{Logger: log.Discard()})

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodPut, http.StatusMethodNotAllowed},
		{http.MethodDelete, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/health", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_HealthWithoutPipeline(t *testing.T) {
	s := New(Config{Logger: log.Discard()})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
	assert.NotContains(t, body, "controller_reachable", "no pipeline attached")
}

func TestServer_UnknownAPIRoute(t *testing.T) {
	s := New(Config{Logger: log.Discard()})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Dashboard(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>mudra</body></html>"
	script := "new WebSocket('/api/ws')"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte(script), 0o644))

	tests := []struct {
		name     string
		static   string
		path     string
		wantCode int
		wantBody string
	}{
		{"index at root", dir, "/", http.StatusOK, index},
		{"asset", dir, "/app.js", http.StatusOK, script},
		{"missing asset", dir, "/missing.css", http.StatusNotFound, ""},
		{"no static dir", "", "/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{StaticDir: tt.static, Logger: log.Discard()})
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s := New(Config{Logger: log.Discard()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_ServeBadAddress(t *testing.T) {
	s := New(Config{Logger: log.Discard()})
	err := s.Serve(context.Background(), "not-an-address")
	assert.Error(t, err)
}

var _ http.Handler = (*Server)(nil)
