package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://192.168.4.1", cfg.ControllerURL)
	assert.Equal(t, time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryPause)
	assert.Equal(t, 5*time.Second, cfg.HealthCheckInterval)
	assert.Equal(t, 3, cfg.DebounceWindow)
	assert.InDelta(t, 0.02, cfg.VerticalMargin, 1e-12)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "mudra.json", `{
		"controller_url": "http://10.0.0.7",
		"request_timeout": "750ms",
		"debounce_window": 5
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.7", cfg.ControllerURL)
	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.DebounceWindow)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultHealthCheckInterval, cfg.HealthCheckInterval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"wrong extension", "mudra.yaml", `{}`},
		{"bad json", "mudra.json", `{`},
		{"bad duration", "mudra.json", `{"retry_pause": "soon"}`},
		{"invalid value", "mudra.json", `{"max_retries": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvControllerURL, "http://esp32.local")
	t.Setenv(EnvCameraID, "2")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "http://esp32.local", cfg.ControllerURL)
	assert.Equal(t, 2, cfg.CameraID)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv(EnvCameraID, "front")
	assert.Error(t, cfg.ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no scheme", func(c *Config) { c.ControllerURL = "192.168.4.1" }},
		{"no host", func(c *Config) { c.ControllerURL = "http://" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative pause", func(c *Config) { c.RetryPause = -time.Millisecond }},
		{"zero interval", func(c *Config) { c.HealthCheckInterval = 0 }},
		{"zero window", func(c *Config) { c.DebounceWindow = 0 }},
		{"margin too large", func(c *Config) { c.VerticalMargin = 1.5 }},
		{"confidence out of range", func(c *Config) { c.MinDetectionConf = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
