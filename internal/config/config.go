// Package config loads runtime configuration for mudra from defaults,
// an optional JSON file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for the gesture-to-command loop.
const (
	DefaultControllerURL       = "http://192.168.4.1"
	DefaultRequestTimeout      = 1 * time.Second
	DefaultMaxRetries          = 2
	DefaultRetryPause          = 100 * time.Millisecond
	DefaultHealthCheckInterval = 5 * time.Second
	DefaultHealthCheckFrames   = 150
	DefaultDebounceWindow      = 3
	DefaultVerticalMargin      = 0.02
	DefaultShutdownGrace       = 2 * time.Second
)

// maxFileSize bounds the config file read by Load.
const maxFileSize = 1 * 1024 * 1024

// Config holds all options recognised by the mudra binary.
type Config struct {
	// Controller link
	ControllerURL       string
	RequestTimeout      time.Duration
	MaxRetries          int
	RetryPause          time.Duration
	HealthCheckInterval time.Duration
	HealthCheckFrames   int

	// Classification
	DebounceWindow int
	VerticalMargin float64

	// Capture
	CameraID    int
	FrameWidth  int
	FrameHeight int
	FPS         int
	Mirror      bool

	// Pose estimator
	MinDetectionConf float64
	MinTrackingConf  float64

	// Process
	DBPath        string
	ListenAddr    string
	Tray          bool
	LogLevel      string
	ShutdownGrace time.Duration
}

// Default returns a Config populated with the stock values.
func Default() Config {
	return Config{
		ControllerURL:       DefaultControllerURL,
		RequestTimeout:      DefaultRequestTimeout,
		MaxRetries:          DefaultMaxRetries,
		RetryPause:          DefaultRetryPause,
		HealthCheckInterval: DefaultHealthCheckInterval,
		HealthCheckFrames:   DefaultHealthCheckFrames,
		DebounceWindow:      DefaultDebounceWindow,
		VerticalMargin:      DefaultVerticalMargin,
		CameraID:            0,
		FrameWidth:          640,
		FrameHeight:         480,
		FPS:                 30,
		Mirror:              true,
		MinDetectionConf:    0.7,
		MinTrackingConf:     0.6,
		ListenAddr:          ":8080",
		LogLevel:            "info",
		ShutdownGrace:       DefaultShutdownGrace,
	}
}

// fileConfig is the on-disk JSON schema. Pointer fields distinguish
// "omitted" from zero so partial files keep defaults.
type fileConfig struct {
	ControllerURL       *string  `json:"controller_url,omitempty"`
	RequestTimeout      *string  `json:"request_timeout,omitempty"` // duration string like "1s"
	MaxRetries          *int     `json:"max_retries,omitempty"`
	RetryPause          *string  `json:"retry_pause,omitempty"`
	HealthCheckInterval *string  `json:"health_check_interval,omitempty"`
	HealthCheckFrames   *int     `json:"health_check_frames,omitempty"`
	DebounceWindow      *int     `json:"debounce_window,omitempty"`
	VerticalMargin      *float64 `json:"vertical_margin,omitempty"`
	CameraID            *int     `json:"camera_id,omitempty"`
	FrameWidth          *int     `json:"frame_width,omitempty"`
	FrameHeight         *int     `json:"frame_height,omitempty"`
	FPS                 *int     `json:"fps,omitempty"`
	Mirror              *bool    `json:"mirror,omitempty"`
	MinDetectionConf    *float64 `json:"min_detection_confidence,omitempty"`
	MinTrackingConf     *float64 `json:"min_tracking_confidence,omitempty"`
	DBPath              *string  `json:"db_path,omitempty"`
	ListenAddr          *string  `json:"listen_addr,omitempty"`
	Tray                *bool    `json:"tray,omitempty"`
	LogLevel            *string  `json:"log_level,omitempty"`
	ShutdownGrace       *string  `json:"shutdown_grace,omitempty"`
}

// Load reads a JSON config file on top of Default and validates the result.
// The file must have a .json extension and be under 1MB.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := fc.apply(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.ControllerURL, fc.ControllerURL)
	setInt(&cfg.MaxRetries, fc.MaxRetries)
	setInt(&cfg.HealthCheckFrames, fc.HealthCheckFrames)
	setInt(&cfg.DebounceWindow, fc.DebounceWindow)
	setFloat(&cfg.VerticalMargin, fc.VerticalMargin)
	setInt(&cfg.CameraID, fc.CameraID)
	setInt(&cfg.FrameWidth, fc.FrameWidth)
	setInt(&cfg.FrameHeight, fc.FrameHeight)
	setInt(&cfg.FPS, fc.FPS)
	setBool(&cfg.Mirror, fc.Mirror)
	setFloat(&cfg.MinDetectionConf, fc.MinDetectionConf)
	setFloat(&cfg.MinTrackingConf, fc.MinTrackingConf)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setBool(&cfg.Tray, fc.Tray)
	setString(&cfg.LogLevel, fc.LogLevel)

	durations := []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"retry_pause", fc.RetryPause, &cfg.RetryPause},
		{"health_check_interval", fc.HealthCheckInterval, &cfg.HealthCheckInterval},
		{"shutdown_grace", fc.ShutdownGrace, &cfg.ShutdownGrace},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, *d.src, err)
		}
		*d.dst = v
	}
	return nil
}

// Environment variable names read by ApplyEnv.
const (
	EnvControllerURL = "MUDRA_CONTROLLER_URL"
	EnvCameraID      = "MUDRA_CAMERA_ID"
	EnvDBPath        = "MUDRA_DB_PATH"
	EnvListenAddr    = "MUDRA_LISTEN_ADDR"
	EnvLogLevel      = "MUDRA_LOG_LEVEL"
)

// ApplyEnv overrides fields from MUDRA_* environment variables when set.
func (c *Config) ApplyEnv() error {
	c.ControllerURL = getEnv(EnvControllerURL, c.ControllerURL)
	c.DBPath = getEnv(EnvDBPath, c.DBPath)
	c.ListenAddr = getEnv(EnvListenAddr, c.ListenAddr)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)

	if v := os.Getenv(EnvCameraID); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCameraID, err)
		}
		c.CameraID = id
	}
	return nil
}

// Validate checks that every option is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.ControllerURL)
	if err != nil {
		return fmt.Errorf("controller url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("controller url must be http or https, got %q", c.ControllerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("controller url has no host: %q", c.ControllerURL)
	}

	var errs []error
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("max retries must be at least 1"))
	}
	if c.RetryPause < 0 {
		errs = append(errs, errors.New("retry pause must not be negative"))
	}
	if c.HealthCheckInterval <= 0 {
		errs = append(errs, errors.New("health check interval must be positive"))
	}
	if c.HealthCheckFrames < 1 {
		errs = append(errs, errors.New("health check frames must be at least 1"))
	}
	if c.DebounceWindow < 1 {
		errs = append(errs, errors.New("debounce window must be at least 1"))
	}
	if c.VerticalMargin < 0 || c.VerticalMargin >= 1 {
		errs = append(errs, fmt.Errorf("vertical margin must be in [0, 1), got %v", c.VerticalMargin))
	}
	if c.FPS <= 0 {
		errs = append(errs, errors.New("fps must be positive"))
	}
	if c.MinDetectionConf < 0 || c.MinDetectionConf > 1 {
		errs = append(errs, errors.New("min detection confidence must be in [0, 1]"))
	}
	if c.MinTrackingConf < 0 || c.MinTrackingConf > 1 {
		errs = append(errs, errors.New("min tracking confidence must be in [0, 1]"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
