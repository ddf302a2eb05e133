// Package app wires the camera, hand detector and controller link into the
// per-frame control loop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/link"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// ErrAlreadyRunning is returned by Run when the loop is already active.
	ErrAlreadyRunning = errors.New("pipeline already running")
	// ErrStopped is returned by Run once a previous Run has shut down.
	ErrStopped = errors.New("pipeline stopped")
)

// Options holds the collaborators of an App. Nil fields get production
// implementations built from Config.
type Options struct {
	Config   config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Doer     link.Doer
	Store    *store.Store
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Status is a point-in-time view of the running pipeline.
type Status struct {
	Enabled       bool             `json:"enabled"`
	Running       bool             `json:"running"`
	Reachable     bool             `json:"reachable"`
	LastCheck     time.Time        `json:"last_check"`
	ControllerURL string           `json:"controller_url"`
	FPS           float64          `json:"fps"`
	Frames        uint64           `json:"frames"`
	HandFrames    uint64           `json:"hand_frames"`
	InFlight      int              `json:"in_flight"`
	Gesture       gesture.Snapshot `json:"gesture"`
}

// App owns the control loop and everything it drives.
type App struct {
	cfg        config.Config
	camera     capture.Camera
	detector   detector.Detector
	client     *link.Client
	monitor    *link.Monitor
	dispatcher *link.Dispatcher
	controller *gesture.Controller
	store      *store.Store
	clock      clock.Clock
	logger     *slog.Logger

	mu         sync.RWMutex
	enabled    bool
	running    bool
	fps        float64
	frames     uint64
	handFrames uint64
}

// New creates an App. The configuration is validated first.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = log.With("component", "app")
	}

	a := &App{
		cfg:      cfg,
		camera:   opts.Camera,
		detector: opts.Detector,
		store:    opts.Store,
		clock:    opts.Clock,
		logger:   opts.Logger,
		enabled:  true,
	}

	if a.camera == nil {
		a.camera = capture.NewCameraWithOptions(capture.Options{
			DeviceID: cfg.CameraID,
			Width:    cfg.FrameWidth,
			Height:   cfg.FrameHeight,
			FPS:      cfg.FPS,
		})
	}

	// Try MediaPipe first, fall back to a detector that never sees a hand
	if a.detector == nil {
		dcfg := detector.DefaultConfig()
		dcfg.MinConfidence = cfg.MinDetectionConf
		dcfg.MinTrackingConf = cfg.MinTrackingConf
		if mp, err := detector.NewMediaPipeDetector(dcfg); err == nil {
			a.detector = mp
			a.logger.Info("using MediaPipe hand detection")
		} else {
			a.logger.Warn("MediaPipe not available, hand detection disabled", "error", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.client = link.NewClient(cfg.ControllerURL, opts.Doer, cfg.RequestTimeout)

	monitorCfg := link.MonitorConfig{
		Interval: cfg.HealthCheckInterval,
		Clock:    opts.Clock,
	}
	dispatchCfg := link.DispatcherConfig{
		MaxAttempts: cfg.MaxRetries,
		RetryPause:  cfg.RetryPause,
		Clock:       opts.Clock,
	}
	if a.store != nil {
		monitorCfg.OnChange = a.store.LinkEvents().RecordTransition
		dispatchCfg.Recorder = a.store.Commands()
		a.enabled = a.store.Settings().GetBool(store.SettingEnabled, true)
	}

	a.monitor = link.NewMonitor(a.client, monitorCfg)
	a.dispatcher = link.NewDispatcher(a.client, dispatchCfg)
	a.controller = gesture.NewController(a.monitor, a.dispatcher, gesture.Config{
		Window: cfg.DebounceWindow,
		Margin: cfg.VerticalMargin,
		Clock:  opts.Clock,
	})

	return a, nil
}

// SetEnabled pauses or resumes gesture processing. The choice is persisted
// when a store is configured.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if !changed {
		return
	}
	a.logger.Info("gesture processing toggled", "enabled", enabled)
	if a.store != nil {
		if err := a.store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			a.logger.Warn("failed to persist enabled setting", "error", err)
		}
	}
}

// IsEnabled returns whether gesture processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Status returns the current pipeline status. Safe from any goroutine.
func (a *App) Status() Status {
	a.mu.RLock()
	s := Status{
		Enabled:    a.enabled,
		Running:    a.running,
		FPS:        a.fps,
		Frames:     a.frames,
		HandFrames: a.handFrames,
	}
	a.mu.RUnlock()

	s.Reachable = a.monitor.Reachable()
	s.LastCheck = a.monitor.LastChecked()
	s.ControllerURL = a.client.BaseURL()
	s.InFlight = a.dispatcher.InFlight()
	s.Gesture = a.controller.Snapshot()
	return s
}

// Controller returns the gesture controller.
func (a *App) Controller() *gesture.Controller {
	return a.controller
}

// Monitor returns the controller health monitor.
func (a *App) Monitor() *link.Monitor {
	return a.monitor
}

// Dispatcher returns the command dispatcher.
func (a *App) Dispatcher() *link.Dispatcher {
	return a.dispatcher
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
