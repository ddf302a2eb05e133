package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/capture"
)

// fpsWindow is how often the measured frame rate is updated.
const fpsWindow = time.Second

// Run opens the camera and drives the control loop until ctx is done or a
// frame cannot be read. A read failure is returned as an error. On return
// the camera and detector are closed and in-flight commands are given up
// to ShutdownGrace to finish. The dispatcher is closed by then, so an App
// runs at most once.
//
// Per frame:
//  1. Read and optionally mirror the frame
//  2. Every HealthCheckFrames frames, refresh controller reachability
//  3. Skip detection while disabled
//  4. Detect hands and feed the first one to the gesture controller
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	if a.dispatcher.Closed() {
		a.mu.Unlock()
		return ErrStopped
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.shutdown()

	if a.monitor.Check() {
		a.logger.Info("controller reachable", "url", a.client.BaseURL())
	} else {
		a.logger.Warn("controller not reachable, commands are held until it is", "url", a.client.BaseURL())
	}

	a.logger.Info("detection pipeline started",
		"camera", a.cfg.CameraID,
		"width", a.cfg.FrameWidth,
		"height", a.cfg.FrameHeight,
		"fps", a.camera.FPS(),
	)

	var (
		frame       uint64
		windowStart = a.clock.Now()
		windowCount int
		wasEnabled  = a.IsEnabled()
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := a.step(frame, &wasEnabled); err != nil {
			return err
		}
		frame++

		windowCount++
		if elapsed := a.clock.Since(windowStart); elapsed >= fpsWindow {
			fps := float64(windowCount) / elapsed.Seconds()
			a.mu.Lock()
			a.fps = fps
			a.mu.Unlock()
			windowStart = a.clock.Now()
			windowCount = 0
		}
	}
}

// step processes a single frame.
func (a *App) step(n uint64, wasEnabled *bool) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.logger.Error("failed to read frame", "frame", n, "error", err)
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	a.mu.Lock()
	a.frames++
	a.mu.Unlock()

	if a.cfg.Mirror {
		capture.MirrorInPlace(frame)
	}

	if a.cfg.HealthCheckFrames > 0 && n > 0 && n%uint64(a.cfg.HealthCheckFrames) == 0 {
		a.monitor.IsReachable()
	}

	enabled := a.IsEnabled()
	if enabled && !*wasEnabled {
		a.controller.ResetWindows()
	}
	*wasEnabled = enabled
	if !enabled {
		return nil
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.logger.Warn("hand detection failed", "frame", n, "error", err)
		return nil
	}
	if len(hands) == 0 {
		return nil
	}

	a.mu.Lock()
	a.handFrames++
	a.mu.Unlock()

	a.controller.ProcessHands(hands)
	return nil
}

func (a *App) shutdown() {
	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "error", err)
	}
	if err := a.detector.Close(); err != nil {
		a.logger.Warn("error closing detector", "error", err)
	}

	if !a.dispatcher.Close(a.cfg.ShutdownGrace) {
		a.logger.Warn("shutdown with commands still in flight", "in_flight", a.dispatcher.InFlight())
	}
	a.logger.Info("detection pipeline stopped")
}
