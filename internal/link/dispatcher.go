package link

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/log"
)

// Dispatcher defaults.
const (
	DefaultMaxAttempts = 2
	DefaultRetryPause  = 100 * time.Millisecond
)

// Outcome is the final result of a delivery.
type Outcome string

// Delivery outcomes.
const (
	OutcomeDelivered   Outcome = "delivered"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeStatus      Outcome = "status"
	OutcomeFailed      Outcome = "failed"
)

func outcomeOf(k FailureKind) Outcome {
	switch k {
	case FailureNone:
		return OutcomeDelivered
	case FailureTimeout:
		return OutcomeTimeout
	case FailureUnreachable:
		return OutcomeUnreachable
	case FailureStatus:
		return OutcomeStatus
	default:
		return OutcomeFailed
	}
}

// Delivery describes one dispatched command after it finished.
type Delivery struct {
	ID         string
	Path       string
	Attempts   int
	Outcome    Outcome
	Err        error
	Reply      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder receives every finished delivery. It is called from dispatch
// goroutines and must be safe for concurrent use.
type Recorder interface {
	RecordDelivery(d Delivery)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(d Delivery)

// RecordDelivery calls f(d).
func (f RecorderFunc) RecordDelivery(d Delivery) { f(d) }

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// MaxAttempts is the total number of attempts for a timed-out command.
	MaxAttempts int
	RetryPause  time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
	Recorder    Recorder
}

// Dispatcher sends controller commands without blocking the caller.
// Each Dispatch runs on its own goroutine; failures are logged and
// recorded, never returned.
type Dispatcher struct {
	client   *Client
	attempts int
	pause    time.Duration
	clock    clock.Clock
	logger   *slog.Logger
	recorder Recorder

	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight int
	closed   bool
}

// NewDispatcher creates a Dispatcher sending through client.
func NewDispatcher(client *Client, cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryPause < 0 {
		cfg.RetryPause = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.With("component", "dispatcher")
	}

	return &Dispatcher{
		client:   client,
		attempts: cfg.MaxAttempts,
		pause:    cfg.RetryPause,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
}

// Dispatch sends the command at path in the background and returns
// immediately. After Close the command is dropped and logged.
func (d *Dispatcher) Dispatch(path string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, command dropped", "path", path)
		return
	}
	d.inFlight++
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			d.inFlight--
			d.mu.Unlock()
		}()
		d.Deliver(context.Background(), path)
	}()
}

// Deliver sends the command at path synchronously, retrying timeouts up
// to the configured number of attempts. Unreachable hosts, non-2xx
// replies and other errors end the delivery at once.
func (d *Dispatcher) Deliver(ctx context.Context, path string) Delivery {
	del := Delivery{
		ID:        uuid.New().String(),
		Path:      path,
		StartedAt: d.clock.Now(),
	}

	var kind FailureKind
	for attempt := 1; attempt <= d.attempts; attempt++ {
		del.Attempts = attempt

		resp, err := d.client.Get(ctx, path)
		del.Err = err
		if resp != nil {
			del.Reply = resp.Body
		}
		kind = Classify(err)

		if kind != FailureTimeout || ctx.Err() != nil {
			break
		}
		if attempt < d.attempts {
			d.logger.Debug("command timed out, retrying", "path", path, "attempt", attempt)
			d.clock.Sleep(d.pause)
		}
	}

	del.Outcome = outcomeOf(kind)
	del.FinishedAt = d.clock.Now()

	switch del.Outcome {
	case OutcomeDelivered:
		d.logger.Debug("command delivered", "path", path, "attempts", del.Attempts)
	case OutcomeTimeout:
		d.logger.Warn("command timed out", "path", path, "attempts", del.Attempts)
	case OutcomeUnreachable:
		d.logger.Error("controller unreachable", "path", path, "error", del.Err)
	default:
		d.logger.Error("command failed", "path", path, "outcome", string(del.Outcome), "error", del.Err)
	}

	if d.recorder != nil {
		d.recorder.RecordDelivery(del)
	}
	return del
}

// InFlight returns the number of dispatches not yet finished.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Close stops accepting new commands and waits up to timeout for the
// in-flight ones, reporting whether they all finished. It is safe to call
// more than once.
func (d *Dispatcher) Close(timeout time.Duration) bool {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Wait(timeout)
}

// Closed reports whether Close has been called.
func (d *Dispatcher) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Wait blocks until every dispatched command has finished or timeout
// elapses. It reports whether all commands finished. A non-positive
// timeout waits indefinitely. Dispatch must not race with Wait unless the
// dispatcher has been closed first.
func (d *Dispatcher) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
