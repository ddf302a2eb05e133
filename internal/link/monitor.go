package link

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/log"
)

// DefaultCheckInterval is the minimum time between two health probes.
const DefaultCheckInterval = 5 * time.Second

// TransitionFunc is called when reachability flips.
type TransitionFunc func(reachable bool, at time.Time)

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Interval time.Duration
	Clock    clock.Clock
	Logger   *slog.Logger
	// OnChange, if set, is called on the probing goroutine after each flip.
	OnChange TransitionFunc
}

// Monitor tracks whether the controller is reachable. A network probe of
// StatusPath is issued at most once per interval; between probes the
// cached flag is returned without I/O.
type Monitor struct {
	client   *Client
	clock    clock.Clock
	logger   *slog.Logger
	onChange TransitionFunc

	mu     sync.Mutex
	cached *clock.Cached[bool]

	// Mirrors of the probe results for lock-free readers.
	reachable atomic.Bool
	checkedAt atomic.Int64
	probes    atomic.Int64
}

// NewMonitor creates a Monitor for the client's controller.
func NewMonitor(client *Client, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCheckInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.With("component", "monitor")
	}

	return &Monitor{
		client:   client,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
		cached:   clock.NewCached[bool](cfg.Clock, cfg.Interval),
	}
}

// IsReachable returns the reachability flag, probing first if the check
// interval has elapsed since the last probe. A probe blocks for at most
// the client timeout.
func (m *Monitor) IsReachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cached.Get(m.probe)
}

// Check probes immediately regardless of the interval.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.probe()
	m.cached.Set(v)
	return v
}

// Reachable returns the last known flag without probing. Safe to call
// from any goroutine.
func (m *Monitor) Reachable() bool {
	return m.reachable.Load()
}

// Probes returns how many network probes have been issued.
func (m *Monitor) Probes() int {
	return int(m.probes.Load())
}

// LastChecked returns when the last probe finished, zero if none has.
func (m *Monitor) LastChecked() time.Time {
	ns := m.checkedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// probe must be called with m.mu held.
func (m *Monitor) probe() bool {
	m.probes.Add(1)

	_, err := m.client.Get(context.Background(), StatusPath)
	now := m.clock.Now()
	reachable := err == nil
	m.checkedAt.Store(now.UnixNano())

	was := m.reachable.Swap(reachable)
	switch {
	case reachable && !was:
		m.logger.Info("controller connection established", "url", m.client.BaseURL())
	case !reachable && was:
		m.logger.Warn("controller connection lost", "url", m.client.BaseURL(), "reason", Classify(err).String(), "error", err)
	default:
		if err != nil {
			m.logger.Debug("controller still unreachable", "error", err)
		}
		return reachable
	}

	if m.onChange != nil {
		m.onChange(reachable, now)
	}
	return reachable
}
