// Package gesture turns per-frame hand observations into edge-triggered
// LED commands.
package gesture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/detector/landmark"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/link"
	"github.com/ayusman/mudra/internal/log"
)

// Health reports whether the LED controller can be reached.
type Health interface {
	IsReachable() bool
}

// Sender delivers a command path without blocking.
type Sender interface {
	Dispatch(path string)
}

// Config configures a Controller.
type Config struct {
	Window int
	// Margin is the vertical classifier margin. Zero is a valid margin;
	// only a negative value selects finger.DefaultMargin.
	Margin float64
	Clock  clock.Clock
	Logger *slog.Logger
}

// Snapshot is a copy of the controller state for observers.
type Snapshot struct {
	Fingers [finger.Count]finger.State `json:"fingers"`
	// AllDown is meaningful only once AllDownKnown is set.
	AllDown      bool      `json:"all_down"`
	AllDownKnown bool      `json:"all_down_known"`
	Cycles       uint64    `json:"cycles"`
	Skipped      uint64    `json:"skipped"`
	Commands     uint64    `json:"commands"`
	LastCommand  string    `json:"last_command,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Controller holds the last stable finger states and diffs each new
// observation against them. Process must be called from a single
// goroutine; Snapshot may be called from any.
type Controller struct {
	classifier finger.Classifier
	debouncer  *finger.Debouncer
	health     Health
	sender     Sender
	clock      clock.Clock
	logger     *slog.Logger

	mu    sync.RWMutex
	state Snapshot
}

// NewController creates a Controller. Commands are sent through sender
// only while health reports the controller reachable.
func NewController(health Health, sender Sender, cfg Config) *Controller {
	if cfg.Window <= 0 {
		cfg.Window = finger.DefaultWindow
	}
	if cfg.Margin < 0 {
		cfg.Margin = finger.DefaultMargin
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.With("component", "gesture")
	}

	return &Controller{
		classifier: finger.NewClassifier(cfg.Margin),
		debouncer:  finger.NewDebouncer(cfg.Window),
		health:     health,
		sender:     sender,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
}

// ProcessHands runs one cycle for the first hand in hands. An empty slice
// is "no hand" and leaves all state untouched.
func (c *Controller) ProcessHands(hands []landmark.Hand) []string {
	if len(hands) == 0 {
		return nil
	}
	return c.Process(&hands[0])
}

// Process runs one observation cycle for a single hand and returns the
// command paths it dispatched. While the controller is unreachable the
// cycle is skipped entirely, debounce windows included.
func (c *Controller) Process(hand *landmark.Hand) []string {
	if !c.health.IsReachable() {
		c.mu.Lock()
		c.state.Skipped++
		c.mu.Unlock()
		return nil
	}

	raw := c.classifier.Classify(hand)

	c.mu.RLock()
	prev := c.state
	c.mu.RUnlock()

	next := c.debouncer.FilterAll(raw, prev.Fingers)

	var sent []string
	for _, f := range finger.All {
		if next[f] == prev.Fingers[f] || !next[f].Known() {
			continue
		}
		sent = append(sent, link.FingerPath(f, next[f] == finger.Up))
		c.logger.Debug("finger changed", "finger", f.String(), "state", next[f].String())
	}

	allDown, known := allDownOf(next)
	if known && allDown && !(prev.AllDownKnown && prev.AllDown) {
		sent = append(sent, link.AllOffPath)
		c.logger.Info("all fingers down")
	}

	for _, p := range sent {
		c.sender.Dispatch(p)
	}

	c.mu.Lock()
	c.state.Fingers = next
	c.state.AllDown = allDown
	c.state.AllDownKnown = known
	c.state.Cycles++
	c.state.Commands += uint64(len(sent))
	if len(sent) > 0 {
		c.state.LastCommand = sent[len(sent)-1]
	}
	c.state.UpdatedAt = c.clock.Now()
	c.mu.Unlock()

	return sent
}

// allDownOf reports whether no finger is up. The answer is unknown until
// at least one finger has a stable state.
func allDownOf(states [finger.Count]finger.State) (allDown, known bool) {
	allDown = true
	for _, s := range states {
		if s.Known() {
			known = true
		}
		if s == finger.Up {
			allDown = false
		}
	}
	return allDown, known
}

// ResetWindows empties the debounce windows but keeps the last stable
// states, so a paused pipeline resumes without resending them.
func (c *Controller) ResetWindows() {
	c.debouncer.Reset()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
