// Package tray provides a system tray indicator for the mudra controller
// link and finger states.
package tray

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/finger"
)

// refreshInterval is how often menu labels are updated from the status.
const refreshInterval = 500 * time.Millisecond

// Tray represents the system tray application.
type Tray struct {
	status     func() app.Status
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLink    *systray.MenuItem
	menuFingers *systray.MenuItem
	menuLast    *systray.MenuItem
	stopCh      chan struct{}
}

// New creates a Tray that polls status for its labels. enabled is the
// initial toggle state.
func New(status func() app.Status, enabled bool) *Tray {
	return &Tray{
		status:  status,
		enabled: enabled,
		stopCh:  make(chan struct{}),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback for the "Open Dashboard" item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture LED control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle gesture processing")
	t.mu.Unlock()
	systray.AddSeparator()

	t.menuLink = systray.AddMenuItem(linkLabel(false), "ESP32 controller connection")
	t.menuLink.Disable()
	t.menuFingers = systray.AddMenuItem(fingersLabel([finger.Count]finger.State{}), "Stable finger states")
	t.menuFingers.Disable()
	t.menuLast = systray.AddMenuItem(lastLabel(""), "Last command sent")
	t.menuLast.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Dashboard...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go t.refresh()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	close(t.stopCh)
}

// refresh copies the pipeline status into the menu labels.
func (t *Tray) refresh() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
		}
		if t.status == nil {
			continue
		}
		st := t.status()
		t.menuLink.SetTitle(linkLabel(st.Reachable))
		t.menuFingers.SetTitle(fingersLabel(st.Gesture.Fingers))
		t.menuLast.SetTitle(lastLabel(st.Gesture.LastCommand))
		if st.Reachable {
			systray.SetTitle("Mudra ●")
		} else {
			systray.SetTitle("Mudra ○")
		}
	}
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleLabel(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func linkLabel(reachable bool) string {
	if reachable {
		return "Controller: connected"
	}
	return "Controller: offline"
}

// fingersLabel renders states as e.g. "T↓ I↑ M↓ R↓ P?".
func fingersLabel(states [finger.Count]finger.State) string {
	parts := make([]string, 0, finger.Count)
	for _, f := range finger.All {
		mark := "?"
		switch states[f] {
		case finger.Up:
			mark = "↑"
		case finger.Down:
			mark = "↓"
		}
		parts = append(parts, fmt.Sprintf("%c%s", strings.ToUpper(f.String())[0], mark))
	}
	return strings.Join(parts, " ")
}

func lastLabel(cmd string) string {
	if cmd == "" {
		return "Last: none"
	}
	return "Last: " + strings.TrimPrefix(cmd, "/led/")
}
