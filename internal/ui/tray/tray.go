package tray

import (
	"fmt"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartSchema func(schemaID string)
	OnShowTimer   func()
	OnPreferences func()
	OnTogglePause func()
	OnSkip        func()
	OnStop        func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	showItem    *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	skipItem    *fyne.MenuItem
	stopItem    *fyne.MenuItem
	callbacks   Callbacks
	schemas     []model.Schema
	paused      bool
	running     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks. app may be nil
// when no system tray is available.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "idle",
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start training", nil)
	manager.showItem = fyne.NewMenuItem("Show timer", func() {
		call(manager.callbacks.OnShowTimer)
	})
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		call(manager.callbacks.OnTogglePause)
	})
	manager.skipItem = fyne.NewMenuItem("Skip step", func() {
		call(manager.callbacks.OnSkip)
	})
	manager.stopItem = fyne.NewMenuItem("Stop training", func() {
		call(manager.callbacks.OnStop)
	})

	manager.rebuildStartMenu()
	manager.applyRunning()
	manager.refreshMenu()
	return manager
}

// SetSchemas replaces the "Start training" submenu.
func (manager *Manager) SetSchemas(schemas []model.Schema) {
	manager.schemas = append([]model.Schema(nil), schemas...)
	manager.rebuildStartMenu()
	manager.refreshMenu()
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetPaused updates pause state.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	if paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	manager.refreshStatus()
}

// SetRunning toggles session-related menu items.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if !running {
		manager.paused = false
		manager.pauseItem.Label = "Pause"
	}
	manager.applyRunning()
	manager.refreshStatus()
}

// Apply reflects a session snapshot in the tray.
func (manager *Manager) Apply(update session.Update) {
	switch update.Phase {
	case session.PhaseLeadIn:
		manager.statusLabel = "starting " + update.SchemaName
	case session.PhaseRunning, session.PhasePaused:
		manager.statusLabel = fmt.Sprintf("%s %s", update.Segment.Name, session.FormatClock(update.Remaining))
	case session.PhaseComplete:
		manager.statusLabel = "finished " + update.SchemaName
	default:
		manager.statusLabel = "idle"
	}
	manager.running = !update.Phase.Finished() && update.Phase != session.PhaseReady
	manager.paused = update.Phase == session.PhasePaused
	manager.pauseItem.Label = "Pause"
	if manager.paused {
		manager.pauseItem.Label = "Resume"
	}
	manager.applyRunning()
	manager.refreshStatus()
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("Interval Timer",
		manager.statusItem,
		manager.startItem,
		manager.showItem,
		fyne.NewMenuItemSeparator(),
		manager.pauseItem,
		manager.skipItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			call(manager.callbacks.OnPreferences)
		}),
		fyne.NewMenuItem("Quit", func() {
			call(manager.callbacks.OnQuit)
		}),
	)
}

func (manager *Manager) rebuildStartMenu() {
	items := make([]*fyne.MenuItem, 0, len(manager.schemas))
	for _, schema := range manager.schemas {
		schemaID := schema.ID
		label := fmt.Sprintf("%s (%s)", schema.Name, session.FormatClock(schema.TotalDuration()))
		items = append(items, fyne.NewMenuItem(label, func() {
			if manager.callbacks.OnStartSchema != nil {
				manager.callbacks.OnStartSchema(schemaID)
			}
		}))
	}
	if len(items) == 0 {
		empty := fyne.NewMenuItem("No schemas yet", nil)
		empty.Disabled = true
		items = append(items, empty)
	}
	manager.startItem.ChildMenu = fyne.NewMenu("", items...)
}

func (manager *Manager) applyRunning() {
	manager.startItem.Disabled = manager.running
	manager.pauseItem.Disabled = !manager.running
	manager.skipItem.Disabled = !manager.running
	manager.stopItem.Disabled = !manager.running
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
