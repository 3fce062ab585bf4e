package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"intervaltimer/internal/audio"
	"intervaltimer/internal/core/session"
	xlog "intervaltimer/internal/log"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/storage"
	"intervaltimer/internal/ui/animation"
	"intervaltimer/internal/ui/preferences"
	"intervaltimer/internal/ui/timerview"
	"intervaltimer/internal/ui/tray"
	"intervaltimer/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newGUICmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Run the desktop app in the system tray",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(env)
		},
	}
}

// desktopController connects the tray, the windows and the active session.
type desktopController struct {
	env     *environment
	app     fyne.App
	desktop desktop.App
	logger  zerolog.Logger
	store   *storage.SchemaStore
	history *storage.History

	timer  *timerview.Window
	tray   *tray.Manager
	prefs  *preferences.Window
	active fyne.Resource
	paused fyne.Resource

	mu       sync.Mutex
	settings preferences.Settings
	current  *session.Session
	player   audio.Player
}

func runGUI(env *environment) error {
	logger := xlog.WithComponent("gui")

	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if signalErr := platform.SignalRunningInstance(appName); signalErr != nil {
			return fmt.Errorf("signal running instance: %w", signalErr)
		}
		logger.Info().Str("event", "gui.already_running").Msg("brought running instance to front")
		return nil
	}
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	history, err := env.openHistory()
	if err != nil {
		return err
	}
	defer func() {
		_ = history.Close()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustLogo("logo-active.svg"))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform, use the run command")
	}

	sprites, err := loadSprites()
	if err != nil {
		return err
	}

	controller := &desktopController{
		env:      env,
		app:      fyneApp,
		desktop:  desktopApp,
		logger:   logger,
		store:    env.schemaStore(),
		history:  history,
		settings: env.settings(),
		active:   resources.MustLogo("logo-active.svg"),
		paused:   resources.MustLogo("logo-paused.svg"),
	}
	controller.build(sprites)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := storage.NewFileWatcher(controller.store.Path(), controller.reloadSchemas)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn().Err(err).Str("event", "schemas.watch_failed").Msg("schema file changes will not be picked up")
	}
	defer watcher.Stop()

	go guard.Serve(func() {
		fyne.Do(controller.showMain)
	})

	controller.reloadSchemas()
	logger.Info().Str("event", "gui.start").Str("data_dir", env.dataDir).Msg("desktop app started")
	fyneApp.Run()

	controller.shutdown()
	logger.Info().Str("event", "gui.stop").Msg("desktop app stopped")
	return nil
}

func loadSprites() (timerview.Sprites, error) {
	brown, err := resources.RunnerFrames("brown")
	if err != nil {
		return timerview.Sprites{}, err
	}
	black, err := resources.RunnerFrames("black")
	if err != nil {
		return timerview.Sprites{}, err
	}
	return timerview.Sprites{
		Brown: animation.RunSpec{Frames: brown},
		Black: animation.RunSpec{Frames: black},
		Rest: animation.RestSpec{
			Open:   resources.MustSprite("rest-open.svg"),
			Closed: resources.MustSprite("rest-closed.svg"),
		},
		Trophy: resources.MustSprite("trophy.svg"),
	}, nil
}

func (controller *desktopController) build(sprites timerview.Sprites) {
	trayWindow := controller.app.NewWindow("Interval Timer")
	trayWindow.SetContent(widget.NewLabel("Interval Timer is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	controller.desktop.SetSystemTrayWindow(trayWindow)

	controller.timer = timerview.New(controller.app, timerview.Config{
		Fullscreen: controller.settings.Fullscreen,
	}, sprites, nil)
	controller.timer.SetEngine(animation.New(animation.DefaultConfig(), controller.timer.SetSprite))
	controller.timer.SetCallbacks(timerview.Callbacks{
		OnTogglePause: controller.togglePause,
		OnSkip:        controller.skip,
		OnStop:        controller.stop,
		OnClose:       controller.stop,
	})

	controller.prefs = preferences.New(controller.app, controller.settings, controller.saveSettings)

	controller.tray = tray.New(controller.desktop, tray.Callbacks{
		OnStartSchema: controller.startSchema,
		OnShowTimer:   controller.timer.Show,
		OnPreferences: controller.prefs.Show,
		OnTogglePause: controller.togglePause,
		OnSkip:        controller.skip,
		OnStop:        controller.stop,
		OnQuit:        controller.app.Quit,
	})
	controller.desktop.SetSystemTrayIcon(controller.active)
}

func (controller *desktopController) reloadSchemas() {
	schemas, err := controller.store.List()
	if err != nil {
		controller.logger.Error().Err(err).Str("event", "schemas.reload_failed").Msg("failed to load schemas")
		return
	}
	controller.logger.Info().Str("event", "schemas.reload").Int("count", len(schemas)).Msg("schemas loaded")
	fyne.Do(func() {
		controller.tray.SetSchemas(schemas)
	})
}

func (controller *desktopController) saveSettings(settings preferences.Settings) {
	if err := storage.SaveSettings(controller.env.dataDir, settings); err != nil {
		controller.logger.Error().Err(err).Str("event", "settings.save_failed").Msg("failed to save settings")
	}

	controller.mu.Lock()
	controller.settings = settings
	controller.mu.Unlock()

	controller.timer.UpdateConfig(timerview.Config{Fullscreen: settings.Fullscreen})
	controller.logger.Info().Str("event", "settings.saved").Msg("settings updated")
}

func (controller *desktopController) startSchema(schemaID string) {
	schema, err := controller.store.Get(schemaID)
	if err != nil {
		controller.logger.Error().Err(err).Str("event", "session.load_failed").Msg("failed to load schema")
		return
	}

	controller.mu.Lock()
	controller.closeSessionLocked()
	settings := controller.settings
	player := newPlayer(settings, controller.logger)
	current := session.New(schema, session.Options{
		Config:   settings.SessionConfig(),
		Player:   player,
		WakeLock: platform.NewWakeLock(appName),
		History:  controller.history,
	})
	controller.current = current
	controller.player = player
	controller.mu.Unlock()

	go controller.forward(current)
	controller.timer.Render(current.Snapshot())
	controller.timer.Show()
	current.Start()
}

// forward mirrors session snapshots into the windows until the session is
// closed.
func (controller *desktopController) forward(current *session.Session) {
	for update := range current.Updates() {
		controller.timer.Apply(update)
		fyne.Do(func() {
			controller.tray.Apply(update)
			if update.Phase == session.PhasePaused {
				controller.desktop.SetSystemTrayIcon(controller.paused)
			} else {
				controller.desktop.SetSystemTrayIcon(controller.active)
			}
		})
	}
}

func (controller *desktopController) withSession(action func(*session.Session)) {
	controller.mu.Lock()
	current := controller.current
	controller.mu.Unlock()
	if current != nil {
		action(current)
	}
}

func (controller *desktopController) togglePause() {
	controller.withSession((*session.Session).TogglePause)
}

func (controller *desktopController) skip() {
	controller.withSession((*session.Session).Skip)
}

func (controller *desktopController) stop() {
	controller.withSession((*session.Session).Stop)
}

func (controller *desktopController) showMain() {
	controller.mu.Lock()
	current := controller.current
	controller.mu.Unlock()
	if current != nil && !current.Snapshot().Phase.Finished() {
		controller.timer.Show()
		return
	}
	controller.prefs.Show()
}

func (controller *desktopController) shutdown() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.closeSessionLocked()
}

func (controller *desktopController) closeSessionLocked() {
	if controller.current != nil {
		controller.current.Close()
		controller.current = nil
	}
	if controller.player != nil {
		_ = controller.player.Close()
		controller.player = nil
	}
}

// newPlayer picks the platform player, or a silent one when sound is off or
// no player is installed.
func newPlayer(settings preferences.Settings, logger zerolog.Logger) audio.Player {
	if !settings.SoundEnabled {
		return audio.Mute{}
	}
	player, err := audio.NewPlayer(settings.Volume)
	if err != nil {
		logger.Warn().Err(err).Str("event", "audio.unavailable").Msg("sound cues disabled")
		return audio.Mute{}
	}
	return player
}
