package timerview

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"intervaltimer/internal/core/plan"
	"intervaltimer/internal/core/session"
	"intervaltimer/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines timer window visuals.
type Config struct {
	Fullscreen bool
}

// Sprites groups the artwork shown next to the clock.
type Sprites struct {
	Brown  animation.RunSpec
	Black  animation.RunSpec
	Rest   animation.RestSpec
	Trophy fyne.Resource
}

// Callbacks defines the session controls.
type Callbacks struct {
	OnTogglePause func()
	OnSkip        func()
	OnStop        func()
	OnClose       func()
}

// Window shows a running session.
type Window struct {
	app        fyne.App
	window     fyne.Window
	config     Config
	sprites    Sprites
	callbacks  Callbacks
	image      *canvas.Image
	background *canvas.Rectangle
	titleLabel *canvas.Text
	infoLabel  *canvas.Text
	setLabel   *canvas.Text
	clockLabel *canvas.Text
	totalLabel *canvas.Text
	upcoming   *widget.Label
	progress   *widget.ProgressBar
	pauseBtn   *widget.Button
	skipBtn    *widget.Button
	stopBtn    *widget.Button
	engine     *animation.Engine
	cancelCtx  context.CancelFunc
	scene      sceneKey
	remaining  atomic.Int64
}

const (
	windowWidth  = float32(520)
	windowHeight = float32(420)
)

// New creates the timer window. It stays hidden until Show.
func New(app fyne.App, config Config, sprites Sprites, engine *animation.Engine) *Window {
	window := app.NewWindow("Interval Timer")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(colorNeutral)

	image := canvas.NewImageFromResource(nil)
	image.FillMode = canvas.ImageFillContain
	image.SetMinSize(fyne.NewSize(128, 128))

	titleLabel := newText("", 30, true)
	infoLabel := newText("", 16, false)
	setLabel := newText("", 14, false)
	clockLabel := newText("00:00", 72, true)
	totalLabel := newText("", 14, false)

	upcoming := widget.NewLabel("")
	upcoming.Wrapping = fyne.TextWrapWord
	progress := widget.NewProgressBar()

	pauseBtn := widget.NewButton("Pause", nil)
	skipBtn := widget.NewButton("Skip", nil)
	stopBtn := widget.NewButton("Stop", nil)

	textColumn := container.NewVBox(titleLabel, infoLabel, setLabel, clockLabel, totalLabel)
	header := container.NewHBox(textColumn, layout.NewSpacer(), image)
	buttons := container.NewHBox(layout.NewSpacer(), pauseBtn, skipBtn, stopBtn, layout.NewSpacer())
	body := container.NewBorder(header, container.NewVBox(progress, buttons), nil, nil, upcoming)
	root := container.NewStack(background, container.NewPadded(body))
	window.SetContent(root)

	view := &Window{
		app:        app,
		window:     window,
		config:     config,
		sprites:    sprites,
		image:      image,
		background: background,
		titleLabel: titleLabel,
		infoLabel:  infoLabel,
		setLabel:   setLabel,
		clockLabel: clockLabel,
		totalLabel: totalLabel,
		upcoming:   upcoming,
		progress:   progress,
		pauseBtn:   pauseBtn,
		skipBtn:    skipBtn,
		stopBtn:    stopBtn,
		engine:     engine,
		scene:      sceneKey{scene: sceneNone, segment: -2},
	}

	pauseBtn.OnTapped = func() { view.call(view.callbacks.OnTogglePause) }
	skipBtn.OnTapped = func() { view.call(view.callbacks.OnSkip) }
	stopBtn.OnTapped = func() { view.call(view.callbacks.OnStop) }
	window.SetCloseIntercept(func() {
		view.Hide()
		view.call(view.callbacks.OnClose)
	})

	view.SetEngine(engine)
	view.applyWindowMode()
	return view
}

// SetCallbacks replaces the control handlers.
func (view *Window) SetCallbacks(callbacks Callbacks) {
	view.callbacks = callbacks
}

// SetEngine attaches the animation engine.
func (view *Window) SetEngine(engine *animation.Engine) {
	view.engine = engine
	if engine != nil {
		engine.SetRemainingSource(view.currentRemaining)
	}
}

// Show brings the window to the front.
func (view *Window) Show() {
	view.applyWindowMode()
	view.window.Show()
	view.window.RequestFocus()
}

// Hide closes the window and stops animations.
func (view *Window) Hide() {
	view.stopEngine()
	view.scene = sceneKey{scene: sceneNone, segment: -2}
	if view.config.Fullscreen {
		view.window.SetFullScreen(false)
	}
	view.window.Hide()
}

// UpdateConfig updates window visuals.
func (view *Window) UpdateConfig(config Config) {
	view.config = config
	view.applyWindowMode()
}

// Apply renders the snapshot on the UI goroutine.
func (view *Window) Apply(update session.Update) {
	fyne.Do(func() {
		view.Render(update)
	})
}

// Render draws the snapshot. It must run on the UI goroutine.
func (view *Window) Render(update session.Update) {
	view.remaining.Store(int64(update.Remaining))
	view.background.FillColor = backgroundFor(update)
	view.background.Refresh()

	view.setText(view.titleLabel, update.Title())
	view.setText(view.infoLabel, update.Info())
	view.setText(view.setLabel, setLine(update))
	view.clockLabel.Color = clockColorFor(update)
	view.setText(view.clockLabel, update.ClockText())
	view.setText(view.totalLabel, update.TotalRemainingText())

	view.upcoming.SetText(upcomingText(update.Upcoming))
	view.progress.SetValue(update.OverallProgress)

	view.pauseBtn.SetText(pauseLabelFor(update.Phase))
	setEnabled(view.pauseBtn, update.Phase == session.PhaseRunning || update.Phase == session.PhasePaused)
	setEnabled(view.skipBtn, update.Phase == session.PhaseRunning || update.Phase == session.PhaseLeadIn)
	setEnabled(view.stopBtn, !update.Phase.Finished())

	view.applyScene(update)
}

// SetSprite updates the sprite image.
func (view *Window) SetSprite(resource fyne.Resource) {
	fyne.Do(func() {
		view.image.Resource = resource
		view.image.Refresh()
	})
}

func (view *Window) applyScene(update session.Update) {
	key := sceneFor(update)
	if key == view.scene || view.engine == nil {
		view.scene = key
		return
	}
	view.scene = key

	switch key.scene {
	case sceneRun:
		spec := view.sprites.Brown
		if key.runner == session.RunnerBlack {
			spec = view.sprites.Black
		}
		view.engine.StartRun(view.newContext(), spec)
	case sceneRest:
		view.engine.StartRest(view.newContext(), view.sprites.Rest)
	case sceneTrophy:
		view.stopEngine()
		view.engine.ShowStill(view.sprites.Trophy)
	default:
		view.stopEngine()
		view.engine.Stop()
	}
}

func (view *Window) newContext() context.Context {
	view.stopEngine()
	ctx, cancel := context.WithCancel(context.Background())
	view.cancelCtx = cancel
	return ctx
}

func (view *Window) stopEngine() {
	if view.cancelCtx != nil {
		view.cancelCtx()
		view.cancelCtx = nil
	}
}

func (view *Window) currentRemaining() time.Duration {
	return time.Duration(view.remaining.Load())
}

func (view *Window) call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (view *Window) setText(text *canvas.Text, value string) {
	text.Text = value
	text.Refresh()
}

func (view *Window) applyWindowMode() {
	if view.config.Fullscreen {
		view.window.SetFullScreen(true)
		return
	}
	view.window.SetFullScreen(false)
	view.window.Resize(fyne.NewSize(windowWidth, windowHeight))
	view.window.CenterOnScreen()
}

func newText(value string, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, colorText)
	text.Alignment = fyne.TextAlignLeading
	text.TextStyle = fyne.TextStyle{Bold: bold}
	text.TextSize = size
	return text
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

func setLine(update session.Update) string {
	if update.Phase.Finished() || update.SegmentCount == 0 {
		return ""
	}
	return update.Segment.SetName
}

func upcomingText(summaries []plan.SetSummary) string {
	if len(summaries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(summaries)+1)
	lines = append(lines, "Up next")
	for _, summary := range summaries {
		lines = append(lines, fmt.Sprintf("%s  ×%d  %s",
			summary.Name, summary.Repeats, session.FormatClock(summary.TotalDuration)))
	}
	return strings.Join(lines, "\n")
}
