package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	onCancel   func()
	leadIn     *widget.Entry
	frameRate  *widget.Entry
	sound      *widget.Check
	volume     *widget.Slider
	keepAwake  *widget.Check
	fullscreen *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Interval Timer Settings")

	leadIn := widget.NewEntry()
	frameRate := widget.NewEntry()

	sound := widget.NewCheck("Play sound cues", nil)
	volume := widget.NewSlider(0, 1)
	volume.Step = 0.05
	keepAwake := widget.NewCheck("Keep screen awake during training", nil)
	fullscreen := widget.NewCheck("Fullscreen timer", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Lead-in"), leadIn, widget.NewLabel("sec")),
		keepAwake,
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sound,
		widget.NewLabel("Volume"),
		volume,
		widget.NewLabelWithStyle("Display", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fullscreen,
		container.NewHBox(widget.NewLabel("Refresh rate"), frameRate, widget.NewLabel("fps")),
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 420))

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		leadIn:     leadIn,
		frameRate:  frameRate,
		sound:      sound,
		volume:     volume,
		keepAwake:  keepAwake,
		fullscreen: fullscreen,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.leadIn.SetText(fmt.Sprintf("%d", int(settings.LeadIn.Seconds())))
	prefs.frameRate.SetText(fmt.Sprintf("%d", settings.FrameRate))
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.volume.Value = settings.Volume
	prefs.volume.Refresh()
	prefs.keepAwake.SetChecked(settings.KeepAwake)
	prefs.fullscreen.SetChecked(settings.Fullscreen)
}

// Settings returns the values last saved or loaded into the window.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if seconds, ok := parseIntInRange(prefs.leadIn.Text, MinLeadIn, int(MaxLeadIn/time.Second)); ok {
		settings.LeadIn = time.Duration(seconds) * time.Second
	}
	if rate, ok := parseIntInRange(prefs.frameRate.Text, MinFrameRate, MaxFrameRate); ok {
		settings.FrameRate = rate
	}
	settings.SoundEnabled = prefs.sound.Checked
	settings.Volume = prefs.volume.Value
	settings.KeepAwake = prefs.keepAwake.Checked
	settings.Fullscreen = prefs.fullscreen.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parseIntInRange(value string, minValue, maxValue int) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < minValue || parsed > maxValue {
		return 0, false
	}
	return parsed, true
}
