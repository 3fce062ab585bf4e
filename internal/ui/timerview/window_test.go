package timerview

import (
	"testing"
	"time"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/plan"
	"intervaltimer/internal/core/session"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func runningUpdate(stepType model.StepType) session.Update {
	return session.Update{
		Phase:      session.PhaseRunning,
		SchemaName: "Tabata",
		Segment: model.Segment{
			Name: "Sprint", Type: stepType, SetName: "Main",
			Round: 2, TotalRounds: 8, StepIndex: 1, TotalSteps: 2,
		},
		SegmentIndex:    2,
		SegmentCount:    16,
		Remaining:       2500 * time.Millisecond,
		OverallProgress: 0.25,
		Total:           4 * time.Minute,
		TotalRemaining:  3 * time.Minute,
		Runner:          session.RunnerBlack,
		Upcoming: []plan.SetSummary{
			{Index: 0, Name: "Main", Repeats: 8, TotalDuration: 4 * time.Minute},
		},
	}
}

func TestSceneFor(t *testing.T) {
	update := runningUpdate(model.StepActive)
	assert.Equal(t, sceneRun, sceneFor(update).scene)

	update.Segment.Type = model.StepPause
	assert.Equal(t, sceneRest, sceneFor(update).scene)

	update.Phase = session.PhasePaused
	assert.Equal(t, sceneFreeze, sceneFor(update).scene)

	update.Phase = session.PhaseLeadIn
	assert.Equal(t, sceneRest, sceneFor(update).scene)

	update.Phase = session.PhaseComplete
	assert.Equal(t, sceneTrophy, sceneFor(update).scene)

	update.Phase = session.PhaseStopped
	assert.Equal(t, sceneNone, sceneFor(update).scene)
}

func TestSceneKeyChangesWithSegment(t *testing.T) {
	first := runningUpdate(model.StepActive)
	next := first
	next.Remaining = time.Second
	assert.Equal(t, sceneFor(first), sceneFor(next))

	next.SegmentIndex++
	assert.NotEqual(t, sceneFor(first), sceneFor(next))
}

func TestColours(t *testing.T) {
	assert.Equal(t, colorActive, backgroundFor(runningUpdate(model.StepActive)))
	assert.Equal(t, colorPause, backgroundFor(runningUpdate(model.StepPause)))
	assert.Equal(t, colorWarning, clockColorFor(runningUpdate(model.StepActive)))

	calm := runningUpdate(model.StepActive)
	calm.Remaining = 10 * time.Second
	assert.Equal(t, colorText, clockColorFor(calm))
}

func TestRenderRunningUpdate(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	view := New(app, Config{}, Sprites{}, nil)
	view.Render(runningUpdate(model.StepActive))

	assert.Equal(t, "Sprint", view.titleLabel.Text)
	assert.Equal(t, "Round 2/8 — Step 1/2", view.infoLabel.Text)
	assert.Equal(t, "Main", view.setLabel.Text)
	assert.Equal(t, "00:03", view.clockLabel.Text)
	assert.Equal(t, "Total remaining: 03:00", view.totalLabel.Text)
	assert.Equal(t, 0.25, view.progress.Value)
	assert.Contains(t, view.upcoming.Text, "Main  ×8  04:00")
	assert.False(t, view.pauseBtn.Disabled())
	assert.Equal(t, "Pause", view.pauseBtn.Text)
}

func TestRenderPausedAndComplete(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	view := New(app, Config{}, Sprites{}, nil)
	update := runningUpdate(model.StepPause)
	update.Phase = session.PhasePaused
	view.Render(update)
	assert.Equal(t, "Resume", view.pauseBtn.Text)
	assert.True(t, view.skipBtn.Disabled())

	update.Phase = session.PhaseComplete
	update.Upcoming = nil
	view.Render(update)
	assert.Equal(t, "Done!", view.titleLabel.Text)
	assert.Equal(t, "Tabata — 04:00 total", view.infoLabel.Text)
	assert.True(t, view.stopBtn.Disabled())
	assert.Empty(t, view.upcoming.Text)
}

func TestControlsInvokeCallbacks(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	view := New(app, Config{}, Sprites{}, nil)
	var calls []string
	view.SetCallbacks(Callbacks{
		OnTogglePause: func() { calls = append(calls, "pause") },
		OnSkip:        func() { calls = append(calls, "skip") },
		OnStop:        func() { calls = append(calls, "stop") },
	})
	view.Render(runningUpdate(model.StepActive))

	test.Tap(view.pauseBtn)
	test.Tap(view.skipBtn)
	test.Tap(view.stopBtn)
	assert.Equal(t, []string{"pause", "skip", "stop"}, calls)
}
