package terminal

import (
	"strings"
	"testing"
	"time"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeControls struct {
	calls []string
}

func (controls *fakeControls) Start()       { controls.calls = append(controls.calls, "start") }
func (controls *fakeControls) TogglePause() { controls.calls = append(controls.calls, "pause") }
func (controls *fakeControls) Skip()        { controls.calls = append(controls.calls, "skip") }
func (controls *fakeControls) Stop()        { controls.calls = append(controls.calls, "stop") }

func running() session.Update {
	return session.Update{
		Phase:          session.PhaseRunning,
		SchemaName:     "Tabata",
		Segment:        model.Segment{Name: "Sprint", Type: model.StepActive, SetName: "Main", Round: 1, TotalRounds: 8, StepIndex: 1, TotalSteps: 2},
		SegmentCount:   16,
		Remaining:      20 * time.Second,
		Total:          4 * time.Minute,
		TotalRemaining: 3*time.Minute + 40*time.Second,
		Runner:         session.RunnerBrown,
	}
}

func keyRunes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func TestKeysDriveControls(t *testing.T) {
	controls := &fakeControls{}
	var current tea.Model = NewModel(controls, nil, running())

	current, _ = current.Update(keyRunes("p"))
	current, _ = current.Update(keyRunes("n"))
	assert.Equal(t, []string{"pause", "skip"}, controls.calls)

	current, cmd := current.Update(keyRunes("q"))
	assert.Nil(t, cmd)
	assert.Contains(t, current.View(), "Stop training? (y/n)")

	current, _ = current.Update(keyRunes("x"))
	assert.Equal(t, []string{"pause", "skip"}, controls.calls)
	assert.NotContains(t, current.View(), "Stop training?")

	current, _ = current.Update(keyRunes("q"))
	_, cmd = current.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, []string{"pause", "skip", "stop"}, controls.calls)
}

func TestUpdatesAreRendered(t *testing.T) {
	updates := make(chan session.Update, 1)
	var current tea.Model = NewModel(&fakeControls{}, updates, session.Update{})

	current, cmd := current.Update(updateMsg(running()))
	require.NotNil(t, cmd)

	view := current.View()
	assert.Contains(t, view, "Sprint")
	assert.Contains(t, view, "Round 1/8 — Step 1/2")
	assert.Contains(t, view, "0 0 : 2 0")
	assert.Contains(t, view, "Total remaining: 03:40")
	assert.Contains(t, view, "running (brown)")

	updates <- session.Update{Phase: session.PhaseComplete, SchemaName: "Tabata", Total: 4 * time.Minute}
	msg := cmd()
	current, _ = current.Update(msg)
	assert.Contains(t, current.View(), "Tabata — 04:00 total")

	_, cmd = current.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestClosedUpdatesQuit(t *testing.T) {
	updates := make(chan session.Update)
	close(updates)

	msg := waitForUpdate(updates)()
	assert.Equal(t, updatesClosedMsg{}, msg)

	_, cmd := NewModel(&fakeControls{}, updates, running()).Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestProgressBar(t *testing.T) {
	bar := progressBar(0.5, 10)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))
	assert.Contains(t, bar, "50%")

	assert.Equal(t, 10, strings.Count(progressBar(3, 10), "█"))
}
