// Package terminal renders a training session in the terminal.
package terminal

import (
	"context"
	"fmt"
	"strings"

	"intervaltimer/internal/core/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 40

// Controls is the subset of a session the terminal drives.
type Controls interface {
	Start()
	TogglePause()
	Skip()
	Stop()
}

type updateMsg session.Update

type updatesClosedMsg struct{}

// Model is the Bubble Tea model for one session.
type Model struct {
	controls    Controls
	updates     <-chan session.Update
	update      session.Update
	confirmStop bool
	width       int
}

// NewModel binds the model to a session and its snapshot channel.
func NewModel(controls Controls, updates <-chan session.Update, initial session.Update) Model {
	return Model{controls: controls, updates: updates, update: initial}
}

// Run shows the session until it finishes and the user quits.
func Run(ctx context.Context, controls Controls, updates <-chan session.Update, initial session.Update) error {
	program := tea.NewProgram(
		NewModel(controls, updates, initial),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	controls := m.controls
	return tea.Batch(
		func() tea.Msg {
			controls.Start()
			return nil
		},
		waitForUpdate(m.updates),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case updateMsg:
		m.update = session.Update(msg)
		return m, waitForUpdate(m.updates)

	case updatesClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.confirmStop {
		m.confirmStop = false
		if key == "y" || key == "Y" {
			m.controls.Stop()
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case " ", "p":
		m.controls.TogglePause()
	case "n", "s", "right":
		m.controls.Skip()
	case "q", "esc", "ctrl+c":
		if m.update.Phase.Finished() || msg.Type == tea.KeyCtrlC {
			m.controls.Stop()
			return m, tea.Quit
		}
		m.confirmStop = true
	case "enter":
		if m.update.Phase.Finished() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	update := m.update
	lines := []string{
		Title.Render(update.Title()),
		Muted.Render(update.Info()),
	}
	if setName := setLine(update); setName != "" {
		lines = append(lines, Muted.Render(setName))
	}

	clock := Clock
	if update.Warning() {
		clock = Hot
	}
	lines = append(lines,
		"",
		clock.Render(bigClock(update.ClockText())),
		"",
		progressBar(update.OverallProgress, progressWidth),
		Muted.Render(update.TotalRemainingText()),
	)
	if runner := runnerLine(update); runner != "" {
		lines = append(lines, runner)
	}

	body := paneFor(
		update.Phase == session.PhaseRunning && update.Segment.IsActive(),
		update.Phase == session.PhaseRunning && !update.Segment.IsActive(),
	).Render(strings.Join(lines, "\n"))

	sections := []string{body}
	if upcoming := upcomingView(update); upcoming != "" {
		sections = append(sections, upcoming)
	}
	sections = append(sections, m.helpLine())
	return App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) helpLine() string {
	if m.confirmStop {
		return Hot.Render("Stop training? (y/n)")
	}
	if m.update.Phase.Finished() {
		return Muted.Render("enter/q quit")
	}
	pause := "pause"
	if m.update.Phase == session.PhasePaused {
		pause = "resume"
	}
	return Muted.Render(fmt.Sprintf("space %s · n skip · q stop", pause))
}

func waitForUpdate(updates <-chan session.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(update)
	}
}

func setLine(update session.Update) string {
	if update.Phase.Finished() || update.SegmentCount == 0 {
		return ""
	}
	return update.Segment.SetName
}

func bigClock(text string) string {
	return strings.Join(strings.Split(text, ""), " ")
}

func progressBar(progress float64, width int) string {
	progress = max(0, min(1, progress))
	filled := int(progress * float64(width))
	return Filled.Render(strings.Repeat("█", filled)) +
		Pending.Render(strings.Repeat("░", width-filled)) +
		Muted.Render(fmt.Sprintf(" %3.0f%%", progress*100))
}

func runnerLine(update session.Update) string {
	if update.Phase != session.PhaseRunning || !update.Segment.IsActive() {
		return ""
	}
	switch update.Runner {
	case session.RunnerBlack:
		return lipgloss.NewStyle().Foreground(Mauve).Render("running (black)")
	case session.RunnerBrown:
		return lipgloss.NewStyle().Foreground(Peach).Render("running (brown)")
	default:
		return ""
	}
}

func upcomingView(update session.Update) string {
	if len(update.Upcoming) == 0 {
		return ""
	}
	lines := []string{Title.Render("Up next")}
	for _, summary := range update.Upcoming {
		lines = append(lines, fmt.Sprintf("%s  ×%d  %s",
			summary.Name, summary.Repeats, Muted.Render(session.FormatClock(summary.TotalDuration))))
	}
	return Pane.Render(strings.Join(lines, "\n"))
}
