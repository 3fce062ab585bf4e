package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"intervaltimer/internal/audio"
	"intervaltimer/internal/core/engine/enginetest"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingPlayer struct {
	mu   sync.Mutex
	cues []audio.Cue
}

func (player *recordingPlayer) Play(cue audio.Cue) error {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.cues = append(player.cues, cue)
	return nil
}

func (player *recordingPlayer) Close() error { return nil }

func (player *recordingPlayer) played() []audio.Cue {
	player.mu.Lock()
	defer player.mu.Unlock()
	return append([]audio.Cue(nil), player.cues...)
}

type countingWakeLock struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (lock *countingWakeLock) Acquire() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	lock.acquired++
	return nil
}

func (lock *countingWakeLock) Release() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	lock.released++
	return nil
}

type memoryHistory struct {
	mu      sync.Mutex
	records []storage.SessionRecord
}

func (history *memoryHistory) Record(_ context.Context, record storage.SessionRecord) (storage.SessionRecord, error) {
	history.mu.Lock()
	defer history.mu.Unlock()
	record.ID = "record"
	history.records = append(history.records, record)
	return record, nil
}

func (history *memoryHistory) all() []storage.SessionRecord {
	history.mu.Lock()
	defer history.mu.Unlock()
	return append([]storage.SessionRecord(nil), history.records...)
}

type fixture struct {
	clock   *enginetest.Clock
	player  *recordingPlayer
	lock    *countingWakeLock
	history *memoryHistory
	session *Session
}

func runRestSchema() model.Schema {
	schema := model.NewSchema("Intervals")
	schema.Sets[0].Repeats = 2
	schema.Sets[0].Steps = []model.Step{
		model.NewStep("Run", 5, model.StepActive),
		model.NewStep("Rest", 3, model.StepPause),
	}
	return schema
}

func newFixture(t *testing.T, schema model.Schema, leadIn time.Duration) *fixture {
	t.Helper()
	fx := &fixture{
		clock:   enginetest.NewClock(),
		player:  &recordingPlayer{},
		lock:    &countingWakeLock{},
		history: &memoryHistory{},
	}
	fx.session = New(schema, Options{
		Config: model.SessionConfig{
			LeadIn:        leadIn,
			FrameInterval: 10 * time.Millisecond,
			SoundEnabled:  true,
			KeepAwake:     true,
		},
		Clock:    fx.clock,
		Player:   fx.player,
		WakeLock: fx.lock,
		History:  fx.history,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	})
	t.Cleanup(fx.session.Close)
	return fx
}

func waitDone(t *testing.T, session *Session) {
	t.Helper()
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}

func waitFor(t *testing.T, session *Session, condition func(Update) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return condition(session.Snapshot())
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionRunsToCompletion(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 0)

	fx.session.Start()
	fx.clock.Advance(17 * time.Second)
	waitDone(t, fx.session)

	want := []audio.Cue{
		audio.CueStartSignal,
		audio.CueCountdown3, audio.CueCountdown2, audio.CueCountdown1, audio.CueStepEnd,
		audio.CueCountdown3, audio.CueCountdown2, audio.CueCountdown1, audio.CueStartSignal,
		audio.CueCountdown3, audio.CueCountdown2, audio.CueCountdown1, audio.CueStepEnd,
		audio.CueCountdown3, audio.CueCountdown2, audio.CueCountdown1, audio.CueStepEnd,
		audio.CueVictory,
	}
	assert.Equal(t, want, fx.player.played())

	final := fx.session.Snapshot()
	assert.Equal(t, PhaseComplete, final.Phase)
	assert.Equal(t, 1.0, final.OverallProgress)
	assert.Zero(t, final.TotalRemaining)
	assert.Equal(t, "Intervals — 00:16 total", final.Summary())
	assert.Equal(t, "Done!", final.Title())

	records := fx.history.all()
	require.Len(t, records, 1)
	assert.Equal(t, storage.OutcomeCompleted, records[0].Outcome)
	assert.Equal(t, 16*time.Second, records[0].Planned)
	assert.Equal(t, 16*time.Second, records[0].Completed)
	assert.Equal(t, "Intervals", records[0].SchemaName)

	assert.Equal(t, 1, fx.lock.acquired)
	assert.Equal(t, 1, fx.lock.released)
}

func TestSessionLeadIn(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 5*time.Second)

	fx.session.Start()
	update := fx.session.Snapshot()
	assert.Equal(t, PhaseLeadIn, update.Phase)
	assert.Equal(t, "Ready?", update.Title())
	assert.Equal(t, "Next: Run", update.Info())
	assert.Equal(t, "5", update.ClockText())
	assert.Equal(t, 16*time.Second, update.TotalRemaining)
	assert.Empty(t, fx.player.played())

	fx.clock.Advance(2 * time.Second)
	update = fx.session.Snapshot()
	assert.Equal(t, "3", update.ClockText())
	assert.True(t, update.Warning())
	assert.Equal(t, []audio.Cue{audio.CueCountdown3}, fx.player.played())

	fx.clock.Advance(3 * time.Second)
	assert.Equal(t, []audio.Cue{
		audio.CueCountdown3, audio.CueCountdown2, audio.CueCountdown1, audio.CueStartSignal,
	}, fx.player.played())

	waitFor(t, fx.session, func(update Update) bool {
		return update.Phase == PhaseRunning && update.Segment.Name == "Run"
	})
	assert.Equal(t, "Round 1/2 — Step 1/2", fx.session.Snapshot().Info())
}

func TestSessionSkipEndsLeadIn(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 10*time.Second)

	fx.session.Start()
	fx.session.Skip()
	assert.Equal(t, []audio.Cue{audio.CueStartSignal}, fx.player.played())
	assert.Equal(t, PhaseRunning, fx.session.Snapshot().Phase)

	fx.clock.Advance(4 * time.Second)
	waitFor(t, fx.session, func(update Update) bool {
		return update.Remaining == time.Second
	})
	starts := 0
	for _, cue := range fx.player.played() {
		if cue == audio.CueStartSignal {
			starts++
		}
	}
	assert.Equal(t, 1, starts, "cancelled lead-in must not start the engine twice")
}

func TestSessionPauseAndResume(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 0)

	fx.session.Start()
	fx.clock.Advance(2 * time.Second)
	waitFor(t, fx.session, func(update Update) bool {
		return update.Remaining == 3*time.Second
	})

	fx.session.TogglePause()
	assert.Equal(t, PhasePaused, fx.session.Snapshot().Phase)

	fx.session.Skip()
	fx.clock.Advance(10 * time.Second)
	update := fx.session.Snapshot()
	assert.Equal(t, PhasePaused, update.Phase)
	assert.Equal(t, 0, update.SegmentIndex)
	assert.Equal(t, 3*time.Second, update.Remaining)
	assert.Equal(t, 14*time.Second, update.TotalRemaining)

	fx.session.TogglePause()
	assert.Equal(t, PhaseRunning, fx.session.Snapshot().Phase)
	fx.clock.Advance(3 * time.Second)
	waitFor(t, fx.session, func(update Update) bool {
		return update.SegmentIndex == 1 && update.Segment.Name == "Rest"
	})
	assert.Equal(t, RunnerNone, fx.session.Snapshot().Runner)
}

func TestSessionStopRecordsPartialRun(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 0)

	fx.session.Start()
	fx.clock.Advance(6 * time.Second)
	fx.session.Stop()
	waitDone(t, fx.session)

	assert.Equal(t, PhaseStopped, fx.session.Snapshot().Phase)
	records := fx.history.all()
	require.Len(t, records, 1)
	assert.Equal(t, storage.OutcomeStopped, records[0].Outcome)
	assert.Equal(t, 5*time.Second, records[0].Completed)
	assert.Equal(t, 1, fx.lock.released)

	fx.clock.Advance(20 * time.Second)
	assert.NotContains(t, fx.player.played(), audio.CueVictory)

	fx.session.Stop()
	assert.Len(t, fx.history.all(), 1)
}

func sprintSchema() model.Schema {
	schema := model.NewSchema("Sprint")
	schema.Sets[0].Steps = []model.Step{model.NewStep("Go", 5, model.StepActive)}
	return schema
}

func TestSessionStopAfterFinalSkipKeepsCompletion(t *testing.T) {
	for range 25 {
		fx := newFixture(t, sprintSchema(), 0)

		fx.session.Start()
		fx.session.Skip()
		fx.session.Stop()
		waitDone(t, fx.session)

		assert.Equal(t, PhaseComplete, fx.session.Snapshot().Phase)
		records := fx.history.all()
		require.Len(t, records, 1)
		assert.Equal(t, storage.OutcomeCompleted, records[0].Outcome)
		assert.Equal(t, 5*time.Second, records[0].Completed)

		played := fx.player.played()
		require.NotEmpty(t, played)
		assert.Equal(t, audio.CueVictory, played[len(played)-1])
	}
}

func TestSessionCloseAfterFinalSkipKeepsCompletion(t *testing.T) {
	fx := newFixture(t, sprintSchema(), 0)

	fx.session.Start()
	fx.session.Skip()
	fx.session.Close()

	select {
	case <-fx.session.Done():
	default:
		t.Fatal("session not finished after Close")
	}
	records := fx.history.all()
	require.Len(t, records, 1)
	assert.Equal(t, storage.OutcomeCompleted, records[0].Outcome)
	assert.Equal(t, 1, fx.lock.released)
}

func TestSessionStopBeforeStartIsNotRecorded(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 0)

	fx.session.Stop()
	waitDone(t, fx.session)
	assert.Empty(t, fx.history.all())

	fx.session.Start()
	assert.Equal(t, PhaseStopped, fx.session.Snapshot().Phase)
}

func TestSessionEmptySchemaCompletes(t *testing.T) {
	fx := newFixture(t, model.Schema{Name: "Nothing"}, 10*time.Second)

	fx.session.Start()
	waitDone(t, fx.session)

	assert.Equal(t, []audio.Cue{audio.CueVictory}, fx.player.played())
	assert.Equal(t, PhaseComplete, fx.session.Snapshot().Phase)
}

func TestSessionSoundDisabled(t *testing.T) {
	clock := enginetest.NewClock()
	player := &recordingPlayer{}
	session := New(runRestSchema(), Options{
		Config: model.SessionConfig{FrameInterval: 10 * time.Millisecond},
		Clock:  clock,
		Player: player,
	})
	defer session.Close()

	session.Start()
	clock.Advance(17 * time.Second)
	waitDone(t, session)
	assert.Empty(t, player.played())
}

func TestSessionUpdatesChannelKeepsLatest(t *testing.T) {
	fx := newFixture(t, runRestSchema(), 3*time.Second)

	fx.session.Start()
	fx.clock.Advance(time.Second)

	update := <-fx.session.Updates()
	assert.Equal(t, PhaseLeadIn, update.Phase)
	assert.Equal(t, 2*time.Second, update.Remaining)

	fx.session.Close()
	for range fx.session.Updates() {
	}
}

func TestSessionWithSystemClock(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	schema := model.NewSchema("Quick")
	schema.Sets[0].Steps = []model.Step{model.NewStep("Go", 1, model.StepActive)}

	player := &recordingPlayer{}
	session := New(schema, Options{
		Config: model.SessionConfig{FrameInterval: 5 * time.Millisecond, SoundEnabled: true},
		Player: player,
	})
	session.Start()

	select {
	case <-session.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("session did not finish")
	}
	session.Close()

	cues := player.played()
	require.NotEmpty(t, cues)
	assert.Equal(t, audio.CueVictory, cues[len(cues)-1])
}
