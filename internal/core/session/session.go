// Package session runs one training schema end to end: lead-in, engine,
// sound cues, wake lock, history and display snapshots.
package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"intervaltimer/internal/audio"
	"intervaltimer/internal/core/engine"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/plan"
	xlog "intervaltimer/internal/log"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/storage"

	"github.com/rs/zerolog"
)

const (
	eventBuffer    = 64
	historyTimeout = 5 * time.Second
)

// Recorder stores finished sessions.
type Recorder interface {
	Record(ctx context.Context, record storage.SessionRecord) (storage.SessionRecord, error)
}

// Options wires a Session to its collaborators. Nil collaborators are
// skipped.
type Options struct {
	Config   model.SessionConfig
	Clock    engine.Clock
	Player   audio.Player
	WakeLock platform.WakeLock
	History  Recorder
	Rand     *rand.Rand
}

// Session owns exactly one engine for one run of a schema.
type Session struct {
	mu       sync.Mutex
	schema   model.Schema
	segments []model.Segment
	// offsets[i] is the nominal time before segment i starts.
	offsets  []time.Duration
	overview []plan.SetSummary
	total    time.Duration
	options  Options
	clock    engine.Clock
	engine   *engine.Engine
	logger   zerolog.Logger

	phase        Phase
	segmentIndex int
	remaining    time.Duration
	progress     float64
	runner       Runner
	startedAt    time.Time

	leadInLeft  int
	leadInTimer engine.Timer
	leadInGen   uint64

	updates  chan Update
	done     chan struct{}
	closed   bool
	consumer sync.WaitGroup
}

// New prepares a session for schema. Nothing runs until Start.
func New(schema model.Schema, options Options) *Session {
	if options.Clock == nil {
		options.Clock = engine.SystemClock
	}
	segments := plan.Flatten(schema)
	offsets := make([]time.Duration, len(segments)+1)
	for index, segment := range segments {
		offsets[index+1] = offsets[index] + segment.Duration
	}

	eng := engine.New(segments, engine.Config{
		FrameInterval:  options.Config.FrameInterval,
		FallbackMargin: options.Config.FallbackMargin,
		Clock:          options.Clock,
	})

	session := &Session{
		schema:   schema,
		segments: segments,
		offsets:  offsets,
		overview: plan.Overview(schema),
		total:    offsets[len(segments)],
		options:  options,
		clock:    options.Clock,
		engine:   eng,
		logger:   xlog.WithComponent("session").With().Str("schema", schema.Name).Logger(),
		phase:    PhaseReady,
		updates:  make(chan Update, 1),
		done:     make(chan struct{}),
	}
	if len(segments) > 0 {
		session.remaining = segments[0].Duration
	}

	events := eng.Subscribe(eventBuffer)
	session.consumer.Add(1)
	go session.consume(events)

	session.mu.Lock()
	session.publishLocked()
	session.mu.Unlock()
	return session
}

// Updates delivers the latest display snapshot. Only the newest undelivered
// snapshot is kept. The channel closes on Close.
func (session *Session) Updates() <-chan Update {
	return session.updates
}

// Done is closed once the session completes or stops.
func (session *Session) Done() <-chan struct{} {
	return session.done
}

// Snapshot returns the current display state.
func (session *Session) Snapshot() Update {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshotLocked()
}

// Schema returns the schema being run.
func (session *Session) Schema() model.Schema {
	return session.schema
}

// Start begins the lead-in, or the first segment when there is none.
func (session *Session) Start() {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase != PhaseReady {
		return
	}

	session.startedAt = session.clock.Now()
	session.acquireWakeLockLocked()
	session.logger.Info().
		Str("event", "session.start").
		Int("segments", len(session.segments)).
		Dur("total", session.total).
		Msg("session started")

	leadIn := ceilSeconds(session.options.Config.LeadIn)
	if leadIn == 0 || len(session.segments) == 0 {
		session.beginLocked()
		return
	}

	session.phase = PhaseLeadIn
	session.leadInLeft = leadIn
	session.leadInCueLocked()
	session.publishLocked()
	session.scheduleLeadInLocked()
}

// TogglePause pauses a running session or resumes a paused one.
func (session *Session) TogglePause() {
	session.mu.Lock()
	defer session.mu.Unlock()

	switch session.phase {
	case PhaseRunning:
		session.engine.Pause()
		if session.engine.State() == engine.StatePaused {
			session.phase = PhasePaused
			session.logger.Debug().Str("event", "session.pause").Msg("session paused")
		}
	case PhasePaused:
		session.engine.Resume()
		if session.engine.State() == engine.StateRunning {
			session.phase = PhaseRunning
			session.logger.Debug().Str("event", "session.resume").Msg("session resumed")
		}
	default:
		return
	}
	session.publishLocked()
}

// Skip ends the lead-in early or skips the running segment.
func (session *Session) Skip() {
	session.mu.Lock()
	defer session.mu.Unlock()

	switch session.phase {
	case PhaseLeadIn:
		session.cancelLeadInLocked()
		session.beginLocked()
	case PhaseRunning:
		session.engine.SkipToNext()
	}
}

// Stop ends the session early and records it.
func (session *Session) Stop() {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase.Finished() {
		return
	}

	started := session.phase != PhaseReady
	session.cancelLeadInLocked()
	session.engine.Stop()
	if session.engine.State() == engine.StateComplete {
		// The complete event is still queued; handle finishes the session.
		return
	}
	session.phase = PhaseStopped
	session.logger.Info().
		Str("event", "session.stop").
		Dur("completed", session.engine.CompletedDuration()).
		Msg("session stopped")
	session.finishLocked(storage.OutcomeStopped, started)
}

// Close stops the session, waits for event processing to end and closes
// the Updates channel. Events queued before the engine stopped are still
// handled.
func (session *Session) Close() {
	session.Stop()
	session.consumer.Wait()
	session.engine.Close()

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return
	}
	session.closed = true
	close(session.updates)
}

func (session *Session) consume(events <-chan engine.Event) {
	defer session.consumer.Done()
	for event := range events {
		session.handle(event)
	}
}

func (session *Session) handle(event engine.Event) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase.Finished() {
		return
	}

	switch event.Kind {
	case engine.EventStepStart:
		segment := event.StepStart.Segment
		session.segmentIndex = event.StepStart.SegmentIndex
		session.remaining = segment.Duration
		session.progress = session.progressAt(session.segmentIndex, 0)
		session.runner = session.pickRunner(segment)
		session.publishLocked()

	case engine.EventTick:
		session.segmentIndex = event.Tick.SegmentIndex
		session.remaining = event.Tick.Remaining
		session.progress = event.Tick.OverallProgress
		session.publishLocked()

	case engine.EventCountdown:
		if cue, ok := audio.CountdownCue(event.Countdown.SecondsLeft); ok {
			session.playLocked(cue)
		}

	case engine.EventStepEnd:
		next := event.StepEnd.SegmentIndex + 1
		if next < len(session.segments) && session.segments[next].IsActive() {
			session.playLocked(audio.CueStartSignal)
		} else {
			session.playLocked(audio.CueStepEnd)
		}

	case engine.EventComplete:
		session.phase = PhaseComplete
		session.segmentIndex = len(session.segments) - 1
		session.remaining = 0
		session.progress = 1
		session.runner = RunnerNone
		session.playLocked(audio.CueVictory)
		session.logger.Info().
			Str("event", "session.complete").
			Dur("total", session.total).
			Msg("session complete")
		session.finishLocked(storage.OutcomeCompleted, true)
	}
}

// beginLocked plays the start signal and starts the engine.
func (session *Session) beginLocked() {
	session.leadInLeft = 0
	if len(session.segments) > 0 {
		session.playLocked(audio.CueStartSignal)
	}
	session.phase = PhaseRunning
	session.engine.Start()
	session.publishLocked()
}

func (session *Session) scheduleLeadInLocked() {
	generation := session.leadInGen
	session.leadInTimer = session.clock.AfterFunc(time.Second, func() {
		session.onLeadIn(generation)
	})
}

func (session *Session) onLeadIn(generation uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if generation != session.leadInGen || session.phase != PhaseLeadIn {
		return
	}

	session.leadInLeft--
	if session.leadInLeft <= 0 {
		session.leadInTimer = nil
		session.beginLocked()
		return
	}
	session.leadInCueLocked()
	session.publishLocked()
	session.scheduleLeadInLocked()
}

func (session *Session) leadInCueLocked() {
	if cue, ok := audio.CountdownCue(session.leadInLeft); ok {
		session.playLocked(cue)
	}
}

func (session *Session) cancelLeadInLocked() {
	session.leadInGen++
	if session.leadInTimer != nil {
		session.leadInTimer.Stop()
		session.leadInTimer = nil
	}
}

func (session *Session) finishLocked(outcome storage.Outcome, started bool) {
	session.releaseWakeLockLocked()
	if started {
		session.recordLocked(outcome)
	}
	session.publishLocked()
	close(session.done)
}

func (session *Session) recordLocked(outcome storage.Outcome) {
	if session.options.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	record, err := session.options.History.Record(ctx, storage.SessionRecord{
		SchemaID:   session.schema.ID,
		SchemaName: session.schema.Name,
		StartedAt:  session.startedAt,
		EndedAt:    session.clock.Now(),
		Planned:    session.total,
		Completed:  session.engine.CompletedDuration(),
		Outcome:    outcome,
	})
	if err != nil {
		session.logger.Error().Err(err).Str("event", "session.history_failed").Msg("failed to record session")
		return
	}
	session.logger.Debug().Str("event", "session.recorded").Str("record", record.ID).Msg("session recorded")
}

func (session *Session) acquireWakeLockLocked() {
	if !session.options.Config.KeepAwake || session.options.WakeLock == nil {
		return
	}
	if err := session.options.WakeLock.Acquire(); err != nil {
		event := session.logger.Warn()
		if errors.Is(err, platform.ErrWakeLockUnsupported) {
			event = session.logger.Debug()
		}
		event.Err(err).Str("event", "session.wake_lock_failed").Msg("screen may sleep during training")
	}
}

func (session *Session) releaseWakeLockLocked() {
	if !session.options.Config.KeepAwake || session.options.WakeLock == nil {
		return
	}
	if err := session.options.WakeLock.Release(); err != nil {
		session.logger.Warn().Err(err).Str("event", "session.wake_lock_release_failed").Msg("failed to release wake lock")
	}
}

func (session *Session) playLocked(cue audio.Cue) {
	if !session.options.Config.SoundEnabled || session.options.Player == nil {
		return
	}
	if err := session.options.Player.Play(cue); err != nil {
		session.logger.Warn().Err(err).Str("event", "session.cue_failed").Stringer("cue", cue).Msg("failed to play cue")
	}
}

func (session *Session) pickRunner(segment model.Segment) Runner {
	if !segment.IsActive() {
		return RunnerNone
	}
	var coin int
	if session.options.Rand != nil {
		coin = session.options.Rand.IntN(2)
	} else {
		coin = rand.IntN(2)
	}
	if coin == 0 {
		return RunnerBrown
	}
	return RunnerBlack
}

func (session *Session) progressAt(index int, elapsed time.Duration) float64 {
	if session.total <= 0 {
		return 0
	}
	return min(1, float64(session.offsets[index]+elapsed)/float64(session.total))
}

func (session *Session) snapshotLocked() Update {
	update := Update{
		Phase:           session.phase,
		SchemaName:      session.schema.Name,
		SegmentIndex:    session.segmentIndex,
		SegmentCount:    len(session.segments),
		Remaining:       session.remaining,
		OverallProgress: session.progress,
		Total:           session.total,
		Runner:          session.runner,
	}
	if len(session.segments) == 0 {
		return update
	}

	index := min(max(session.segmentIndex, 0), len(session.segments)-1)
	segment := session.segments[index]
	update.Segment = segment

	switch session.phase {
	case PhaseReady, PhaseLeadIn:
		update.Remaining = time.Duration(session.leadInLeft) * time.Second
		update.TotalRemaining = session.total
		update.Upcoming = plan.Upcoming(session.overview, 0)
	case PhaseComplete:
		update.TotalRemaining = 0
	default:
		elapsed := segment.Duration - session.remaining
		update.TotalRemaining = max(0, session.total-session.offsets[index]-elapsed)
		update.Upcoming = plan.Upcoming(session.overview, segment.SetIndex)
	}
	return update
}

// publishLocked replaces any undelivered snapshot with the current one.
func (session *Session) publishLocked() {
	if session.closed {
		return
	}
	update := session.snapshotLocked()
	select {
	case <-session.updates:
	default:
	}
	session.updates <- update
}
