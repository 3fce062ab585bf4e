// Package engine drives a flattened training plan in real time.
package engine

import (
	"sync"
	"time"

	"intervaltimer/internal/core/model"
)

const (
	defaultFrameInterval  = time.Second / 60
	defaultFallbackMargin = 50 * time.Millisecond
)

// countdownThresholds are the seconds-remaining values that trigger a
// countdown event, highest first.
var countdownThresholds = [...]int{3, 2, 1}

// Config contains runtime options for the Engine.
type Config struct {
	// FrameInterval is the period of the progress wake-up.
	FrameInterval time.Duration
	// FallbackMargin is added to the segment end for the fallback wake-up.
	FallbackMargin time.Duration
	Clock          Clock
}

// Engine is a state machine that executes a plan segment by segment.
//
// Two scheduled tasks are armed per segment: a frequent frame wake-up that
// evaluates progress and re-arms itself, and a one-shot fallback slightly
// after the nominal segment end that forces the transition if frames are
// delayed. Both are cancelled on every segment change, pause and stop.
type Engine struct {
	mu      sync.Mutex
	plan    []model.Segment
	options Config
	clock   Clock

	state        State
	segmentIndex int
	segmentStart time.Time
	pauseElapsed time.Duration
	completed    time.Duration
	total        time.Duration
	fired        map[int]bool

	frame      Timer
	fallback   Timer
	generation uint64

	subscribers []*subscriber
}

// New creates an Engine for the provided plan. The plan is copied.
func New(plan []model.Segment, options Config) *Engine {
	if options.FrameInterval <= 0 {
		options.FrameInterval = defaultFrameInterval
	}
	if options.FallbackMargin <= 0 {
		options.FallbackMargin = defaultFallbackMargin
	}
	if options.Clock == nil {
		options.Clock = SystemClock
	}

	segments := append([]model.Segment(nil), plan...)
	var total time.Duration
	for _, segment := range segments {
		total += segment.Duration
	}

	return &Engine{
		plan:    segments,
		options: options,
		clock:   options.Clock,
		state:   StateIdle,
		total:   total,
		fired:   make(map[int]bool, len(countdownThresholds)),
	}
}

// Subscribe registers a new observer channel. The channel is closed once the
// engine completes or stops and every queued event has been delivered.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	sub := newSubscriber(buffer)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state.Terminal() {
		sub.close()
		return sub.out
	}
	engine.subscribers = append(engine.subscribers, sub)
	return sub.out
}

// Start begins the first segment. It is a no-op unless the engine is idle.
func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateIdle {
		return
	}

	engine.segmentIndex = 0
	engine.completed = 0
	engine.pauseElapsed = 0
	if len(engine.plan) == 0 {
		engine.completeLocked(engine.clock.Now())
		return
	}
	engine.state = StateRunning
	engine.startSegmentLocked(engine.clock.Now())
}

// Pause freezes the current segment.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateRunning {
		return
	}

	engine.pauseElapsed = engine.clock.Now().Sub(engine.segmentStart)
	engine.cancelLocked()
	engine.state = StatePaused
}

// Resume continues a paused segment with its elapsed time preserved.
func (engine *Engine) Resume() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StatePaused {
		return
	}

	now := engine.clock.Now()
	engine.segmentStart = now.Add(-engine.pauseElapsed)
	engine.state = StateRunning
	engine.armLocked(now)
	engine.evaluateLocked(now)
}

// Stop terminates the session. No events are emitted afterwards.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state.Terminal() {
		return
	}

	engine.cancelLocked()
	engine.state = StateStopped
	engine.closeSubscribersLocked()
}

// SkipToNext ends the current segment early. The full segment duration is
// credited to the completed total.
func (engine *Engine) SkipToNext() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.state != StateRunning {
		return
	}
	engine.endSegmentLocked(engine.clock.Now())
}

// Close stops the engine and releases every subscription, dropping events
// that were not delivered yet.
func (engine *Engine) Close() {
	engine.Stop()

	engine.mu.Lock()
	subscribers := engine.subscribers
	engine.subscribers = nil
	engine.mu.Unlock()

	for _, sub := range subscribers {
		sub.abandon()
	}
}

// State returns the current engine state.
func (engine *Engine) State() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

// SegmentIndex returns the position of the current segment in the plan.
func (engine *Engine) SegmentIndex() int {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.segmentIndex
}

// Plan returns a copy of the executed plan.
func (engine *Engine) Plan() []model.Segment {
	return append([]model.Segment(nil), engine.plan...)
}

// TotalDuration is the sum of all segment durations.
func (engine *Engine) TotalDuration() time.Duration {
	return engine.total
}

// CompletedDuration is the sum of durations of finished or skipped segments.
func (engine *Engine) CompletedDuration() time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.completed
}

// Elapsed returns the time spent in the current segment, capped at the
// segment duration while the fallback has not fired yet.
func (engine *Engine) Elapsed() time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	var elapsed time.Duration
	switch engine.state {
	case StatePaused:
		elapsed = engine.pauseElapsed
	case StateRunning:
		elapsed = engine.clock.Now().Sub(engine.segmentStart)
	default:
		return 0
	}
	return min(max(elapsed, 0), engine.plan[engine.segmentIndex].Duration)
}

func (engine *Engine) startSegmentLocked(now time.Time) {
	engine.cancelLocked()
	clear(engine.fired)
	engine.segmentStart = now
	engine.pauseElapsed = 0

	engine.emitLocked(Event{
		Kind: EventStepStart,
		StepStart: StepStart{
			Segment:      engine.plan[engine.segmentIndex],
			SegmentIndex: engine.segmentIndex,
		},
		At: now,
	})

	engine.armLocked(now)
	engine.evaluateLocked(now)
}

// armLocked schedules both wake-ups for the current segment under the
// current generation.
func (engine *Engine) armLocked(now time.Time) {
	segment := engine.plan[engine.segmentIndex]
	remaining := segment.Duration - now.Sub(engine.segmentStart)
	if remaining < 0 {
		remaining = 0
	}

	generation := engine.generation
	engine.fallback = engine.clock.AfterFunc(remaining+engine.options.FallbackMargin, func() {
		engine.onFallback(generation)
	})
	engine.scheduleFrameLocked(generation)
}

func (engine *Engine) scheduleFrameLocked(generation uint64) {
	engine.frame = engine.clock.AfterFunc(engine.options.FrameInterval, func() {
		engine.onFrame(generation)
	})
}

// cancelLocked stops both wake-ups and invalidates any callback that is
// already in flight.
func (engine *Engine) cancelLocked() {
	engine.generation++
	if engine.frame != nil {
		engine.frame.Stop()
		engine.frame = nil
	}
	if engine.fallback != nil {
		engine.fallback.Stop()
		engine.fallback = nil
	}
}

func (engine *Engine) onFrame(generation uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if generation != engine.generation || engine.state != StateRunning {
		return
	}

	engine.evaluateLocked(engine.clock.Now())
	if generation == engine.generation && engine.state == StateRunning {
		engine.scheduleFrameLocked(generation)
	}
}

func (engine *Engine) onFallback(generation uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if generation != engine.generation || engine.state != StateRunning {
		return
	}
	engine.endSegmentLocked(engine.clock.Now())
}

func (engine *Engine) evaluateLocked(now time.Time) {
	segment := engine.plan[engine.segmentIndex]
	elapsed := now.Sub(engine.segmentStart)
	remaining := segment.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	for _, threshold := range countdownThresholds {
		upper := time.Duration(threshold) * time.Second
		if remaining <= upper && remaining > upper-time.Second && !engine.fired[threshold] {
			engine.fired[threshold] = true
			engine.emitLocked(Event{
				Kind:      EventCountdown,
				Countdown: Countdown{SecondsLeft: threshold},
				At:        now,
			})
		}
	}

	if remaining <= 0 {
		engine.endSegmentLocked(now)
		return
	}

	engine.emitLocked(Event{
		Kind: EventTick,
		Tick: Tick{
			Remaining:       remaining,
			Total:           segment.Duration,
			SegmentIndex:    engine.segmentIndex,
			Segment:         segment,
			OverallProgress: engine.overallProgressLocked(elapsed),
		},
		At: now,
	})
}

func (engine *Engine) endSegmentLocked(now time.Time) {
	engine.cancelLocked()
	segment := engine.plan[engine.segmentIndex]
	engine.completed += segment.Duration

	engine.emitLocked(Event{
		Kind: EventStepEnd,
		StepEnd: StepEnd{
			Segment:      segment,
			SegmentIndex: engine.segmentIndex,
		},
		At: now,
	})

	engine.segmentIndex++
	if engine.segmentIndex >= len(engine.plan) {
		engine.completeLocked(now)
		return
	}
	engine.startSegmentLocked(now)
}

func (engine *Engine) completeLocked(now time.Time) {
	engine.cancelLocked()
	engine.state = StateComplete
	engine.emitLocked(Event{Kind: EventComplete, At: now})
	engine.closeSubscribersLocked()
}

func (engine *Engine) overallProgressLocked(elapsed time.Duration) float64 {
	if engine.total <= 0 {
		return 0
	}
	progress := float64(engine.completed+elapsed) / float64(engine.total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (engine *Engine) emitLocked(event Event) {
	for _, sub := range engine.subscribers {
		sub.push(event)
	}
}

func (engine *Engine) closeSubscribersLocked() {
	for _, sub := range engine.subscribers {
		sub.close()
	}
}
