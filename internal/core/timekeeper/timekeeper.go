// Package timekeeper implements the work/break phase state machine.
package timekeeper

import (
	"context"
	"sync"
	"time"

	"eyerest/internal/core/model"
)

const (
	defaultIdleCheckTicks   = 30
	defaultDemoBreakSeconds = 5
)

// BreakRecorder persists the break record lifecycle.
type BreakRecorder interface {
	InsertBreakRecord(ctx context.Context, startedAt, precedingWorkSeconds int64) (int64, error)
	FinalizeBreakRecord(ctx context.Context, id, durationSeconds int64, completed, skipped bool) error
}

// StatsRecomputer refreshes the cached rollup of one local day.
type StatsRecomputer interface {
	RecomputeDailyStats(ctx context.Context, midnight time.Time) (model.DailyStats, error)
	DayOf(ms int64) time.Time
}

// SettingsSource returns the current user settings.
type SettingsSource interface {
	Get() model.Settings
}

// IdleSource reports seconds since the last user input. ok is false when
// the platform cannot tell.
type IdleSource interface {
	IdleSeconds() (seconds uint64, ok bool)
}

// Config contains runtime options for TimeKeeper.
type Config struct {
	// Now is the wall clock. Defaults to time.Now.
	Now func() time.Time
	// IdleCheckTicks is the number of ticks between idle queries.
	IdleCheckTicks int
	// DemoBreakSeconds is the length of the onboarding demo break.
	DemoBreakSeconds int64
}

// TimeKeeper owns TimerState and TimerInternalState for the process
// lifetime. State decisions happen under mu; storage calls and events happen
// after it is released.
type TimeKeeper struct {
	mu       sync.Mutex
	options  Config
	settings SettingsSource
	recorder BreakRecorder
	stats    StatsRecomputer
	idle     IdleSource

	state     model.TimerState
	internal  model.TimerInternalState
	idleTicks int

	// breakSeq identifies the break whose record insert is in flight or open.
	breakSeq       uint64
	activeBreak    uint64
	breakStartedAt int64
	// breakDiscarded marks a running break whose record was wiped; it ends
	// without being counted.
	breakDiscarded bool

	subMu       sync.Mutex
	subscribers []chan Event
	closed      bool
}

// New creates a TimeKeeper. It starts Working when onboarding is complete and
// Paused otherwise, with a full work interval either way.
func New(settings SettingsSource, recorder BreakRecorder, stats StatsRecomputer, options Config) *TimeKeeper {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.IdleCheckTicks <= 0 {
		options.IdleCheckTicks = defaultIdleCheckTicks
	}
	if options.DemoBreakSeconds <= 0 {
		options.DemoBreakSeconds = defaultDemoBreakSeconds
	}

	keeper := &TimeKeeper{
		options:  options,
		settings: settings,
		recorder: recorder,
		stats:    stats,
	}

	current := settings.Get()
	keeper.startWorkLocked(keeper.nowMs(), current)
	if !current.OnboardingCompleted {
		keeper.internal.PhaseBeforePause = model.PhaseWorking
		keeper.state.Phase = model.PhasePaused
	}
	return keeper
}

// SetIdleSource injects the idle detector. A nil source disables idle
// suspension.
func (keeper *TimeKeeper) SetIdleSource(source IdleSource) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.idle = source
}

// State returns the current snapshot.
func (keeper *TimeKeeper) State() model.TimerState {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// SetBreaksCompletedToday overwrites the in-memory counter. Used for startup
// hydration and after a data wipe.
func (keeper *TimeKeeper) SetBreaksCompletedToday(count int) model.TimerState {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.state.BreaksCompletedToday = count
	return keeper.state
}

// DiscardHistory zeroes the completed-break counter and detaches the open
// break record after the stored data was wiped. A running break keeps
// running but is not counted when it ends.
func (keeper *TimeKeeper) DiscardHistory() model.TimerState {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	inBreak := keeper.state.Phase == model.PhaseBreaking ||
		(keeper.state.Phase.Frozen() && keeper.internal.PhaseBeforePause == model.PhaseBreaking)
	keeper.clearBreakLocked()
	keeper.breakDiscarded = inBreak && !keeper.internal.DemoBreak
	keeper.state.BreaksCompletedToday = 0
	return keeper.state
}

// Subscribe registers a new observer channel. Events are dropped for
// observers whose buffer is full.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.subMu.Lock()
	defer keeper.subMu.Unlock()
	if keeper.closed {
		close(ch)
		return ch
	}
	keeper.subscribers = append(keeper.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes an observer channel.
func (keeper *TimeKeeper) Unsubscribe(ch <-chan Event) {
	keeper.subMu.Lock()
	defer keeper.subMu.Unlock()
	for i, subscriber := range keeper.subscribers {
		if subscriber == ch {
			keeper.subscribers = append(keeper.subscribers[:i], keeper.subscribers[i+1:]...)
			close(subscriber)
			return
		}
	}
}

// Publish fans out an event that originates outside the state machine.
func (keeper *TimeKeeper) Publish(eventType EventType, payload any) {
	event := Event{Type: eventType, State: keeper.State(), Payload: payload, At: keeper.options.Now()}
	keeper.emit(event)
}

// Close closes all observer channels. Later events are discarded.
func (keeper *TimeKeeper) Close() {
	keeper.subMu.Lock()
	defer keeper.subMu.Unlock()
	if keeper.closed {
		return
	}
	keeper.closed = true
	for _, ch := range keeper.subscribers {
		close(ch)
	}
	keeper.subscribers = nil
}

func (keeper *TimeKeeper) emit(events ...Event) {
	keeper.subMu.Lock()
	defer keeper.subMu.Unlock()
	for _, event := range events {
		for _, ch := range keeper.subscribers {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

func (keeper *TimeKeeper) emitState(snapshot model.TimerState, types ...EventType) {
	at := keeper.options.Now()
	events := make([]Event, 0, len(types))
	for _, eventType := range types {
		events = append(events, Event{Type: eventType, State: snapshot, At: at})
	}
	keeper.emit(events...)
}

func (keeper *TimeKeeper) nowMs() int64 {
	return keeper.options.Now().UnixMilli()
}

// startWorkLocked begins a fresh full-length work phase.
func (keeper *TimeKeeper) startWorkLocked(nowMs int64, settings model.Settings) {
	duration := int64(settings.WorkInterval() / time.Second)
	keeper.state.Phase = model.PhaseWorking
	keeper.state.PhaseDuration = duration
	keeper.state.SecondsRemaining = duration
	keeper.state.PhaseStartedAt = nowMs
	keeper.internal.WorkStartedAt = nowMs
	keeper.internal.DemoBreak = false
}

// freezeLocked snapshots the remaining time of a running phase and moves to
// the frozen phase.
func (keeper *TimeKeeper) freezeLocked(nowMs int64, frozen model.Phase) {
	keeper.state.SecondsRemaining = remainingSeconds(nowMs, keeper.state.PhaseStartedAt, keeper.state.PhaseDuration)
	keeper.internal.PhaseBeforePause = keeper.state.Phase
	keeper.state.Phase = frozen
}

func elapsedSeconds(nowMs, startedAt int64) int64 {
	if nowMs <= startedAt {
		return 0
	}
	return (nowMs - startedAt) / 1000
}

func remainingSeconds(nowMs, startedAt, duration int64) int64 {
	remaining := duration - elapsedSeconds(nowMs, startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
