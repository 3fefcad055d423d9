// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stage

import (
	"sync"
	"time"

	"github.com/jeranaias/fiscus-tui/internal/protocol"
)

// =============================================================================
// FALLBACK SCHEDULE
// =============================================================================

// FallbackStep is one timer-driven stage advance used when the backend is
// slow to emit its own signals.
type FallbackStep struct {
	After time.Duration
	Stage Stage
}

// FallbackSchedule holds the fallback steps per search mode. Web-search
// sessions get two steps at increasing delays; direct sessions get a single
// step into the retrieval stage.
type FallbackSchedule struct {
	Web    []FallbackStep
	Direct []FallbackStep
}

// DefaultFallbackSchedule matches the backend's observed signal latency:
// the indicator should never sit on the initial stage for more than a
// couple of seconds.
func DefaultFallbackSchedule() FallbackSchedule {
	return FallbackSchedule{
		Web: []FallbackStep{
			{After: 2 * time.Second, Stage: PreparingSearch},
			{After: 6 * time.Second, Stage: CollectingResults},
		},
		Direct: []FallbackStep{
			{After: 1500 * time.Millisecond, Stage: Retrieving},
		},
	}
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// Config configures one Machine for one stream session.
type Config struct {
	// WebSearch selects the web-mode signal mapping and fallback schedule.
	WebSearch bool
	// Clock schedules fallback timers; nil means the system clock.
	Clock Clock
	// Schedule overrides the fallback steps; zero value means defaults.
	Schedule FallbackSchedule
	// OnChange is invoked for every effective stage change, never for
	// no-op re-applies. It runs with the machine's lock held and must not
	// call back into the machine. May be nil.
	OnChange func(Stage)
}

// Machine is the processing-stage state machine for a single session.
// It reconciles authoritative protocol signals with timer fallbacks:
// signals cancel all pending timers before transitioning, and a retrieval
// latch blocks regression to Analyzing once any retrieval-phase signal has
// been observed.
//
// Timer callbacks fire on their own goroutine, so all state is guarded by
// a mutex. A generation counter makes callbacks from a cancelled timer
// generation a no-op even if Stop raced with the firing.
type Machine struct {
	mu        sync.Mutex
	stage     Stage
	webSearch bool
	latched   bool
	gen       uint64
	timers    []Timer
	clock     Clock
	schedule  FallbackSchedule
	onChange  func(Stage)
}

// New builds a machine at the Analyzing stage. Start must be called to arm
// the fallback timers.
func New(cfg Config) *Machine {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	schedule := cfg.Schedule
	if len(schedule.Web) == 0 && len(schedule.Direct) == 0 {
		schedule = DefaultFallbackSchedule()
	}
	return &Machine{
		stage:     Analyzing,
		webSearch: cfg.WebSearch,
		clock:     clock,
		schedule:  schedule,
		onChange:  cfg.OnChange,
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// RetrievalLatched reports whether a retrieval-phase signal has been seen.
func (m *Machine) RetrievalLatched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latched
}

// Start arms the fallback timers for the session's search mode. Calling
// Start again re-arms from scratch.
func (m *Machine) Start() {
	m.mu.Lock()
	m.cancelTimersLocked()
	m.gen++
	gen := m.gen

	steps := m.schedule.Direct
	if m.webSearch {
		steps = m.schedule.Web
	}
	for _, step := range steps {
		target := step.Stage
		m.timers = append(m.timers, m.clock.AfterFunc(step.After, func() {
			m.fallbackFire(gen, target)
		}))
	}
	m.mu.Unlock()
}

// Stop cancels all pending fallback timers. Called when the session
// completes or is superseded by a newer submission.
func (m *Machine) Stop() {
	m.mu.Lock()
	m.cancelTimersLocked()
	m.gen++
	m.mu.Unlock()
}

// Apply advances the machine for one decoded signal. Chunks and completion
// sentinels carry no stage semantics and are ignored here. Re-applying a
// signal that maps to the current stage is a no-op.
func (m *Machine) Apply(sig protocol.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.targetLocked(sig)
	if !ok {
		return
	}

	// A signal arriving voids every pending fallback, so a stale timer
	// can never later overwrite the more advanced stage.
	m.cancelTimersLocked()
	m.gen++

	m.setStageLocked(target)
}

// targetLocked maps a signal to its destination stage under the current
// mode, and maintains the retrieval latch.
func (m *Machine) targetLocked(sig protocol.Signal) (Stage, bool) {
	switch sig {
	case protocol.SignalAnalysisStarted:
		// Regression to Analyzing is only legal before retrieval began.
		if m.latched {
			return 0, false
		}
		return Analyzing, true
	case protocol.SignalAnalysisFinished:
		if m.webSearch {
			return PreparingSearch, true
		}
		return Retrieving, true
	case protocol.SignalRetrievalStarted:
		m.latched = true
		if m.webSearch {
			return CollectingResults, true
		}
		return Retrieving, true
	case protocol.SignalAnalyzingSources:
		m.latched = true
		return AnalyzingSources, true
	case protocol.SignalRetrievingMoreSources:
		m.latched = true
		return RetrievingMoreSources, true
	case protocol.SignalWebVerifying:
		m.latched = true
		return VerifyingUrls, true
	case protocol.SignalDocsRetrieved:
		m.latched = true
		return Reasoning, true
	default:
		return 0, false
	}
}

// fallbackFire is the timer callback path. A fired timer whose generation
// has been superseded by a signal or Stop is silently discarded.
func (m *Machine) fallbackFire(gen uint64, target Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.setStageLocked(target)
}

func (m *Machine) setStageLocked(target Stage) {
	if m.stage == target {
		return
	}
	m.stage = target
	if m.onChange != nil {
		m.onChange(target)
	}
}

func (m *Machine) cancelTimersLocked() {
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
}
