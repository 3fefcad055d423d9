// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/fiscus-tui/internal/stage"
)

// =============================================================================
// STREAM SNAPSHOT
// =============================================================================

// StreamSnapshot is the bridge between the streaming goroutine and the
// Bubble Tea render loop. The stream controller's handler callbacks
// overwrite the latest stage and display text here; the view reads them
// on each tick. Holding only the latest state (instead of a token
// queue) keeps rendering at the tick rate regardless of fragment rate.
//
// Thread-safety: writes happen on the streaming goroutine, reads on the
// main loop, so every operation takes the mutex.
type StreamSnapshot struct {
	mu      sync.Mutex
	stage   stage.Stage
	staged  bool
	text    string
	version uint64
}

// NewStreamSnapshot creates an empty snapshot.
func NewStreamSnapshot() *StreamSnapshot {
	return &StreamSnapshot{}
}

// SetStage records the latest processing stage.
func (s *StreamSnapshot) SetStage(st stage.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = st
	s.staged = true
	s.version++
}

// SetText records the latest full display text.
func (s *StreamSnapshot) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.version++
}

// Reset clears the snapshot for a new session.
func (s *StreamSnapshot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = 0
	s.staged = false
	s.text = ""
	s.version++
}

// State returns the latest stage (valid only when staged is true), the
// display text so far, and a version counter that increments on every
// write. Callers skip re-rendering when the version has not moved.
func (s *StreamSnapshot) State() (st stage.Stage, staged bool, text string, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage, s.staged, s.text, s.version
}

// =============================================================================
// STREAM TICK COMMAND
// =============================================================================

// streamTickInterval caps transcript re-renders at roughly 30 frames
// per second during streaming.
const streamTickInterval = 33 * time.Millisecond

// streamTickCmd schedules the next snapshot poll.
func streamTickCmd() tea.Cmd {
	return tea.Tick(streamTickInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
