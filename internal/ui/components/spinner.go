// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fiscus-tui/internal/stage"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
)

// =============================================================================
// STAGE SPINNER
// =============================================================================

// StageSpinner shows the current processing stage of a streaming answer
// next to an animated spinner, with elapsed time since the request
// started.
type StageSpinner struct {
	spinner   spinner.Model
	stage     stage.Stage
	startTime time.Time
	active    bool
}

// NewStageSpinner creates a spinner with ASCII-safe frames.
func NewStageSpinner() StageSpinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return StageSpinner{spinner: s}
}

// Start activates the spinner at the given stage and records the start
// time.
func (s *StageSpinner) Start(st stage.Stage) tea.Cmd {
	s.active = true
	s.stage = st
	s.startTime = time.Now()
	return s.spinner.Tick
}

// SetStage updates the displayed stage without resetting the timer.
func (s *StageSpinner) SetStage(st stage.Stage) {
	s.stage = st
}

// Stop deactivates the spinner.
func (s *StageSpinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s *StageSpinner) Active() bool {
	return s.active
}

// Elapsed returns the duration since Start.
func (s *StageSpinner) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// Update handles spinner tick messages.
func (s StageSpinner) Update(msg tea.Msg) (StageSpinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner, the Dutch stage label and the elapsed time.
func (s StageSpinner) View() string {
	if !s.active {
		return ""
	}

	frame := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Render(s.spinner.View())

	label := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Render(s.stage.Label() + "...")

	result := frame + " " + label

	if !s.startTime.IsZero() {
		timer := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(time.Since(s.startTime)) + ")")
		result += timer
	}

	return result
}

// formatElapsed formats a duration for the timer display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return strconv.Itoa(seconds) + "s"
	}
	return strconv.Itoa(seconds/60) + "m " + strconv.Itoa(seconds%60) + "s"
}
