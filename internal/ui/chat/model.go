// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
	"github.com/jeranaias/fiscus-tui/internal/storage"
	"github.com/jeranaias/fiscus-tui/internal/stream"
	"github.com/jeranaias/fiscus-tui/internal/ui/components"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Collaborators.
	controller *stream.Controller
	store      *storage.HistoryStore // nil when history is disabled
	snapshot   *StreamSnapshot
	theme      *styles.Theme
	renderer   *glamour.TermRenderer

	// Components.
	viewport viewport.Model
	input    textarea.Model
	spinner  components.StageSpinner

	// Conversation state.
	conversation *model.Conversation
	streamingTxt string
	streaming    bool
	snapVersion  uint64 // last snapshot version rendered
	runSeq       int
	cancelStream context.CancelFunc

	// UI state.
	width       int
	height      int
	ready       bool
	showSources bool
	lastErr     error
	quitting    bool
}

// New builds the chat view. The transport is injected so tests can
// substitute a scripted backend; store may be nil to disable history.
func New(cfg *config.Config, transport stream.Transport, store *storage.HistoryStore) *Model {
	m := &Model{
		store:        store,
		snapshot:     NewStreamSnapshot(),
		theme:        styles.NewTheme(),
		conversation: model.NewConversation(),
		showSources:  cfg.UI.ShowSources,
		spinner:      components.NewStageSpinner(),
	}

	m.controller = stream.NewController(transport, stream.Handler{
		OnStage: m.snapshot.SetStage,
		OnText:  m.snapshot.SetText,
	}, stream.WithFallbackSchedule(scheduleFromConfig(cfg)))
	m.controller.SetWebSearch(cfg.Search.WebSearchDefault)

	m.input = textarea.New()
	m.input.Placeholder = "Stel een belastingvraag..."
	m.input.ShowLineNumbers = false
	m.input.SetHeight(3)
	m.input.CharLimit = 4000
	m.input.Focus()

	// Renderer failure falls back to plain text.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		m.renderer = renderer
	}

	return m
}

// scheduleFromConfig translates the configured fallback delays into a
// stage schedule, keeping the defaults for unset values.
func scheduleFromConfig(cfg *config.Config) stage.FallbackSchedule {
	sched := stage.DefaultFallbackSchedule()
	if cfg.Search.FallbackDelayMs > 0 {
		sched.Direct = []stage.FallbackStep{
			{After: time.Duration(cfg.Search.FallbackDelayMs) * time.Millisecond, Stage: stage.Retrieving},
		}
	}
	if cfg.Search.WebFallbackDelayMs > 0 {
		first := time.Duration(cfg.Search.WebFallbackDelayMs) * time.Millisecond
		sched.Web = []stage.FallbackStep{
			{After: first, Stage: stage.PreparingSearch},
			{After: first + 4*time.Second, Stage: stage.CollectingResults},
		}
	}
	return sched
}

// Conversation returns the current conversation.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Streaming reports whether an answer is currently in flight.
func (m *Model) Streaming() bool {
	return m.streaming
}
