// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stream"
)

// =============================================================================
// COMMANDS
// =============================================================================

// streamCmd runs one streaming session in a goroutine. The controller's
// handler callbacks feed the snapshot while this command blocks; the
// returned message carries the final answer or the failure. The
// sequence number lets the update loop drop results from sessions the
// user already cancelled or superseded. history is the caller's
// pre-submission copy of the transcript, so the update loop can keep
// appending while the session runs.
func (m *Model) streamCmd(question string, history []model.Message, seq int) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	ctrl := m.controller
	req := stream.Request{
		ConversationID: m.conversation.ID,
		Message:        question,
		History:        history,
	}
	return func() tea.Msg {
		final, err := ctrl.Run(ctx, req)
		return StreamDoneMsg{Seq: seq, Final: final, Err: err}
	}
}

// saveCmd persists the conversation to history. No-op when history is
// disabled. The clone keeps the goroutine off the live transcript, which
// the update loop keeps mutating.
func (m *Model) saveCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	conv := m.conversation.Clone()
	return func() tea.Msg {
		return ConversationSavedMsg{Err: store.Save(conv)}
	}
}

// clearErrCmd dismisses the error banner after a short display period.
func clearErrCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
