// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
)

// Init starts the textarea cursor blink.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update is the Bubble Tea message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case StreamTickMsg:
		if !m.streaming {
			return m, nil
		}
		m.pollSnapshot()
		cmds = append(cmds, streamTickCmd())

	case StreamDoneMsg:
		if msg.Seq != m.runSeq {
			// A cancelled or superseded session finished; ignore it.
			return m, nil
		}
		return m.finishStream(msg)

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			cmds = append(cmds, clearErrCmd())
		}

	case ClearErrorMsg:
		m.lastErr = nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Route remaining messages to the focused components.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes key bindings. It reports whether the key was
// consumed; unconsumed keys fall through to the components.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		if m.cancelStream != nil {
			m.cancelStream()
		}
		return tea.Quit, true

	case "esc":
		if m.streaming {
			m.abortStream()
			return nil, true
		}
		return nil, false

	case "ctrl+w":
		// Toggle deep search for the next question.
		m.controller.SetWebSearch(!m.controller.WebSearch())
		return nil, true

	case "ctrl+n":
		if !m.streaming {
			m.conversation = model.NewConversation()
			m.refreshTranscript()
		}
		return nil, true

	case "enter":
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.streaming {
			return nil, true
		}
		return m.submit(question), true

	case "pgup":
		m.viewport.HalfViewUp()
		return nil, true

	case "pgdown":
		m.viewport.HalfViewDown()
		return nil, true
	}
	return nil, false
}

// submit appends the user message and launches the streaming session.
// The history snapshot is taken before the append: the backend receives
// the question in Message only, not duplicated in History.
func (m *Model) submit(question string) tea.Cmd {
	history := append([]model.Message(nil), m.conversation.Messages...)
	m.conversation.Append(model.NewMessage(model.RoleUser, question))
	m.input.Reset()

	m.runSeq++
	m.streaming = true
	m.streamingTxt = ""
	m.snapshot.Reset()
	m.refreshTranscript()

	return tea.Batch(
		m.streamCmd(question, history, m.runSeq),
		m.spinner.Start(stage.Analyzing),
		streamTickCmd(),
	)
}

// abortStream cancels the in-flight session and keeps the partial text
// as an incomplete assistant message.
func (m *Model) abortStream() {
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.runSeq++ // orphan the pending StreamDoneMsg
	m.streaming = false
	m.spinner.Stop()

	if m.streamingTxt != "" {
		m.conversation.Append(model.NewMessage(model.RoleAssistant, m.streamingTxt))
	}
	m.streamingTxt = ""
	m.refreshTranscript()
}

// pollSnapshot pulls the latest streaming state into the view. Polls
// between writes leave the view untouched.
func (m *Model) pollSnapshot() {
	st, staged, text, version := m.snapshot.State()
	if version == m.snapVersion {
		return
	}
	m.snapVersion = version
	if staged {
		m.spinner.SetStage(st)
	}
	if text != m.streamingTxt {
		m.streamingTxt = text
		m.refreshTranscript()
	}
}

// finishStream lands the final answer in the conversation.
func (m *Model) finishStream(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	m.streaming = false
	m.spinner.Stop()
	m.cancelStream = nil

	if msg.Err != nil {
		// The partial text stays on screen as an incomplete answer.
		if m.streamingTxt != "" {
			m.conversation.Append(model.NewMessage(model.RoleAssistant, m.streamingTxt))
		}
		m.streamingTxt = ""
		m.lastErr = msg.Err
		m.refreshTranscript()
		return m, clearErrCmd()
	}
	m.streamingTxt = ""

	m.conversation.Append(model.NewAssistantMessage(msg.Final))
	m.refreshTranscript()
	return m, m.saveCmd()
}
