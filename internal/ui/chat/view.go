// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/fiscus-tui/internal/model"
)

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes the layout for new terminal dimensions.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	headerHeight := 1
	inputHeight := 5
	statusHeight := 1
	spinnerHeight := 1
	vpHeight := height - headerHeight - inputHeight - statusHeight - spinnerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(width - 4)

	m.refreshTranscript()
}

// View renders the full chat screen.
func (m *Model) View() string {
	if m.quitting {
		return "Tot ziens!\n"
	}
	if !m.ready {
		return "Bezig met laden..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.theme.InputBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := "fiscus"
	if m.controller.WebSearch() {
		title += "  " + m.theme.HeaderTag.Render("[diep zoeken]")
	}
	return m.theme.Header.Render(title)
}

// renderStatusLine shows the spinner while streaming, or the error
// banner when a session failed.
func (m *Model) renderStatusLine() string {
	if m.lastErr != nil {
		return m.theme.ErrorBox.Render("Fout: " + m.lastErr.Error())
	}
	if m.streaming {
		return m.spinner.View()
	}
	return ""
}

func (m *Model) renderFooter() string {
	keys := []string{
		m.theme.StatusKey.Render("enter") + " verstuur",
		m.theme.StatusKey.Render("ctrl+w") + " diep zoeken",
		m.theme.StatusKey.Render("ctrl+n") + " nieuw gesprek",
		m.theme.StatusKey.Render("esc") + " annuleer",
		m.theme.StatusKey.Render("ctrl+c") + " afsluiten",
	}
	return m.theme.StatusBar.Render(strings.Join(keys, "  "))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport and
// pins the view to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	var b strings.Builder
	if m.conversation.Len() == 0 && !m.streaming {
		b.WriteString(m.theme.Welcome.Render(
			"Welkom bij fiscus.\n" +
				"Stel een vraag over de Nederlandse belastingen.\n" +
				"Gebruik ctrl+w om diep zoeken met webbronnen aan te zetten."))
	}

	for _, msg := range m.conversation.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}

	if m.streaming && m.streamingTxt != "" {
		b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		// Partial text renders plain; markdown formatting waits for the
		// complete answer to avoid flicker on half-open constructs.
		b.WriteString(m.theme.AssistantBubble.Render(m.streamingTxt))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// renderMessage renders one transcript entry with its label, body and
// source list.
func (m *Model) renderMessage(msg model.Message) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.UserBubble.Render(msg.Content))

	case model.RoleAssistant:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Content)))
		if m.showSources && len(msg.Sources) > 0 {
			b.WriteString("\n")
			b.WriteString(m.renderSources(msg.Sources))
		}

	default:
		b.WriteString(m.theme.SystemBubble.Render(msg.Content))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Timestamp.Render(msg.Timestamp.Format("15:04")))
	return b.String()
}

// renderMarkdown formats a complete answer. Falls back to the raw text
// when the renderer is unavailable or fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// renderSources renders the source list under an answer.
func (m *Model) renderSources(sources []model.SourceReference) string {
	var b strings.Builder
	b.WriteString(m.theme.SourceHeading.Render("Bronnen:"))
	for _, src := range sources {
		b.WriteString("\n  ")
		b.WriteString(src.Title)
		b.WriteString(" - ")
		b.WriteString(m.theme.SourceLink.Render(src.SourceURL))
	}
	return b.String()
}
