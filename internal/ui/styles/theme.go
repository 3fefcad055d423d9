// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds detected terminal capabilities and the style set used by
// the chat view. Construct one with NewTheme; styles are sized lazily
// by SetSize when the terminal dimensions become known.
type Theme struct {
	// Detected capabilities.
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Current terminal dimensions.
	Width  int
	Height int

	// Chrome.
	Header    lipgloss.Style
	HeaderTag lipgloss.Style
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	ErrorBox  lipgloss.Style

	// Conversation.
	UserBubble      lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemBubble    lipgloss.Style
	SourceHeading   lipgloss.Style
	SourceLink      lipgloss.Style
	Timestamp       lipgloss.Style

	// Input.
	InputBox lipgloss.Style

	// Empty state.
	Welcome lipgloss.Style
}

// NewTheme detects the terminal and builds the style set.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// SetSize records the terminal dimensions and resizes width-dependent
// styles. Call it on every resize event.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height

	bubbleWidth := width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	t.UserBubble = t.UserBubble.MaxWidth(bubbleWidth)
	t.AssistantBubble = t.AssistantBubble.MaxWidth(bubbleWidth)
	t.SystemBubble = t.SystemBubble.MaxWidth(bubbleWidth)
	t.StatusBar = t.StatusBar.Width(width)
	t.Header = t.Header.Width(width)
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)

	t.HeaderTag = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(UserBubbleBg).
		Padding(0, 1).
		MarginLeft(4)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(AssistantBubbleBg).
		Padding(0, 1)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SystemBubbleBg).
		Italic(true).
		Padding(0, 1)

	t.SourceHeading = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.SourceLink = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Welcome = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)
}
