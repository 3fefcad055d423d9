// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLOR PALETTE
// =============================================================================

// Core palette. AdaptiveColor picks the Light/Dark value based on the
// detected terminal background, so the same style set works in both.
var (
	// Purple is the primary brand color, used for headers and the
	// assistant identity.
	Purple = lipgloss.AdaptiveColor{Light: "#6B46C1", Dark: "#A78BFA"}

	// Cyan marks interactive elements and links.
	Cyan = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"}

	// Emerald signals success and completed answers.
	Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#6EE7B7"}

	// Rose signals errors.
	Rose = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FDA4AF"}

	// Amber signals warnings and in-progress retrieval stages.
	Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}
)

// Surface colors for panels and bubbles.
var (
	Surface       = lipgloss.AdaptiveColor{Light: "#F8FAFC", Dark: "#1E293B"}
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#0F172A"}
	SurfaceBright = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#334155"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#475569"}
)

// Text colors.
var (
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#F1F5F9"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94A3B8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#F8FAFC", Dark: "#0F172A"}
)

// Chat bubble colors.
var (
	UserBubbleBg      = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#4C1D95"}
	AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#1E293B"}
	SystemBubbleBg    = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#44403C"}
)

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicators are ASCII-safe prefixes for plain (non-TUI) output.
// ASCII keeps them readable on terminals without good glyph coverage.
type StatusIndicators struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// Indicators is the shared indicator set.
var Indicators = StatusIndicators{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

var (
	successStyle = lipgloss.NewStyle().Foreground(Emerald)
	errorStyle   = lipgloss.NewStyle().Foreground(Rose)
	warningStyle = lipgloss.NewStyle().Foreground(Amber)
	infoStyle    = lipgloss.NewStyle().Foreground(Cyan)
	linkStyle    = lipgloss.NewStyle().Foreground(Cyan).Underline(true)
)

// RenderSuccess renders a success line with its indicator.
func RenderSuccess(text string) string {
	return successStyle.Render(Indicators.Success + " " + text)
}

// RenderError renders an error line with its indicator.
func RenderError(text string) string {
	return errorStyle.Render(Indicators.Error + " " + text)
}

// RenderWarning renders a warning line with its indicator.
func RenderWarning(text string) string {
	return warningStyle.Render(Indicators.Warning + " " + text)
}

// RenderInfo renders an informational line with its indicator.
func RenderInfo(text string) string {
	return infoStyle.Render(Indicators.Info + " " + text)
}

// RenderLink renders a source URL in link styling.
func RenderLink(url string) string {
	return linkStyle.Render(url)
}
