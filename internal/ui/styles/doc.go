// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the terminal color palette and lipgloss
// styles for the chat interface.
//
// The palette is built from lipgloss.AdaptiveColor values so every
// style degrades gracefully across dark and light terminals. Theme
// detection (true color support, background luminance) happens once
// via termenv when a Theme is constructed.
//
// # Key Types
//
//   - Theme: detected terminal capabilities plus the full style set
//     used by the chat view
//   - StatusIndicators: ASCII status prefixes for non-TUI output
//
// # Usage
//
//	theme := styles.NewTheme()
//	fmt.Println(theme.UserBubble.Render("Wat is de MKB-winstvrijstelling?"))
package styles
