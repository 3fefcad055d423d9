// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the terminal
// client.
//
// The view is a Bubble Tea model wrapping a viewport for the
// conversation transcript, a textarea for input, and a stage spinner
// that tracks the server's processing phases while an answer streams
// in.
//
// Streaming runs off the Bubble Tea loop: a command goroutine drives
// stream.Controller.Run, whose handler callbacks write into a shared
// StreamSnapshot. The view polls the snapshot on a fixed tick, so
// rendering is capped at a steady frame rate no matter how fast
// fragments arrive.
//
// # Key Types
//
//   - Model: the Bubble Tea model for the chat view
//   - StreamSnapshot: thread-safe latest-state cell bridging the
//     streaming goroutine and the render loop
//
// # Usage
//
//	m := chat.New(cfg, transport, store)
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
package chat
