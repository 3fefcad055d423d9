// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable pieces for the chat interface.
//
// # Key Types
//
//   - StageSpinner: animated indicator showing the current processing
//     stage of a streaming answer, with elapsed time
//
// # Usage
//
//	sp := components.NewStageSpinner()
//	cmd := sp.Start(stage.Analyzing)
package components
