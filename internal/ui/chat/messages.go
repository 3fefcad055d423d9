// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/fiscus-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamDoneMsg delivers the outcome of a finished session. Err is set
// when the transport failed; Final is valid only when Err is nil. Seq
// identifies the session so stale results are discarded.
type StreamDoneMsg struct {
	Seq   int
	Final model.FinalMessage
	Err   error
}

// StreamTickMsg drives the render loop while streaming, polling the
// snapshot at a fixed rate.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationSavedMsg reports the result of persisting the current
// conversation to history.
type ConversationSavedMsg struct {
	Err error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ClearErrorMsg dismisses the error banner after its display period.
type ClearErrorMsg struct{}
