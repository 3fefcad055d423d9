// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Jij"
	case RoleAssistant:
		return "Fiscus"
	case RoleSystem:
		return "Systeem"
	default:
		return string(r)
	}
}

// =============================================================================
// SOURCE REFERENCE
// =============================================================================

// SourceReference identifies one source consulted while generating an answer.
// Produced only by chunks-payload extraction; an empty set is valid and means
// no sources were used.
type SourceReference struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
}

// =============================================================================
// FINAL MESSAGE
// =============================================================================

// FinalMessage is the immutable terminal artifact of a stream session.
// It is handed to the persistence collaborator exactly once per session,
// and never before the completion signal has been observed.
type FinalMessage struct {
	Text       string            `json:"text"`
	Sources    []SourceReference `json:"sources"`
	IsComplete bool              `json:"is_complete"`
}

// Clone returns a deep copy so callers can never reach back into the
// session's live buffers through a shared slice.
func (f FinalMessage) Clone() FinalMessage {
	out := FinalMessage{
		Text:       f.Text,
		IsComplete: f.IsComplete,
	}
	if f.Sources != nil {
		out.Sources = make([]SourceReference, len(f.Sources))
		copy(out.Sources, f.Sources)
	}
	return out
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string            `json:"content"`
	Sources []SourceReference `json:"sources,omitempty"`

	// Streaming state (not persisted)
	IsStreaming bool `json:"-"`
}

// NewMessage creates a message with a fresh ID and the current timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Timestamp: time.Now(),
		Content:   content,
	}
}

// NewAssistantMessage builds the persisted form of a completed stream.
func NewAssistantMessage(final FinalMessage) Message {
	msg := NewMessage(RoleAssistant, final.Text)
	if len(final.Sources) > 0 {
		msg.Sources = make([]SourceReference, len(final.Sources))
		copy(msg.Sources, final.Sources)
	}
	return msg
}

// Preview returns a single-line preview of the message content.
func (m Message) Preview(maxRunes int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	runes := []rune(content)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return content
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
