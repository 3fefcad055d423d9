// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered transcript of messages between a user and
// the assistant. Ordering is insertion order; the slice is never reordered.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// NewConversation creates an empty conversation with a fresh ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the transcript and refreshes UpdatedAt.
// The title is derived from the first user message if not set yet.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	if c.Title == "" && msg.Role == RoleUser {
		c.Title = msg.Preview(60)
	}
}

// Clone returns a copy whose Messages slice is independent of the
// original. Callers hand clones to goroutines; individual messages are
// immutable once appended, so they are shared.
func (c *Conversation) Clone() *Conversation {
	dup := *c
	dup.Messages = append([]Message(nil), c.Messages...)
	return &dup
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// LastMessage returns the most recent message, or a zero Message if empty.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Summary returns a one-line description suitable for list views.
func (c *Conversation) Summary() string {
	title := c.Title
	if title == "" {
		title = "(leeg gesprek)"
	}
	return fmt.Sprintf("%s (%d berichten, %s)", title, len(c.Messages), c.UpdatedAt.Format("2006-01-02 15:04"))
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the conversation as a Markdown document.
func (c *Conversation) ExportMarkdown() string {
	var sb strings.Builder

	title := c.Title
	if title == "" {
		title = "Gesprek"
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("Aangemaakt: " + c.CreatedAt.Format("2006-01-02 15:04") + "\n\n")

	for _, msg := range c.Messages {
		sb.WriteString("## " + msg.Role.DisplayName() + "\n\n")
		sb.WriteString(msg.Content + "\n\n")
		if len(msg.Sources) > 0 {
			sb.WriteString("Bronnen:\n\n")
			for _, src := range msg.Sources {
				if src.SourceURL != "" {
					sb.WriteString(fmt.Sprintf("- [%s](%s)\n", src.Title, src.SourceURL))
				} else {
					sb.WriteString(fmt.Sprintf("- %s\n", src.Title))
				}
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ExportJSON renders the conversation as indented JSON.
func (c *Conversation) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporteren van gesprek mislukt: %w", err)
	}
	return data, nil
}
