// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "Wat is de zelfstandigenaftrek in 2025?")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "Wat is de zelfstandigenaftrek in 2025?", msg.Content)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		maxRunes int
		want     string
	}{
		{"short content unchanged", "kort", 20, "kort"},
		{"newlines flattened", "regel een\nregel twee", 40, "regel een regel twee"},
		{"truncated with ellipsis", "dit is een behoorlijk lange zin", 10, "dit is ..."},
		{"zero max returns all", "alles", 0, "alles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Message{Content: tt.content}
			assert.Equal(t, tt.want, msg.Preview(tt.maxRunes))
		})
	}
}

func TestFinalMessageClone(t *testing.T) {
	orig := FinalMessage{
		Text:       "antwoord",
		Sources:    []SourceReference{{ID: "link_0", Title: "Bron 1", SourceURL: "https://example.nl/a"}},
		IsComplete: true,
	}

	clone := orig.Clone()
	clone.Sources[0].Title = "gewijzigd"

	assert.Equal(t, "Bron 1", orig.Sources[0].Title)
	assert.True(t, clone.IsComplete)
}

func TestNewAssistantMessage(t *testing.T) {
	final := FinalMessage{
		Text:       "De aftrek bedraagt 2.470 euro.",
		Sources:    []SourceReference{{ID: "link_0", Title: "Bron 1", SourceURL: "https://belastingdienst.nl"}},
		IsComplete: true,
	}

	msg := NewAssistantMessage(final)

	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, final.Text, msg.Content)
	require.Len(t, msg.Sources, 1)
	assert.Equal(t, "Bron 1", msg.Sources[0].Title)
}

func TestConversationAppend(t *testing.T) {
	conv := NewConversation()
	require.NotEmpty(t, conv.ID)

	conv.Append(NewMessage(RoleUser, "Hoe werkt box 3?"))
	conv.Append(NewMessage(RoleAssistant, "Box 3 belast vermogen."))

	assert.Equal(t, 2, conv.Len())
	assert.Equal(t, "Hoe werkt box 3?", conv.Title)

	last, ok := conv.LastMessage()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
}

func TestConversationCloneIsIndependent(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewMessage(RoleUser, "Hoe werkt box 3?"))

	clone := conv.Clone()
	conv.Append(NewMessage(RoleAssistant, "Box 3 belast vermogen."))

	// Appends to the original do not reach the clone.
	assert.Equal(t, 2, conv.Len())
	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, conv.ID, clone.ID)
	assert.Equal(t, "Hoe werkt box 3?", clone.Messages[0].Content)
}

func TestConversationExportMarkdown(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewMessage(RoleUser, "Vraag over btw"))

	final := FinalMessage{
		Text:       "Het algemene tarief is 21%.",
		Sources:    []SourceReference{{ID: "link_0", Title: "Bron 1", SourceURL: "https://belastingdienst.nl/btw"}},
		IsComplete: true,
	}
	conv.Append(NewAssistantMessage(final))

	md := conv.ExportMarkdown()
	assert.True(t, strings.HasPrefix(md, "# Vraag over btw"))
	assert.Contains(t, md, "## Jij")
	assert.Contains(t, md, "## Fiscus")
	assert.Contains(t, md, "[Bron 1](https://belastingdienst.nl/btw)")
}

func TestConversationExportJSON(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewMessage(RoleUser, "test"))

	data, err := conv.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"messages"`)
}
