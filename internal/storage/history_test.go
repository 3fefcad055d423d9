// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fiscus-tui/internal/model"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleConversation(question, answer string) *model.Conversation {
	conv := model.NewConversation()
	conv.Append(model.NewMessage(model.RoleUser, question))
	conv.Append(model.NewAssistantMessage(model.FinalMessage{
		Text: answer,
		Sources: []model.SourceReference{
			{ID: "link_0", Title: "Bron 1", SourceURL: "https://belastingdienst.nl"},
		},
		IsComplete: true,
	}))
	return conv
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("Wat is box 3?", "Box 3 belast vermogen.")

	require.NoError(t, store.Save(conv))

	loaded, err := store.Load(conv.ID)
	require.NoError(t, err)

	assert.Equal(t, conv.Title, loaded.Title)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, model.RoleUser, loaded.Messages[0].Role)
	assert.Equal(t, "Box 3 belast vermogen.", loaded.Messages[1].Content)
	require.Len(t, loaded.Messages[1].Sources, 1)
	assert.Equal(t, "Bron 1", loaded.Messages[1].Sources[0].Title)
}

func TestSaveIsUpsert(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("vraag", "antwoord")
	require.NoError(t, store.Save(conv))

	conv.Append(model.NewMessage(model.RoleUser, "vervolgvraag"))
	require.NoError(t, store.Save(conv))

	loaded, err := store.Load(conv.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 3)

	list, err := store.List(10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("bestaat-niet")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByRecency(t *testing.T) {
	store := newTestStore(t)

	older := sampleConversation("eerste vraag", "a")
	newer := sampleConversation("tweede vraag", "b")
	older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)
	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))

	list, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 2, list[0].MessageCount)
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(sampleConversation("Vraag over btw", "Het tarief is 21%.")))
	require.NoError(t, store.Save(sampleConversation("Iets anders", "Over de hypotheekrente.")))

	byTitle, err := store.Search("btw", 10)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Vraag over btw", byTitle[0].Title)

	byContent, err := store.Search("hypotheekrente", 10)
	require.NoError(t, err)
	assert.Len(t, byContent, 1)

	none, err := store.Search("dividendbelasting", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("vraag", "antwoord")
	require.NoError(t, store.Save(conv))

	require.NoError(t, store.Delete(conv.ID))
	_, err := store.Load(conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(conv.ID), ErrNotFound)
}

func TestClearAndPrune(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		conv := sampleConversation("vraag", "antwoord")
		conv.UpdatedAt = conv.UpdatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Save(conv))
	}

	require.NoError(t, store.Prune(2))
	list, err := store.List(10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Clear())
	list, err = store.List(10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
