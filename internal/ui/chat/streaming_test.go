// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
	"github.com/jeranaias/fiscus-tui/internal/stream"
)

// stubTransport satisfies stream.Transport without a backend.
type stubTransport struct{}

func (stubTransport) Send(ctx context.Context, req stream.Request) (<-chan stream.Fragment, error) {
	ch := make(chan stream.Fragment)
	close(ch)
	return ch, nil
}

// captureTransport records the request it is sent.
type captureTransport struct {
	mu  sync.Mutex
	req stream.Request
}

func (t *captureTransport) Send(ctx context.Context, req stream.Request) (<-chan stream.Fragment, error) {
	t.mu.Lock()
	t.req = req
	t.mu.Unlock()
	ch := make(chan stream.Fragment)
	close(ch)
	return ch, nil
}

func (t *captureTransport) request() stream.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.req
}

func TestStreamSnapshotLatestWins(t *testing.T) {
	snap := NewStreamSnapshot()

	_, staged, text, v0 := snap.State()
	assert.False(t, staged)
	assert.Empty(t, text)

	snap.SetText("Het antwoord")
	snap.SetText("Het antwoord is 42.")
	snap.SetStage(stage.Reasoning)

	st, staged, text, v1 := snap.State()
	assert.True(t, staged)
	assert.Equal(t, stage.Reasoning, st)
	assert.Equal(t, "Het antwoord is 42.", text)
	assert.Greater(t, v1, v0)
}

func TestStreamSnapshotReset(t *testing.T) {
	snap := NewStreamSnapshot()
	snap.SetStage(stage.Retrieving)
	snap.SetText("deels")

	snap.Reset()

	_, staged, text, _ := snap.State()
	assert.False(t, staged)
	assert.Empty(t, text)
}

func TestStreamSnapshotConcurrentWrites(t *testing.T) {
	snap := NewStreamSnapshot()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap.SetText("tekst")
				snap.SetStage(stage.Analyzing)
				snap.State()
			}
		}()
	}
	wg.Wait()

	st, staged, text, _ := snap.State()
	assert.True(t, staged)
	assert.Equal(t, stage.Analyzing, st)
	assert.Equal(t, "tekst", text)
}

func TestScheduleFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Search.FallbackDelayMs = 500
	cfg.Search.WebFallbackDelayMs = 1000

	sched := scheduleFromConfig(cfg)

	require.Len(t, sched.Direct, 1)
	assert.Equal(t, 500*time.Millisecond, sched.Direct[0].After)
	assert.Equal(t, stage.Retrieving, sched.Direct[0].Stage)

	require.Len(t, sched.Web, 2)
	assert.Equal(t, time.Second, sched.Web[0].After)
	assert.Equal(t, stage.PreparingSearch, sched.Web[0].Stage)
	assert.Equal(t, 5*time.Second, sched.Web[1].After)
	assert.Equal(t, stage.CollectingResults, sched.Web[1].Stage)
}

func TestScheduleFromConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Search.FallbackDelayMs = 0
	cfg.Search.WebFallbackDelayMs = 0

	sched := scheduleFromConfig(cfg)
	def := stage.DefaultFallbackSchedule()
	assert.Equal(t, def, sched)
}

func TestModelStartsWithConfiguredWebSearch(t *testing.T) {
	cfg := config.Default()
	cfg.Search.WebSearchDefault = true

	m := New(cfg, stubTransport{}, nil)
	assert.True(t, m.controller.WebSearch())
	assert.False(t, m.Streaming())
	assert.Zero(t, m.Conversation().Len())
}

func TestSubmitSendsPriorTurnsOnly(t *testing.T) {
	trans := &captureTransport{}
	m := New(config.Default(), trans, nil)
	m.resize(100, 40)

	m.conversation.Append(model.NewMessage(model.RoleUser, "Wat is box 1?"))
	m.conversation.Append(model.NewMessage(model.RoleAssistant, "Box 1 belast inkomen uit werk."))

	cmd := m.submit("En box 3?")
	require.NotNil(t, cmd)

	// Drain the batch so the stream command actually runs.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	var done StreamDoneMsg
	for _, c := range batch {
		if msg, ok := c().(StreamDoneMsg); ok {
			done = msg
		}
	}
	assert.Equal(t, m.runSeq, done.Seq)

	req := trans.request()
	assert.Equal(t, "En box 3?", req.Message)
	// The question lives in Message only; History is the prior turns.
	require.Len(t, req.History, 2)
	assert.Equal(t, "Wat is box 1?", req.History[0].Content)
	assert.Equal(t, "Box 1 belast inkomen uit werk.", req.History[1].Content)

	// The transcript itself does carry the question.
	last, ok := m.conversation.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "En box 3?", last.Content)
}

func TestPollSnapshotSkipsStaleVersion(t *testing.T) {
	m := New(config.Default(), stubTransport{}, nil)
	m.resize(100, 40)

	m.snapshot.SetText("eerste deel")
	m.pollSnapshot()
	assert.Equal(t, "eerste deel", m.streamingTxt)

	// No writes since the last poll: the view is left untouched.
	v := m.snapVersion
	m.streamingTxt = "onaangeraakt"
	m.pollSnapshot()
	assert.Equal(t, v, m.snapVersion)
	assert.Equal(t, "onaangeraakt", m.streamingTxt)

	m.snapshot.SetText("tweede deel")
	m.pollSnapshot()
	assert.Greater(t, m.snapVersion, v)
	assert.Equal(t, "tweede deel", m.streamingTxt)
}

func TestRenderMessageRoles(t *testing.T) {
	m := New(config.Default(), stubTransport{}, nil)
	m.resize(100, 40)

	user := model.NewMessage(model.RoleUser, "Wat is box 3?")
	out := m.renderMessage(user)
	assert.Contains(t, out, "Jij")
	assert.Contains(t, out, "Wat is box 3?")

	final := model.FinalMessage{
		Text: "Box 3 belast vermogen.",
		Sources: []model.SourceReference{
			{ID: "link_0", Title: "Bron 1", SourceURL: "https://belastingdienst.nl"},
		},
		IsComplete: true,
	}
	assistant := model.NewAssistantMessage(final)
	out = m.renderMessage(assistant)
	assert.Contains(t, out, "Fiscus")
	assert.Contains(t, out, "vermogen")
	assert.Contains(t, out, "Bronnen:")
	assert.Contains(t, out, "belastingdienst.nl")
}
