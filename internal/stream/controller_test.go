// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// scriptTransport replays a fixed list of fragments.
type scriptTransport struct {
	fragments []string
	err       error
}

func (t *scriptTransport) Send(ctx context.Context, req Request) (<-chan Fragment, error) {
	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		for _, f := range t.fragments {
			select {
			case ch <- Fragment{Text: f}:
			case <-ctx.Done():
				return
			}
		}
		if t.err != nil {
			select {
			case ch <- Fragment{Err: t.err}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

// recorder collects handler callbacks.
type recorder struct {
	mu        sync.Mutex
	stages    []stage.Stage
	texts     []string
	completes []model.FinalMessage
}

func (r *recorder) handler() Handler {
	return Handler{
		OnStage: func(s stage.Stage) {
			r.mu.Lock()
			r.stages = append(r.stages, s)
			r.mu.Unlock()
		},
		OnText: func(t string) {
			r.mu.Lock()
			r.texts = append(r.texts, t)
			r.mu.Unlock()
		},
		OnComplete: func(m model.FinalMessage) {
			r.mu.Lock()
			r.completes = append(r.completes, m)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) lastText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

// noopClock never fires fallback timers, keeping stage changes signal-only.
type noopClock struct{}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (noopClock) AfterFunc(d time.Duration, f func()) stage.Timer { return noopTimer{} }

func runScript(t *testing.T, fragments []string) (*recorder, model.FinalMessage, error) {
	t.Helper()
	rec := &recorder{}
	c := NewController(&scriptTransport{fragments: fragments}, rec.handler(), WithClock(noopClock{}))
	final, err := c.Run(context.Background(), Request{Message: "vraag"})
	return rec, final, err
}

// =============================================================================
// TESTS
// =============================================================================

const cleanResponse = "Het antwoord is 42.__RETRIEVAL_STARTED__\n###CHUNKS###{\"filtered_urls\":[\"https://a.nl\"]}\n###COMPLETE###"

func TestCleanResponse(t *testing.T) {
	rec, final, err := runScript(t, []string{cleanResponse})
	require.NoError(t, err)

	assert.Equal(t, "Het antwoord is 42.", final.Text)
	require.Len(t, final.Sources, 1)
	assert.Equal(t, "link_0", final.Sources[0].ID)
	assert.Equal(t, "Bron 1", final.Sources[0].Title)
	assert.Equal(t, "https://a.nl", final.Sources[0].SourceURL)
	assert.True(t, final.IsComplete)

	assert.Equal(t, []stage.Stage{stage.Retrieving}, rec.stages)
	require.Len(t, rec.completes, 1)
	assert.Equal(t, final, rec.completes[0])
	assert.Equal(t, "Het antwoord is 42.", rec.lastText())
}

// Splitting the response at every byte boundary must never change the
// outcome, including splits in the middle of a sentinel.
func TestFragmentBoundaryEquality(t *testing.T) {
	_, want, err := runScript(t, []string{cleanResponse})
	require.NoError(t, err)

	for split := 0; split <= len(cleanResponse); split++ {
		rec, final, err := runScript(t, []string{cleanResponse[:split], cleanResponse[split:]})
		require.NoError(t, err, "split at %d", split)
		assert.Equal(t, want, final, "split at %d", split)
		assert.Equal(t, []stage.Stage{stage.Retrieving}, rec.stages, "split at %d", split)
	}
}

func TestMalformedTailDegrades(t *testing.T) {
	rec, final, err := runScript(t, []string{
		"Deels een antwoord.",
		"\n###CHUNKS###{filtered_urls:[bad json",
		"\n###COMPLETE###",
	})
	require.NoError(t, err)

	assert.Equal(t, "Deels een antwoord.", final.Text)
	assert.Empty(t, final.Sources)
	assert.True(t, final.IsComplete)
	require.Len(t, rec.completes, 1)
}

func TestDuplicateCompleteMarkerEmitsOnce(t *testing.T) {
	rec, final, err := runScript(t, []string{
		"antwoord\n###COMPLETE###\n###COMPLETE###",
	})
	require.NoError(t, err)

	assert.True(t, final.IsComplete)
	assert.Len(t, rec.completes, 1)
}

func TestMissingCompleteMarkerSynthesized(t *testing.T) {
	rec, final, err := runScript(t, []string{
		"antwoord zonder afsluiting",
	})
	require.NoError(t, err)

	assert.Equal(t, "antwoord zonder afsluiting", final.Text)
	assert.True(t, final.IsComplete)
	assert.Len(t, rec.completes, 1)
}

func TestChunksResendUsesLatestParse(t *testing.T) {
	_, final, err := runScript(t, []string{
		"antwoord\n###CHUNKS###{\"filtered_urls\":[\"https://oud.nl\"]}",
		"\n###CHUNKS###{\"filtered_urls\":[\"https://nieuw.nl\"]}",
		"\n###COMPLETE###",
	})
	require.NoError(t, err)

	// The lists are replaced, never merged.
	require.Len(t, final.Sources, 1)
	assert.Equal(t, "https://nieuw.nl", final.Sources[0].SourceURL)
}

func TestChunksResendSplitAcrossFragments(t *testing.T) {
	_, final, err := runScript(t, []string{
		"antwoord\n###CHUNKS###{\"filtered_urls\":[\"https://oud.nl\"]}",
		"\n###CHUNKS###{\"filtered_urls\":",
		"[\"https://nieuw.nl\",\"https://wetten.overheid.nl\"]}",
		"\n###COMPLETE###",
	})
	require.NoError(t, err)

	require.Len(t, final.Sources, 2)
	assert.Equal(t, "https://nieuw.nl", final.Sources[0].SourceURL)
	assert.Equal(t, "https://wetten.overheid.nl", final.Sources[1].SourceURL)
}

func TestChunksResendMalformedKeepsLastGoodParse(t *testing.T) {
	_, final, err := runScript(t, []string{
		"antwoord\n###CHUNKS###{\"filtered_urls\":[\"https://oud.nl\"]}",
		"\n###CHUNKS###{\"filtered_urls\":[",
		"\n###COMPLETE###",
	})
	require.NoError(t, err)

	// A re-send that never parses leaves the previous parse in place.
	require.Len(t, final.Sources, 1)
	assert.Equal(t, "https://oud.nl", final.Sources[0].SourceURL)
}

func TestTransportErrorAbortsWithoutFinalMessage(t *testing.T) {
	rec := &recorder{}
	transport := &scriptTransport{
		fragments: []string{"gedeeltelijke tekst"},
		err:       errors.New("verbinding verbroken"),
	}
	c := NewController(transport, rec.handler(), WithClock(noopClock{}))

	_, err := c.Run(context.Background(), Request{Message: "vraag"})
	require.Error(t, err)

	// Partial text stands, but no final message was emitted.
	assert.Equal(t, "gedeeltelijke tekst", rec.lastText())
	assert.Empty(t, rec.completes)
}

func TestSendFailureReturnsError(t *testing.T) {
	rec := &recorder{}
	c := NewController(failingTransport{}, rec.handler(), WithClock(noopClock{}))

	_, err := c.Run(context.Background(), Request{Message: "vraag"})
	require.Error(t, err)
	assert.Empty(t, rec.completes)
}

type failingTransport struct{}

func (failingTransport) Send(ctx context.Context, req Request) (<-chan Fragment, error) {
	return nil, errors.New("503 service unavailable")
}

func TestWebSearchAutoDisablesAfterCompletion(t *testing.T) {
	rec := &recorder{}
	c := NewController(&scriptTransport{fragments: []string{"ok\n###COMPLETE###"}}, rec.handler(), WithClock(noopClock{}))

	c.SetWebSearch(true)
	require.True(t, c.WebSearch())

	_, err := c.Run(context.Background(), Request{Message: "vraag"})
	require.NoError(t, err)
	assert.False(t, c.WebSearch())
}

func TestWebModeStageMapping(t *testing.T) {
	rec := &recorder{}
	c := NewController(&scriptTransport{fragments: []string{
		"__RETRIEVAL_STARTED____WEB_VERIFYING____DOCS_RETRIEVED_FLAG__klaar\n###COMPLETE###",
	}}, rec.handler(), WithClock(noopClock{}))
	c.SetWebSearch(true)

	final, err := c.Run(context.Background(), Request{Message: "vraag"})
	require.NoError(t, err)

	assert.Equal(t, "klaar", final.Text)
	assert.Equal(t, []stage.Stage{stage.CollectingResults, stage.VerifyingUrls, stage.Reasoning}, rec.stages)
}

func TestNewSubmissionSupersedesPrevious(t *testing.T) {
	rec := &recorder{}

	// A transport that blocks until its context is cancelled, simulating a
	// stalled first request.
	stalled := &blockingTransport{started: make(chan struct{})}
	c := NewController(stalled, rec.handler(), WithClock(noopClock{}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Run(context.Background(), Request{Message: "eerste"})
	}()
	<-stalled.started

	// The second submission supersedes the first: only its completion may
	// reach the handler.
	c.transport = &scriptTransport{fragments: []string{"tweede antwoord\n###COMPLETE###"}}
	final, err := c.Run(context.Background(), Request{Message: "tweede"})
	require.NoError(t, err)
	<-done

	assert.Equal(t, "tweede antwoord", final.Text)
	require.Len(t, rec.completes, 1)
	assert.Equal(t, "tweede antwoord", rec.completes[0].Text)
}

type blockingTransport struct {
	started chan struct{}
}

func (t *blockingTransport) Send(ctx context.Context, req Request) (<-chan Fragment, error) {
	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		close(t.started)
		<-ctx.Done()
	}()
	return ch, nil
}
