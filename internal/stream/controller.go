// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/protocol"
	"github.com/jeranaias/fiscus-tui/internal/stage"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Fragment is one incrementally-decoded delivery from the transport. Err is
// non-nil only on the final fragment of a failed stream.
type Fragment struct {
	Text string
	Err  error
}

// Transport opens the streaming backend call. The returned channel is
// closed at end of stream; the controller performs no retries. Senders
// must select on ctx.Done() when delivering fragments, because the
// controller stops reading once it has seen the completion sentinel.
type Transport interface {
	Send(ctx context.Context, req Request) (<-chan Fragment, error)
}

// Request is one user submission. History carries the prior turns only;
// the message being asked is never repeated in it. WebSearch is filled in
// by the controller from its deep-search flag before the transport call.
type Request struct {
	ConversationID string
	Message        string
	History        []model.Message
	WebSearch      bool
}

// Handler receives the externally observable effects of a session. Any
// field may be nil. OnText receives the full cleaned display text so far,
// not a delta.
type Handler struct {
	OnStage    func(stage.Stage)
	OnText     func(string)
	OnComplete func(model.FinalMessage)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the timer source used for stage fallbacks.
func WithClock(c stage.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithFallbackSchedule overrides the stage fallback timing.
func WithFallbackSchedule(s stage.FallbackSchedule) Option {
	return func(ctrl *Controller) { ctrl.schedule = s }
}

// Controller runs stream sessions for one chat view. At most one session
// is active: Run supersedes any session still in flight, cancelling its
// timers and silencing its callbacks.
type Controller struct {
	transport Transport
	handler   Handler
	clock     stage.Clock
	schedule  stage.FallbackSchedule

	mu         sync.Mutex
	gen        uint64
	cancelPrev context.CancelFunc
	webSearch  bool
}

// NewController builds a controller around a transport and a handler.
func NewController(transport Transport, handler Handler, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		handler:   handler,
		clock:     stage.SystemClock(),
		schedule:  stage.DefaultFallbackSchedule(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetWebSearch toggles deep-search mode for subsequent sessions. The flag
// auto-disables after a completed session; the user re-enables it per
// question.
func (c *Controller) SetWebSearch(on bool) {
	c.mu.Lock()
	c.webSearch = on
	c.mu.Unlock()
}

// WebSearch reports the current deep-search mode.
func (c *Controller) WebSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.webSearch
}

// begin registers a new session generation, superseding any previous one.
func (c *Controller) begin(cancel context.CancelFunc) (gen uint64, web bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPrev != nil {
		c.cancelPrev()
	}
	c.cancelPrev = cancel
	c.gen++
	return c.gen, c.webSearch
}

// current reports whether the given generation is still the active session.
// Stale sessions keep draining their transport but no longer touch the UI.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// finishWebSearch clears the deep-search flag after the given generation
// completed, unless a newer session has already taken over the flag.
func (c *Controller) finishWebSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.webSearch = false
	}
}

// Run executes one session to completion. It blocks until the stream ends
// or fails; callers drive it from their own goroutine (the TUI wraps it in
// a command). On success the handler has received exactly one OnComplete.
// On transport failure Run returns the error and no final message is
// emitted; the partial text already delivered through OnText stands.
func (c *Controller) Run(ctx context.Context, req Request) (model.FinalMessage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen, web := c.begin(cancel)
	req.WebSearch = web

	s := &session{
		ctrl: c,
		gen:  gen,
		lex:  protocol.NewLexer(),
	}
	s.machine = stage.New(stage.Config{
		WebSearch: web,
		Clock:     c.clock,
		Schedule:  c.schedule,
		OnChange: func(st stage.Stage) {
			if c.current(gen) && c.handler.OnStage != nil {
				c.handler.OnStage(st)
			}
		},
	})

	fragments, err := c.transport.Send(ctx, req)
	if err != nil {
		s.machine.Stop()
		return model.FinalMessage{}, fmt.Errorf("verzoek starten mislukt: %w", err)
	}

	s.machine.Start()
	defer s.machine.Stop()

	for frag := range fragments {
		if frag.Err != nil {
			// Transport failure: abort without a final message. The text
			// already on screen stays in its last-good partial state.
			return model.FinalMessage{}, fmt.Errorf("stream afgebroken: %w", frag.Err)
		}
		s.raw.WriteString(frag.Text)
		s.process(c, s.lex.Feed(frag.Text))
		if s.completed {
			break
		}
	}

	if !s.completed {
		// End of stream without a completion sentinel: synthesize one so
		// every session terminates with exactly one final message.
		s.process(c, s.lex.Flush())
	}
	if !s.completed {
		s.finalize(c)
	}

	c.finishWebSearch(gen)
	return s.final, nil
}

// =============================================================================
// SESSION STATE
// =============================================================================

// session holds the mutable state of one in-flight request. It is owned by
// a single Run invocation; nothing else mutates it.
type session struct {
	ctrl    *Controller
	gen     uint64
	lex     *protocol.Lexer
	machine *stage.Machine

	raw     strings.Builder
	display strings.Builder
	tail    strings.Builder

	inTail    bool
	sources   []model.SourceReference
	completed bool
	final     model.FinalMessage
}

// process applies a batch of lexer events in wire order.
func (s *session) process(c *Controller, events []protocol.Event) {
	for _, ev := range events {
		if s.completed {
			return
		}
		switch ev.Kind {
		case protocol.EventText:
			s.onText(c, ev.Text)
		case protocol.EventSignal:
			s.onSignal(c, ev.Signal)
		}
	}
}

func (s *session) onText(c *Controller, text string) {
	if s.inTail {
		// Everything after the chunks sentinel is payload, not prose.
		// Sources stay provisional until completion: each re-send replaces
		// the previous parse, the lists are never merged.
		s.tail.WriteString(text)
		if res := protocol.ExtractSources(s.tail.String()); res.Valid {
			s.sources = res.Sources
		}
		return
	}
	s.display.WriteString(text)
	if c.current(s.gen) && c.handler.OnText != nil {
		c.handler.OnText(s.display.String())
	}
}

func (s *session) onSignal(c *Controller, sig protocol.Signal) {
	switch sig {
	case protocol.SignalChunks:
		if s.inTail {
			// Re-sent payload: the new tail starts fresh. The last
			// successful parse in s.sources survives until the new
			// payload parses.
			s.tail.Reset()
		}
		s.inTail = true
	case protocol.SignalComplete:
		s.finalize(c)
	default:
		s.machine.Apply(sig)
	}
}

// finalize assembles the immutable final message and emits it once. The
// handler receives a copy, never a reference into the session's buffers.
func (s *session) finalize(c *Controller) {
	if s.completed {
		return
	}
	s.completed = true
	s.machine.Stop()

	sources := make([]model.SourceReference, len(s.sources))
	copy(sources, s.sources)
	s.final = model.FinalMessage{
		Text:       strings.TrimSpace(s.display.String()),
		Sources:    sources,
		IsComplete: true,
	}

	if c.current(s.gen) && c.handler.OnComplete != nil {
		c.handler.OnComplete(s.final.Clone())
	}
}
