// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "strings"

// =============================================================================
// EVENT STREAM
// =============================================================================

// EventKind distinguishes the two lexer outputs.
type EventKind int

const (
	// EventText carries a run of assistant display text.
	EventText EventKind = iota
	// EventSignal carries one detected sentinel.
	EventSignal
)

// Event is one lexer output: either a text run or a signal, emitted in the
// exact order the corresponding bytes appear on the wire.
type Event struct {
	Kind   EventKind
	Text   string
	Signal Signal
}

// =============================================================================
// INCREMENTAL LEXER
// =============================================================================

// Lexer tokenizes the response stream incrementally. Fragments may split a
// sentinel at any byte boundary; the lexer holds back any trailing bytes
// that are still a viable marker prefix until the next Feed or Flush
// resolves them. A Lexer is not safe for concurrent use; the session
// controller owns exactly one per stream.
type Lexer struct {
	pending string
}

// NewLexer returns a lexer ready for the first fragment.
func NewLexer() *Lexer {
	return &Lexer{}
}

// Feed consumes the next fragment and returns the events it completes.
// Bytes that could still be the start of a marker are withheld; they are
// released by a later Feed or by Flush.
func (l *Lexer) Feed(fragment string) []Event {
	events, rest := scan(l.pending+fragment, false)
	l.pending = rest
	return events
}

// Flush releases any withheld tail at end of stream. A partial marker that
// never completed is plain text.
func (l *Lexer) Flush() []Event {
	events, _ := scan(l.pending, true)
	l.pending = ""
	return events
}

// Pending returns the currently withheld tail. Exposed for the session
// controller's end-of-stream accounting.
func (l *Lexer) Pending() string {
	return l.pending
}

// =============================================================================
// SCANNER CORE
// =============================================================================

// scan walks buf once, splitting it into text runs and signals. When atEnd
// is false, a trailing span that is still a viable marker prefix is returned
// as rest instead of being emitted; when atEnd is true everything is
// resolved and rest is empty.
func scan(buf string, atEnd bool) (events []Event, rest string) {
	var text strings.Builder
	i := 0

	flushText := func() {
		if text.Len() > 0 {
			events = append(events, Event{Kind: EventText, Text: text.String()})
			text.Reset()
		}
	}

	for i < len(buf) {
		// Markers start with '_', '#', or the newline of a fenced variant.
		c := buf[i]
		if c != '_' && c != '#' && c != '\n' {
			text.WriteByte(c)
			i++
			continue
		}

		if m, ok := matchMarkerAt(buf, i); ok {
			flushText()
			events = append(events, Event{Kind: EventSignal, Signal: m.signal})
			i += len(m.token)
			continue
		}

		// The remainder may be the front half of a marker whose tail has
		// not arrived yet. Only the last maxMarkerLen-1 bytes can qualify,
		// which keeps the withheld span bounded.
		if !atEnd && len(buf)-i < maxMarkerLen && isMarkerPrefix(buf[i:]) {
			flushText()
			return events, buf[i:]
		}

		text.WriteByte(c)
		i++
	}

	flushText()
	return events, ""
}

// =============================================================================
// ONE-SHOT DETECTION
// =============================================================================

// DetectAndStrip scans a complete buffer, returning the text with every
// sentinel removed and the signals in buffer order. It is a pure function
// and idempotent: running it again on cleaned text yields no signals.
func DetectAndStrip(buffer string) (cleaned string, signals []Signal) {
	events, _ := scan(buffer, true)
	var sb strings.Builder
	for _, ev := range events {
		switch ev.Kind {
		case EventText:
			sb.WriteString(ev.Text)
		case EventSignal:
			signals = append(signals, ev.Signal)
		}
	}
	return sb.String(), signals
}
