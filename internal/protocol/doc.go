// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol decodes the ad-hoc text protocol used by the fiscus
// backend for streamed chat responses. The wire format is plain UTF-8
// assistant text interleaved with literal sentinel tokens (for example
// "__RETRIEVAL_STARTED__" or "\n###COMPLETE###") and, after the chunks
// sentinel, a trailing JSON object listing the sources consulted.
//
// The stream has no framing, no length prefixes, and no escaping, so the
// decoder is built as a small incremental lexer rather than repeated
// substring search: it emits an ordered sequence of text runs and signals,
// and holds back any buffer tail that could still be the start of a
// sentinel split across network fragments.
//
// # Key Types
//
//   - Signal: enumeration of the sentinel vocabulary.
//   - Lexer: incremental tokenizer; Feed fragments, Flush at end of stream.
//   - Event: one text run or one signal, in wire order.
//   - ExtractSources: parses the trailing chunks payload with lossy recovery.
//
// # Usage
//
//	lx := protocol.NewLexer()
//	for fragment := range fragments {
//	    for _, ev := range lx.Feed(fragment) {
//	        // handle ev.Text or ev.Signal
//	    }
//	}
//	tail := lx.Flush()
package protocol
