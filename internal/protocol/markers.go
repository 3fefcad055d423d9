// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "strings"

// =============================================================================
// SIGNAL VOCABULARY
// =============================================================================

// Signal identifies one in-band sentinel detected in the response stream.
// Signals are ephemeral: produced and consumed within one fragment-processing
// step, never persisted.
type Signal int

const (
	SignalNone Signal = iota
	SignalAnalysisStarted
	SignalAnalysisFinished
	SignalRetrievalStarted
	SignalAnalyzingSources
	SignalRetrievingMoreSources
	SignalWebVerifying
	SignalDocsRetrieved
	SignalChunks
	SignalComplete
)

// String returns the signal name for logging and test failure output.
func (s Signal) String() string {
	switch s {
	case SignalAnalysisStarted:
		return "analysis_started"
	case SignalAnalysisFinished:
		return "analysis_finished"
	case SignalRetrievalStarted:
		return "retrieval_started"
	case SignalAnalyzingSources:
		return "analyzing_sources"
	case SignalRetrievingMoreSources:
		return "retrieving_more_sources"
	case SignalWebVerifying:
		return "web_verifying"
	case SignalDocsRetrieved:
		return "docs_retrieved"
	case SignalChunks:
		return "chunks"
	case SignalComplete:
		return "complete"
	default:
		return "none"
	}
}

// =============================================================================
// MARKER TABLE
// =============================================================================

// marker binds one literal wire token to its signal. The hash-fence tokens
// exist in two spellings because the backend normally prefixes them with a
// newline but is not guaranteed to.
type marker struct {
	token  string
	signal Signal
}

// markerTable lists every sentinel the backend emits. Order matters only for
// tokens sharing a prefix at the same buffer position: longer tokens are
// listed before their shorter variants so "\n###CHUNKS###" wins over
// "###CHUNKS###" and consumes the leading newline.
var markerTable = []marker{
	{"__ANALYSIS_STARTED__", SignalAnalysisStarted},
	{"__ANALYSIS_FINISHED__", SignalAnalysisFinished},
	{"__RETRIEVAL_STARTED__", SignalRetrievalStarted},
	{"__ANALYZING_SOURCES__", SignalAnalyzingSources},
	{"__RETRIEVING_MORE_SOURCES__", SignalRetrievingMoreSources},
	{"__WEB_VERIFYING__", SignalWebVerifying},
	{"__DOCS_RETRIEVED_FLAG__", SignalDocsRetrieved},
	{"\n###CHUNKS###", SignalChunks},
	{"###CHUNKS###", SignalChunks},
	{"\n###COMPLETE###", SignalComplete},
	{"###COMPLETE###", SignalComplete},
}

// maxMarkerLen bounds how much buffer tail the lexer must hold back to
// guarantee a sentinel split across fragments is never missed.
var maxMarkerLen = func() int {
	max := 0
	for _, m := range markerTable {
		if len(m.token) > max {
			max = len(m.token)
		}
	}
	return max
}()

// matchMarkerAt returns the marker starting at buf[i], preferring the
// longest token when variants overlap. The second result is false when no
// marker starts there.
func matchMarkerAt(buf string, i int) (marker, bool) {
	best := marker{}
	found := false
	for _, m := range markerTable {
		if strings.HasPrefix(buf[i:], m.token) {
			if !found || len(m.token) > len(best.token) {
				best = m
				found = true
			}
		}
	}
	return best, found
}

// isMarkerPrefix reports whether s could still grow into a complete marker
// token once more bytes arrive. Used by the lexer to decide how much buffer
// tail to hold back at a fragment boundary.
func isMarkerPrefix(s string) bool {
	if s == "" {
		return false
	}
	for _, m := range markerTable {
		if len(s) < len(m.token) && strings.HasPrefix(m.token, s) {
			return true
		}
	}
	return false
}
