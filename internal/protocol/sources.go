// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/fiscus-tui/internal/model"
)

// =============================================================================
// CHUNKS PAYLOAD EXTRACTION
// =============================================================================

// SourceResult is the outcome of one chunks-payload extraction. Valid is
// true when a parse (strict or recovered) produced a usable payload; the
// session controller keeps only the most recent valid result. Recovered is
// true when the truncation heuristic had to repair the payload.
type SourceResult struct {
	Sources   []model.SourceReference
	Recovered bool
	Valid     bool
}

// chunksPayload is the wire shape of the trailing JSON object.
type chunksPayload struct {
	FilteredURLs []string `json:"filtered_urls"`
}

// ExtractSources parses the text following the chunks sentinel into source
// references. The tail may carry leading or trailing non-JSON noise (stray
// whitespace, the front of a completion sentinel the lexer has withheld),
// so the payload is located by brace span rather than parsed whole.
//
// RELIABILITY: this function never returns an error and never panics. A
// payload that cannot be parsed even after recovery degrades to an empty
// source list, because a malformed tail must never blank out assistant text
// that is already on screen.
func ExtractSources(tail string) SourceResult {
	trimmed := strings.TrimSpace(tail)

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end < 0 || start >= end {
		return SourceResult{}
	}
	slice := trimmed[start : end+1]

	var payload chunksPayload
	if err := json.Unmarshal([]byte(slice), &payload); err == nil {
		return SourceResult{Sources: mapSources(payload.FilteredURLs), Valid: true}
	}

	// Emergency recovery: the tail may include garbage after the real
	// object (or a truncated re-send glued onto a complete one). Retry at
	// progressively earlier closing braces. Lossy when the payload was
	// merely delayed rather than corrupted, but safe.
	for cut := strings.LastIndexByte(slice[:len(slice)-1], '}'); cut > 0; cut = strings.LastIndexByte(slice[:cut], '}') {
		if err := json.Unmarshal([]byte(slice[:cut+1]), &payload); err == nil {
			return SourceResult{Sources: mapSources(payload.FilteredURLs), Recovered: true, Valid: true}
		}
	}

	return SourceResult{}
}

// mapSources converts raw filtered_urls entries into source references.
// Each entry is either a bare URL or a markdown link "[label](url)"; the
// id is always positional, and a bare URL gets a numbered Dutch title.
func mapSources(urls []string) []model.SourceReference {
	sources := make([]model.SourceReference, 0, len(urls))
	for i, raw := range urls {
		ref := model.SourceReference{
			ID:    fmt.Sprintf("link_%d", i),
			Title: fmt.Sprintf("Bron %d", i+1),
		}
		if label, url, ok := parseMarkdownLink(raw); ok {
			if label != "" {
				ref.Title = label
			}
			ref.SourceURL = url
		} else {
			ref.SourceURL = strings.TrimSpace(raw)
		}
		sources = append(sources, ref)
	}
	return sources
}

// parseMarkdownLink splits "[label](url)" into its parts. Returns ok=false
// for anything that is not exactly that shape.
func parseMarkdownLink(s string) (label, url string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return "", "", false
	}
	closeIdx := strings.Index(s, "](")
	if closeIdx < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	label = strings.TrimSpace(s[1:closeIdx])
	url = strings.TrimSpace(s[closeIdx+2 : len(s)-1])
	if url == "" {
		return "", "", false
	}
	return label, url, true
}
