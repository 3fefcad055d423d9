// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stage

// =============================================================================
// STAGE ENUM
// =============================================================================

// Stage is one phase of assistant processing. Exactly one stage is current
// at any time during a stream session.
type Stage int

const (
	// Analyzing is the initial stage: the question is being interpreted.
	Analyzing Stage = iota
	// AnalyzingSources: retrieved material is being read.
	AnalyzingSources
	// PreparingSearch: a web search is being formulated (web mode only).
	PreparingSearch
	// CollectingResults: web search results are coming in (web mode only).
	CollectingResults
	// RetrievingMoreSources: a follow-up retrieval round is running.
	RetrievingMoreSources
	// VerifyingUrls: candidate web sources are being checked.
	VerifyingUrls
	// Reasoning: all material is in and the answer is being composed.
	Reasoning
	// Retrieving: the internal knowledge base is being consulted.
	Retrieving
)

// String returns the stage identifier for logging and tests.
func (s Stage) String() string {
	switch s {
	case Analyzing:
		return "analyzing"
	case AnalyzingSources:
		return "analyzing_sources"
	case PreparingSearch:
		return "preparing_search"
	case CollectingResults:
		return "collecting_results"
	case RetrievingMoreSources:
		return "retrieving_more_sources"
	case VerifyingUrls:
		return "verifying_urls"
	case Reasoning:
		return "reasoning"
	case Retrieving:
		return "retrieving"
	default:
		return "unknown"
	}
}

// Label returns the Dutch progress text shown next to the spinner.
func (s Stage) Label() string {
	switch s {
	case Analyzing:
		return "Vraag analyseren"
	case AnalyzingSources:
		return "Bronnen analyseren"
	case PreparingSearch:
		return "Zoekopdracht voorbereiden"
	case CollectingResults:
		return "Resultaten verzamelen"
	case RetrievingMoreSources:
		return "Extra bronnen ophalen"
	case VerifyingUrls:
		return "Bronnen verifiëren"
	case Reasoning:
		return "Antwoord formuleren"
	case Retrieving:
		return "Kennisbank raadplegen"
	default:
		return "Bezig"
	}
}
