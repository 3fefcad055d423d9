// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport implements the HTTP streaming call against the fiscus
// chat backend. It contains no protocol parsing: the response body is
// handed upstream as raw UTF-8 text fragments, with multi-byte runes kept
// whole across read boundaries. Retry policy lives here, never in the
// stream controller.
package transport
