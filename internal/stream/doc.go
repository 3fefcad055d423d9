// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream orchestrates one request/response cycle against the
// fiscus backend. The Controller owns the cumulative buffers for a
// session, feeds transport fragments through the protocol lexer, advances
// the stage machine on decoded signals, extracts the trailing sources
// payload, and delivers exactly one final message per session.
//
// Sessions are superseded, never overlapped: submitting a new request
// invalidates the previous session's timers and silences its remaining
// callbacks, so at most one session updates the UI at a time.
//
// # Key Types
//
//   - Controller: long-lived; one per chat view.
//   - Request: one user submission.
//   - Handler: the UI-facing callback set (stage, text, completion).
//   - Transport: the collaborator that performs the HTTP streaming call.
package stream
