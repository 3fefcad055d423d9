// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stage tracks the assistant's processing lifecycle for the
// progress indicator. The current stage advances from two sources that
// must be reconciled: authoritative protocol signals decoded from the
// response stream, and fallback timers that keep the indicator moving
// when the backend is slow to emit its own signals.
//
// Signals always win. Every applied signal first cancels all pending
// fallback timers, and a per-session latch set by the first retrieval
// signal blocks any later regression back to the analyzing stage.
//
// # Key Types
//
//   - Stage: enumeration of lifecycle phases with Dutch display labels.
//   - Machine: the state machine; Apply signals, Start fallback timers.
//   - Clock: injectable timer scheduling, swapped out in tests.
package stage
