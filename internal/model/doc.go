// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the streaming core
// and its collaborators: conversations, messages, source references, and
// the immutable final message record produced at the end of a stream.
//
// # Key Types
//
//   - Role: sender of a message (user, assistant, system)
//   - Message: a single chat message, optionally carrying source references
//   - Conversation: an ordered list of messages with metadata
//   - SourceReference: one consulted source, extracted from the chunks payload
//   - FinalMessage: the terminal artifact of a stream session
//
// Types in this package are plain values with JSON tags; persistence and
// transport encodings both build on them.
package model
