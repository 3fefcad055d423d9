// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists completed conversations to a local SQLite
// database. Only immutable final messages reach this package: in-flight
// stream state is never written, and an aborted session leaves no trace.
//
// # Key Types
//
//   - HistoryStore: the conversation database; Save/Load/List/Search/Delete.
//
// # Usage
//
//	store, err := storage.OpenHistory(path)
//	defer store.Close()
//	err = store.Save(conv)
package storage
