// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/fiscus-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("conversation not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// HISTORY STORE
// =============================================================================

// ConversationSummary is one row of the history list view.
type ConversationSummary struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HistoryStore persists conversations in SQLite.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the tables if they do not exist.
func (s *HistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		role            TEXT NOT NULL,
		content         TEXT NOT NULL,
		created_at      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sources (
		message_id  TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		ref_id      TEXT NOT NULL,
		title       TEXT NOT NULL,
		source_url  TEXT NOT NULL,
		position    INTEGER NOT NULL,
		PRIMARY KEY (message_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save writes the conversation and its messages, replacing any previous
// version with the same ID.
func (s *HistoryStore) Save(conv *model.Conversation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
	`, conv.ID, conv.Title, conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// Replace messages wholesale; the transcript is append-only upstream
	// so rewriting is simpler than diffing.
	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for seq, msg := range conv.Messages {
		_, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, msg.ID, conv.ID, seq, msg.Role.String(), msg.Content, msg.Timestamp.Unix())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}

		for pos, src := range msg.Sources {
			_, err := tx.Exec(`
				INSERT INTO sources (message_id, ref_id, title, source_url, position)
				VALUES (?, ?, ?, ?, ?)
			`, msg.ID, src.ID, src.Title, src.SourceURL, pos)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrDatabaseError, err)
			}
		}
	}

	return tx.Commit()
}

// Delete removes a conversation and its messages.
func (s *HistoryStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all conversations.
func (s *HistoryStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM conversations`); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Prune keeps only the max most recently updated conversations.
func (s *HistoryStore) Prune(max int) error {
	if max <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC LIMIT ?
		)
	`, max)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Load reads one conversation with its full transcript.
func (s *HistoryStore) Load(id string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}

	var created, updated int64
	err := s.db.QueryRow(`
		SELECT title, created_at, updated_at FROM conversations WHERE id = ?
	`, id).Scan(&conv.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	conv.CreatedAt = time.Unix(created, 0)
	conv.UpdatedAt = time.Unix(updated, 0)

	rows, err := s.db.Query(`
		SELECT id, role, content, created_at FROM messages
		WHERE conversation_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role string
		var ts int64
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.Unix(ts, 0)
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for i := range conv.Messages {
		sources, err := s.loadSources(conv.Messages[i].ID)
		if err != nil {
			return nil, err
		}
		conv.Messages[i].Sources = sources
	}

	return conv, nil
}

func (s *HistoryStore) loadSources(messageID string) ([]model.SourceReference, error) {
	rows, err := s.db.Query(`
		SELECT ref_id, title, source_url FROM sources
		WHERE message_id = ? ORDER BY position
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var sources []model.SourceReference
	for rows.Next() {
		var src model.SourceReference
		if err := rows.Scan(&src.ID, &src.Title, &src.SourceURL); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// List returns conversation summaries, most recently updated first.
func (s *HistoryStore) List(limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		ORDER BY c.updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// Search returns summaries of conversations whose title or message content
// matches the query, most recently updated first.
func (s *HistoryStore) Search(query string, limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT DISTINCT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m2 WHERE m2.conversation_id = c.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.title LIKE ? OR m.content LIKE ?
		ORDER BY c.updated_at DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]ConversationSummary, error) {
	var out []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		var created, updated int64
		if err := rows.Scan(&s.ID, &s.Title, &created, &updated, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		s.CreatedAt = time.Unix(created, 0)
		s.UpdatedAt = time.Unix(updated, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}
