// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/storage"
	"github.com/jeranaias/fiscus-tui/internal/transport"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// IsStdoutTTY reports whether stdout is a terminal. Markdown rendering
// and colors are disabled for piped output.
func IsStdoutTTY() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// NewTransport builds the backend client from configuration.
func NewTransport(cfg *config.Config) (*transport.Client, error) {
	if cfg.Backend.APIKey == "" {
		return nil, fmt.Errorf("geen API-sleutel geconfigureerd; zet backend.api_key of FISCUS_API_KEY")
	}
	return transport.NewClient(transport.Config{
		BaseURL:           cfg.Backend.BaseURL,
		APIKey:            cfg.Backend.APIKey,
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
	}), nil
}

// OpenHistory opens the history store, or returns nil when history is
// disabled in the configuration.
func OpenHistory(cfg *config.Config) (*storage.HistoryStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	return storage.OpenHistory(path)
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("fiscus %s (commit %s, gebouwd %s)\n", Version, GitCommit, BuildDate)
}
