// fiscus - Nederlandse belastingadviseur in de terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/fiscus-tui/internal/cli"
	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "fiscus: %v\n", err)
		os.Exit(1)
	}
}

// runTUI opens the full-screen chat interface.
func runTUI(args *cli.ArgParser) error {
	cfg := config.Global()
	if args.BoolFlag("web") {
		cfg.Search.WebSearchDefault = true
	}

	client, err := cli.NewTransport(cfg)
	if err != nil {
		return err
	}

	store, err := cli.OpenHistory(cfg)
	if err != nil {
		// The chat works without history; warn and continue.
		fmt.Fprintf(os.Stderr, "fiscus: geschiedenis niet beschikbaar: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	// Reload configuration live while the interface runs.
	if watcher, err := config.NewWatcher(0, nil); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		} else {
			watcher.Close()
		}
	}

	m := chat.New(cfg, client, store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
