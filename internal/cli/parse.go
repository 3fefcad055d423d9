// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
)

// Command identifies a top-level CLI command.
type Command int

const (
	CmdTUI Command = iota // default: full-screen chat
	CmdAsk
	CmdChat
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Parse reads os.Args and returns the command with its parsed
// arguments. No arguments means the full-screen chat.
func Parse() (Command, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, NewArgParser(nil)
	}

	args := NewArgParser(raw)
	switch raw[0] {
	case "ask":
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "history":
		return CmdHistory, NewArgParser(raw[1:])
	case "config":
		return CmdConfig, NewArgParser(raw[1:])
	case "version", "--version", "-v":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Bare flags (e.g. --web) still open the TUI.
		return CmdTUI, args
	}
}

// PrintUsage writes the top-level help text.
func PrintUsage() {
	fmt.Println(`fiscus - belastingadvies in de terminal

Gebruik:
  fiscus                       open de chatinterface
  fiscus ask "vraag" [--web]   stel een losse vraag
  fiscus chat                  regelgebaseerde chat zonder TUI
  fiscus history <subcommando> beheer de gespreksgeschiedenis
  fiscus config <subcommando>  bekijk of wijzig de configuratie
  fiscus version               toon versie-informatie

Zie "fiscus <commando> --help" voor details per commando.`)
}
