// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command-line surface of fiscus.
//
// The default invocation opens the full-screen chat; the commands here
// cover everything scriptable: one-shot questions, a plain REPL,
// history management and configuration.
//
//	fiscus                      open the chat interface
//	fiscus ask "vraag"          one-shot question to stdout
//	fiscus chat                 line-based REPL without the TUI
//	fiscus history <subcmd>     list, show, search, export, delete
//	fiscus config <subcmd>      get, set, list, path
//	fiscus version              print version info
//
// # Key Types
//
//   - ArgParser: unified flag/positional parsing shared by all commands
package cli
