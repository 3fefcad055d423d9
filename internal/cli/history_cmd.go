// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Conversation history command handler.
//
// Handles "fiscus history" subcommands:
//   list [--limit N]          recent conversations
//   show <id>                 print one conversation
//   search <tekst>            search titles and message content
//   export <id> [--out pad]   write a conversation as markdown
//   delete <id>               remove one conversation
//   clear --confirm           remove everything
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/storage"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
	"github.com/jeranaias/fiscus-tui/internal/util"
)

// HandleHistory dispatches the history subcommands.
func HandleHistory(args *ArgParser) error {
	cfg := config.Global()

	store, err := OpenHistory(cfg)
	if err != nil {
		return fmt.Errorf("geschiedenis openen mislukt: %w", err)
	}
	if store == nil {
		return fmt.Errorf("geschiedenis is uitgeschakeld in de configuratie")
	}
	defer store.Close()

	switch args.Subcommand() {
	case "", "list":
		return historyList(store, args.FlagIntOrDefault("limit", 20))
	case "show":
		return historyShow(store, args.Positional(1))
	case "search":
		return historySearch(store, JoinPositionalArgs(args, 1), args.FlagIntOrDefault("limit", 20))
	case "export":
		return historyExport(store, args.Positional(1), args.FlagOrDefault("out", ""))
	case "delete":
		return historyDelete(store, args.Positional(1))
	case "clear":
		return historyClear(store, args.BoolFlag("confirm"))
	default:
		return fmt.Errorf("onbekend subcommando: %s", args.Subcommand())
	}
}

func historyList(store *storage.HistoryStore, limit int) error {
	summaries, err := store.List(limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("Geen gesprekken in de geschiedenis.")
		return nil
	}
	printSummaries(summaries)
	return nil
}

func historyShow(store *storage.HistoryStore, id string) error {
	if id == "" {
		return fmt.Errorf("gebruik: fiscus history show <id>")
	}
	conv, err := store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("gesprek %s niet gevonden", id)
		}
		return err
	}

	fmt.Println(styles.RenderInfo(conv.Title))
	for _, msg := range conv.Messages {
		fmt.Printf("\n%s (%s)\n%s\n",
			msg.Role.DisplayName(),
			msg.Timestamp.Format("2006-01-02 15:04"),
			msg.Content)
		for _, src := range msg.Sources {
			fmt.Printf("  - %s: %s\n", src.Title, src.SourceURL)
		}
	}
	return nil
}

func historySearch(store *storage.HistoryStore, query string, limit int) error {
	if query == "" {
		return fmt.Errorf("gebruik: fiscus history search <tekst>")
	}
	summaries, err := store.Search(query, limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Printf("Geen gesprekken gevonden voor %q.\n", query)
		return nil
	}
	printSummaries(summaries)
	return nil
}

func historyExport(store *storage.HistoryStore, id, out string) error {
	if id == "" {
		return fmt.Errorf("gebruik: fiscus history export <id> [--out pad]")
	}
	conv, err := store.Load(id)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Print(conv.ExportMarkdown())
		return nil
	}
	if err := os.WriteFile(out, []byte(conv.ExportMarkdown()), 0644); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("Geëxporteerd naar " + out))
	return nil
}

func historyDelete(store *storage.HistoryStore, id string) error {
	if id == "" {
		return fmt.Errorf("gebruik: fiscus history delete <id>")
	}
	if err := store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("gesprek %s niet gevonden", id)
		}
		return err
	}
	fmt.Println(styles.RenderSuccess("Gesprek verwijderd."))
	return nil
}

func historyClear(store *storage.HistoryStore, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("dit verwijdert de volledige geschiedenis; herhaal met --confirm")
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("Geschiedenis gewist."))
	return nil
}

func printSummaries(summaries []storage.ConversationSummary) {
	for _, s := range summaries {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("%s  %s  (%d berichten, %s)\n",
			id,
			util.TruncateRunes(s.Title, 48),
			s.MessageCount,
			s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
