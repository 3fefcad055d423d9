// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL command handler for the fiscus CLI.
//
// Handles "fiscus chat": a line-based conversation loop for terminals
// where the full-screen interface is unwanted (ssh sessions, scripts
// with expect, screen readers).
//
// Interactive commands during chat:
//   /help            show available commands
//   /web             toggle deep search for the next question
//   /bronnen         show the sources of the last answer
//   /nieuw           start a new conversation
//   /export [pad]    export the conversation as markdown
//   /quit            exit
//   Ctrl+D           exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
	"github.com/jeranaias/fiscus-tui/internal/stream"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with persistent input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history and releases the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the line-based conversation loop.
func HandleChat(args *ArgParser) error {
	cfg := config.Global()

	client, err := NewTransport(cfg)
	if err != nil {
		return err
	}

	store, err := OpenHistory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s geschiedenis niet beschikbaar: %v\n",
			errorStyle.Render("[!]"), err)
	}
	if store != nil {
		defer store.Close()
	}

	input := NewChatCLI()
	defer input.Close()

	ctrl := stream.NewController(client, stream.Handler{
		OnStage: func(st stage.Stage) {
			fmt.Fprintf(os.Stderr, "\r\033[K%s", stageStyle.Render(st.Label()+"..."))
		},
	})
	ctrl.SetWebSearch(cfg.Search.WebSearchDefault || args.BoolFlag("web"))

	conv := model.NewConversation()
	var lastSources []model.SourceReference

	fmt.Println(welcomeStyle.Render("fiscus chat"))
	fmt.Println(infoStyle.Render("Stel een belastingvraag, of typ /help voor commando's."))

	for {
		line, err := input.ReadInput(promptStyle.Render("vraag> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := handleSlashCommand(line, ctrl, &conv, lastSources); done {
				return nil
			}
			continue
		}

		// History holds the prior turns; the question travels in Message.
		history := append([]model.Message(nil), conv.Messages...)
		conv.Append(model.NewMessage(model.RoleUser, line))
		final, err := ctrl.Run(context.Background(), stream.Request{
			ConversationID: conv.ID,
			Message:        line,
			History:        history,
		})
		fmt.Fprint(os.Stderr, "\r\033[K")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[X]"), err)
			continue
		}

		conv.Append(model.NewAssistantMessage(final))
		lastSources = final.Sources

		fmt.Println(labelStyle.Render(model.RoleAssistant.DisplayName() + ":"))
		if IsStdoutTTY() {
			fmt.Print(renderMarkdown(final.Text))
		} else {
			fmt.Println(final.Text)
		}
		if len(final.Sources) > 0 && cfg.UI.ShowSources {
			fmt.Println(sourceStyle.Render(fmt.Sprintf("(%d bronnen, /bronnen om te tonen)", len(final.Sources))))
		}
		fmt.Println()

		if store != nil {
			if err := store.Save(conv); err != nil {
				fmt.Fprintf(os.Stderr, "%s opslaan mislukt: %v\n", errorStyle.Render("[!]"), err)
			}
		}
	}
}

// handleSlashCommand executes one REPL command; true means exit.
func handleSlashCommand(line string, ctrl *stream.Controller, conv **model.Conversation, lastSources []model.SourceReference) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(infoStyle.Render(strings.Join([]string{
			"/web             diep zoeken aan/uit voor de volgende vraag",
			"/bronnen         bronnen van het laatste antwoord",
			"/nieuw           nieuw gesprek",
			"/export [pad]    exporteer gesprek als markdown",
			"/quit            afsluiten",
		}, "\n")))

	case "/web":
		ctrl.SetWebSearch(!ctrl.WebSearch())
		if ctrl.WebSearch() {
			fmt.Println(infoStyle.Render("Diep zoeken staat aan voor de volgende vraag."))
		} else {
			fmt.Println(infoStyle.Render("Diep zoeken staat uit."))
		}

	case "/bronnen":
		if len(lastSources) == 0 {
			fmt.Println(infoStyle.Render("Geen bronnen bij het laatste antwoord."))
			break
		}
		for _, src := range lastSources {
			fmt.Printf("  %s - %s\n", src.Title, sourceStyle.Render(src.SourceURL))
		}

	case "/nieuw", "/clear":
		*conv = model.NewConversation()
		fmt.Println(infoStyle.Render("Nieuw gesprek gestart."))

	case "/export":
		path := strings.TrimSpace(rest)
		if path == "" {
			path = "gesprek.md"
		}
		if err := exportConversation(*conv, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s exporteren mislukt: %v\n", errorStyle.Render("[X]"), err)
		} else {
			fmt.Println(infoStyle.Render("Geëxporteerd naar " + path))
		}

	default:
		fmt.Println(infoStyle.Render("Onbekend commando. Typ /help."))
	}
	return false
}

// exportConversation writes the conversation as markdown.
func exportConversation(conv *model.Conversation, path string) error {
	return os.WriteFile(path, []byte(conv.ExportMarkdown()), 0644)
}
