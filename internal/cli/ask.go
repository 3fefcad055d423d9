// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the fiscus CLI.
//
// Handles "fiscus ask", which sends one question to the advisory
// backend and prints the answer to stdout.
//
// Examples:
//   fiscus ask "Wat is de MKB-winstvrijstelling in 2025?"
//   fiscus ask --web "Recente wijzigingen box 3"
//   fiscus ask --json "Aftrekposten ZZP" | jq .text
//
// Flags:
//   --web       enable deep search with web sources
//   --json      print the answer as JSON (text + sources)
//   -q, --quiet suppress stage progress on stderr
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/model"
	"github.com/jeranaias/fiscus-tui/internal/stage"
	"github.com/jeranaias/fiscus-tui/internal/stream"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders answers for terminal display. Nil when
// initialization failed; output falls back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// STYLES
// =============================================================================

var (
	stageStyle  = lipgloss.NewStyle().Foreground(styles.Amber)
	sourceStyle = lipgloss.NewStyle().Foreground(styles.Cyan)
	errorStyle  = lipgloss.NewStyle().Foreground(styles.Rose)
)

// =============================================================================
// JSON OUTPUT
// =============================================================================

// askJSON is the machine-readable answer shape for --json mode.
type askJSON struct {
	Text    string                  `json:"text"`
	Sources []model.SourceReference `json:"sources"`
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args *ArgParser) error {
	cfg := config.Global()

	question := JoinPositionalArgs(args, 1)
	if question == "" {
		return fmt.Errorf("geen vraag opgegeven. Gebruik: fiscus ask \"uw vraag\"")
	}

	client, err := NewTransport(cfg)
	if err != nil {
		return err
	}

	quiet := args.BoolFlag("quiet") || args.BoolFlag("q") || args.BoolFlag("json")
	useMarkdown := IsStdoutTTY() && !args.BoolFlag("json")

	// Plain pipes get the text as it streams; TTYs collect and render
	// markdown once the answer is complete.
	var printed int
	handler := stream.Handler{
		OnStage: func(st stage.Stage) {
			if !quiet {
				fmt.Fprintf(os.Stderr, "%s\n", stageStyle.Render("> "+st.Label()+"..."))
			}
		},
	}
	if !useMarkdown && !args.BoolFlag("json") {
		handler.OnText = func(text string) {
			if len(text) > printed {
				fmt.Print(text[printed:])
				printed = len(text)
			}
		}
	}

	ctrl := stream.NewController(client, handler)
	ctrl.SetWebSearch(args.BoolFlag("web"))

	conv := model.NewConversation()
	final, err := ctrl.Run(context.Background(), stream.Request{
		ConversationID: conv.ID,
		Message:        question,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[X]"), err)
		return err
	}

	if args.BoolFlag("json") {
		out := askJSON{Text: final.Text, Sources: final.Sources}
		if out.Sources == nil {
			out.Sources = []model.SourceReference{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if useMarkdown {
		fmt.Print(renderMarkdown(final.Text))
	} else if printed < len(final.Text) {
		fmt.Print(final.Text[printed:])
	}
	fmt.Println()

	if len(final.Sources) > 0 {
		fmt.Println(sourceStyle.Render("Bronnen:"))
		for _, src := range final.Sources {
			fmt.Printf("  %s - %s\n", src.Title, src.SourceURL)
		}
	}

	return nil
}
