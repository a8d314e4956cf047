// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command for the docchat CLI.
//
// Handles "docchat ask", which sends one question to the backend and
// prints the answer.
//
// Examples:
//   docchat ask "What does the leave policy say about carryover?"
//   docchat ask --session 4f2a "And for contractors?"
//   docchat ask --json "Summarize the incident report" | jq .answer
//   cat questions.txt | xargs -I{} docchat ask "{}"
//
// Flags:
//   -s, --session ID   Continue an existing conversation
//   --json             Output answer and sources as JSON
//   --plain            Skip markdown rendering even on a TTY
//   --no-sources       Omit the source list
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/markdown"
	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// askJSON is the --json output envelope.
type askJSON struct {
	Answer    string           `json:"answer"`
	Reasoning string           `json:"reasoning,omitempty"`
	Sources   []model.Document `json:"sources,omitempty"`
	FollowUps []string         `json:"follow_up_questions,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
}

// HandleAsk runs the ask command.
func HandleAsk(cfg *config.Config, rawArgs []string) error {
	args := NewArgParser(rawArgs)

	question := strings.TrimSpace(strings.Join(args.PositionalFrom(0), " "))
	if question == "" {
		return fmt.Errorf("usage: docchat ask [--session ID] \"question\"")
	}

	sessionID := args.FlagOrDefault("session", args.Flag("s"))
	asJSON := args.BoolFlag("json")
	useMarkdown := IsStdoutTTY() && !asJSON && !args.BoolFlag("plain")

	client := newClient(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The answer accumulates into a turn exactly as the TUI does it, so
	// citations and follow-ups ride along with the text.
	turn := model.NewAssistantTurn()

	if !asJSON && !useMarkdown {
		// Piped output streams deltas as they arrive.
		printed := 0
		err := client.StreamTurn(ctx, sessionID, question, func(frame string) {
			api.ApplyFrame(turn, frame)
			if len(turn.Content) > printed {
				fmt.Print(turn.Content[printed:])
				printed = len(turn.Content)
			}
		})
		if err != nil {
			return streamError(err)
		}
		fmt.Println()
		turn.FinishStream()
		if !args.BoolFlag("no-sources") {
			printSourcesPlain(turn)
		}
		return nil
	}

	err := client.StreamTurn(ctx, sessionID, question, func(frame string) {
		api.ApplyFrame(turn, frame)
	})
	if err != nil {
		return streamError(err)
	}
	turn.FinishStream()

	if asJSON {
		out := askJSON{
			Answer:    markdown.StripBadges(turn.Content),
			Reasoning: turn.Reasoning,
			Sources:   turn.Documents,
			FollowUps: turn.FollowUpQuestions,
			SessionID: sessionID,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	// TTY: render the collected answer as markdown with citation badges.
	fmt.Println()
	renderer := markdown.NewRenderer(GetTerminalWidth() - 2)
	fmt.Println(renderer.RenderTurn(turn))

	if !args.BoolFlag("no-sources") {
		printSources(turn)
	}
	return nil
}

// streamError wraps transport failures with an actionable hint.
func streamError(err error) error {
	if api.IsUnreachable(err) {
		return fmt.Errorf("backend unreachable (is the server running?): %w", err)
	}
	return fmt.Errorf("streaming failed: %w", err)
}

// printSources prints the styled source list.
func printSources(turn *model.ChatTurn) {
	if len(turn.Documents) == 0 {
		return
	}
	fmt.Println(RenderSeparator(40))
	fmt.Println(LabelStyle.Render("Sources:"))
	for i, doc := range turn.Documents {
		fmt.Printf("  %s %s\n",
			DimStyle.Render(fmt.Sprintf("[%d]", i)),
			SourceStyle.Render(doc.DocumentName))
	}
}

// printSourcesPlain prints sources without styling for piped output.
func printSourcesPlain(turn *model.ChatTurn) {
	if len(turn.Documents) == 0 {
		return
	}
	fmt.Println("---")
	fmt.Println("Sources:")
	for _, doc := range turn.Documents {
		fmt.Printf("- %s\n", doc.DocumentName)
	}
}

// newClient builds an API client from the resolved configuration.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.Server.BaseURL,
		Timeout:       cfg.ServerTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
	})
}
