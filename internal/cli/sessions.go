// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Conversation listing for the docchat CLI.
//
// Handles "docchat sessions", which lists conversations known to the
// backend, and "docchat sessions show <id>" for one transcript.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/markdown"
	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// HandleSessions runs the sessions command.
func HandleSessions(cfg *config.Config, rawArgs []string) error {
	args := NewArgParser(rawArgs)
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout())
	defer cancel()

	if args.Subcommand() == "show" {
		id := args.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: docchat sessions show <session-id>")
		}
		return showSession(ctx, client, id, args.BoolFlag("json"))
	}

	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return streamError(err)
	}

	if args.BoolFlag("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet."))
		return nil
	}

	for _, s := range sessions {
		line := fmt.Sprintf("%s  %s", DimStyle.Render(s.SessionID), s.DisplayName())
		if !s.UpdatedAt.IsZero() {
			line += DimStyle.Render("  " + s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(line)
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf("%d conversation(s)", len(sessions))))
	return nil
}

// showSession prints the full transcript of one conversation.
func showSession(ctx context.Context, client *api.Client, id string, asJSON bool) error {
	records, err := client.SessionDetail(ctx, id)
	if err != nil {
		if api.IsSessionNotFound(err) {
			return fmt.Errorf("no conversation with id %q", id)
		}
		return streamError(err)
	}

	turns := model.BootstrapTurns(records)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(turns)
	}

	if len(turns) == 0 {
		fmt.Println(DimStyle.Render("Empty conversation."))
		return nil
	}

	renderer := markdown.NewRenderer(GetTerminalWidth() - 2)
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			fmt.Println(LabelStyle.Render("You:") + " " + turn.Content)
		case model.RoleAssistant:
			if IsStdoutTTY() {
				fmt.Println(renderer.RenderTurn(turn))
			} else {
				fmt.Println(markdown.StripBadges(turn.Content))
			}
		}
		fmt.Println()
	}
	return nil
}
