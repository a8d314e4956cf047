// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Local archive search for the docchat CLI.
//
// Handles "docchat history", which searches the local SQLite archive of
// completed exchanges. The archive works offline; no backend required.
//
// Examples:
//   docchat history                      Recent exchanges
//   docchat history "leave policy"       Full-text search
//   docchat history --session 4f2a       One conversation
//   docchat history export 4f2a          Conversation as markdown
//   docchat history prune --days 90      Drop exchanges older than 90 days
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/storage"
)

// =============================================================================
// HISTORY COMMAND
// =============================================================================

const (
	defaultHistoryLimit = 20
	defaultPruneDays    = 90
)

// HandleHistory runs the history command.
func HandleHistory(cfg *config.Config, rawArgs []string) error {
	args := NewArgParser(rawArgs)

	path, err := cfg.ArchivePath()
	if err != nil {
		return fmt.Errorf("resolving archive path: %w", err)
	}
	archive, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer archive.Close()

	switch args.Subcommand() {
	case "export":
		id := args.Positional(1)
		if id == "" {
			return fmt.Errorf("usage: docchat history export <session-id>")
		}
		md, err := archive.ExportMarkdown(id)
		if err != nil {
			return fmt.Errorf("exporting conversation: %w", err)
		}
		fmt.Print(md)
		return nil

	case "prune":
		days := args.FlagIntOrDefault("days", defaultPruneDays)
		cutoff := time.Now().AddDate(0, 0, -days)
		removed, err := archive.PruneOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("pruning archive: %w", err)
		}
		fmt.Printf("%s Removed %d exchange(s) older than %d days.\n",
			SuccessStyle.Render("[OK]"), removed, days)
		return nil
	}

	limit := args.FlagIntOrDefault("limit", defaultHistoryLimit)

	var exchanges []storage.ArchivedExchange
	switch {
	case args.Flag("session") != "":
		exchanges, err = archive.BySession(args.Flag("session"))
	case args.PositionalCount() > 0:
		query := strings.Join(args.PositionalFrom(0), " ")
		exchanges, err = archive.Search(query, limit)
	default:
		exchanges, err = archive.Recent(limit)
	}
	if err != nil {
		return fmt.Errorf("querying archive: %w", err)
	}

	if args.BoolFlag("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exchanges)
	}

	if len(exchanges) == 0 {
		fmt.Println(DimStyle.Render("Nothing in the archive."))
		return nil
	}

	for _, ex := range exchanges {
		fmt.Printf("%s  %s\n",
			DimStyle.Render(ex.CreatedAt.Format("2006-01-02 15:04")),
			ex.Preview(70))
		if ex.SessionName != "" {
			fmt.Println("        " + DimStyle.Render(ex.SessionName))
		}
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf("%d exchange(s)", len(exchanges))))
	return nil
}
