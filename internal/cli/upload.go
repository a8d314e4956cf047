// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload.go - Manual document upload for the docchat CLI.
//
// Handles "docchat upload", which validates and quick-parses one or more
// files into a conversation so they can be cited by later answers.
//
// Examples:
//   docchat upload report.pdf
//   docchat upload --session 4f2a notes.md policy.docx
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/config"
)

// =============================================================================
// UPLOAD COMMAND
// =============================================================================

// HandleUpload runs the upload command.
func HandleUpload(cfg *config.Config, rawArgs []string) error {
	args := NewArgParser(rawArgs)

	paths := args.PositionalFrom(0)
	if len(paths) == 0 {
		return fmt.Errorf("usage: docchat upload [--session ID] <file> [file...]")
	}

	sessionID := args.FlagOrDefault("session", args.Flag("s"))
	client := newClient(cfg)
	policy := api.DefaultUploadPolicy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, path := range paths {
		name := filepath.Base(path)
		result, err := client.QuickParseFile(ctx, sessionID, path, policy)
		if err != nil {
			failed++
			if api.IsValidationError(err) {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", ErrorStyle.Render("[X]"), name, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", ErrorStyle.Render("[X]"), name, streamError(err))
			continue
		}
		fmt.Printf("%s %s uploaded %s\n",
			SuccessStyle.Render("[OK]"), name,
			DimStyle.Render("("+result.DocumentID+")"))
	}

	if sessionID != "" {
		fmt.Println(DimStyle.Render("session: " + sessionID))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(paths))
	}
	return nil
}
