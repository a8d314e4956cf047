// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI commands of docchat.
//
// Each command is a Handle* function taking the resolved configuration
// and its raw argument slice:
//
//	cli.HandleAsk(cfg, args)       one-shot question
//	cli.HandleChat(cfg, args)      line-oriented REPL
//	cli.HandleSessions(cfg, args)  conversation listing
//	cli.HandleHistory(cfg, args)   local archive search
//	cli.HandleUpload(cfg, args)    manual document upload
//
// Output adapts to the terminal: on a TTY answers render as markdown
// with citation badges; piped output streams raw text so the commands
// compose with grep, jq, and friends. Every command accepts --json for
// machine-readable output where that makes sense.
package cli
