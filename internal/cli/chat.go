// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL for the docchat CLI.
//
// Handles "docchat chat", a line-oriented alternative to the full TUI
// for terminals where alt-screen rendering is unwanted (ssh sessions,
// screen readers, scrollback-heavy workflows).
//
// Commands inside the REPL:
//   /sessions        List conversations on the backend
//   /open <id>       Continue an existing conversation
//   /new             Start a fresh conversation
//   /sources         Show sources for the last answer
//   /help            Show available commands
//   /quit            Exit (also: exit, quit, Ctrl+D)
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/markdown"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// ChatCLI wraps liner with persistent input history.
// USABILITY: Arrow keys navigate history; Ctrl+C aborts the prompt.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line, recording non-empty input in history.
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

func (c *ChatCLI) saveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	// 0600: history may contain question text the user considers private.
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// chatREPL holds the state shared across one REPL run.
type chatREPL struct {
	cfg     *config.Config
	client  *api.Client
	archive *storage.Archive
	input   *ChatCLI

	sessionID string
	lastTurn  *model.ChatTurn

	// cancelMu guards the cancel func for the in-flight stream so the
	// signal goroutine can abort it without racing the main loop.
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// HandleChat runs the interactive REPL.
func HandleChat(cfg *config.Config, rawArgs []string) error {
	args := NewArgParser(rawArgs)

	repl := &chatREPL{
		cfg:       cfg,
		client:    newClient(cfg),
		input:     NewChatCLI(),
		sessionID: args.FlagOrDefault("session", args.Flag("s")),
	}
	defer repl.input.Close()

	if path, err := cfg.ArchivePath(); err == nil {
		if archive, err := storage.Open(path); err == nil {
			repl.archive = archive
			defer archive.Close()
		} else {
			util.Debugf("chat: archive unavailable: %v", err)
		}
	}

	if !args.BoolFlag("quiet") {
		fmt.Println(TitleStyle.Render("docchat") + DimStyle.Render("  ask your documents"))
		fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
		fmt.Println()
	}

	// First Ctrl+C cancels the in-flight answer; at the prompt liner
	// surfaces it as ErrPromptAborted instead.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			repl.cancelStream()
		}
	}()

	for {
		input, err := repl.input.ReadInput(SuccessStyle.Render("docchat> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}
		if strings.HasPrefix(input, "/") {
			done, err := repl.handleCommand(input)
			if err != nil {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("[Error] ")+err.Error())
			}
			if done {
				return nil
			}
			continue
		}

		if err := repl.ask(input); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("[Error] ")+err.Error())
		}
	}
}

// cancelStream aborts the in-flight answer, if any.
func (r *chatREPL) cancelStream() {
	r.cancelMu.Lock()
	defer r.cancelMu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// handleCommand dispatches a slash command. Returns true when the REPL
// should exit.
func (r *chatREPL) handleCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/h":
		fmt.Println("  /sessions        list conversations")
		fmt.Println("  /open <id>       continue a conversation")
		fmt.Println("  /new             start a fresh conversation")
		fmt.Println("  /sources         sources for the last answer")
		fmt.Println("  /quit            exit")
		return false, nil

	case "/sessions", "/ls":
		return false, r.listSessions()

	case "/open":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /open <session-id>")
		}
		return false, r.openSession(fields[1])

	case "/new":
		r.sessionID = ""
		r.lastTurn = nil
		fmt.Println(DimStyle.Render("Started a new conversation."))
		return false, nil

	case "/sources":
		if r.lastTurn == nil {
			fmt.Println(DimStyle.Render("No answer yet."))
			return false, nil
		}
		printSources(r.lastTurn)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q (try /help)", fields[0])
	}
}

func (r *chatREPL) listSessions() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ServerTimeout())
	defer cancel()

	sessions, err := r.client.ListSessions(ctx)
	if err != nil {
		return streamError(err)
	}
	if len(sessions) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet."))
		return nil
	}
	for _, s := range sessions {
		marker := "  "
		if s.SessionID == r.sessionID {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Printf("%s%s  %s\n", marker, DimStyle.Render(s.SessionID), s.DisplayName())
	}
	return nil
}

func (r *chatREPL) openSession(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ServerTimeout())
	defer cancel()

	records, err := r.client.SessionDetail(ctx, id)
	if err != nil {
		if api.IsSessionNotFound(err) {
			return fmt.Errorf("no conversation with id %q", id)
		}
		return streamError(err)
	}

	r.sessionID = id
	turns := model.BootstrapTurns(records)
	if len(turns) > 0 {
		r.lastTurn = turns[len(turns)-1]
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf("Opened conversation %s (%d turns).", id, len(turns))))
	return nil
}

// ask streams one answer, printing deltas as they arrive and the rendered
// markdown once complete.
func (r *chatREPL) ask(question string) error {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()
	defer func() {
		r.cancelMu.Lock()
		r.cancel = nil
		r.cancelMu.Unlock()
		cancel()
	}()

	turn := model.NewAssistantTurn()
	useMarkdown := IsStdoutTTY()

	printed := 0
	err := r.client.StreamTurn(ctx, r.sessionID, question, func(frame string) {
		api.ApplyFrame(turn, frame)
		if !useMarkdown && len(turn.Content) > printed {
			fmt.Print(turn.Content[printed:])
			printed = len(turn.Content)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return streamError(err)
	}
	canceled := errors.Is(err, context.Canceled)
	turn.FinishStream()
	r.lastTurn = turn

	if useMarkdown {
		fmt.Println()
		renderer := markdown.NewRenderer(GetTerminalWidth() - 2)
		fmt.Println(renderer.RenderTurn(turn))
	} else {
		fmt.Println()
	}
	if canceled {
		fmt.Println(DimStyle.Render("(interrupted)"))
	} else if len(turn.Documents) > 0 {
		printSources(turn)
	}

	if r.archive != nil && !canceled && !turn.IsEmpty() {
		user := model.NewUserTurn(question)
		if _, err := r.archive.RecordTurns(r.sessionID, "", user, turn); err != nil {
			util.Debugf("chat: archive record failed: %v", err)
		}
	}
	return nil
}
