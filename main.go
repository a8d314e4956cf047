// docchat - A terminal client for document-grounded chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/cli"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/engine"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/ui/chat"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/upload"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// sendToProgram delivers a message to the running TUI, dropping it when
// the program hasn't started yet or already exited.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	cmd := ""
	var rest []string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		rest = os.Args[2:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.UI.DebugLogPath != "" {
		if err := util.OpenLogFile(cfg.UI.DebugLogPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		}
		defer util.CloseLog()
	}

	switch cmd {
	case "ask":
		exitOnError(cli.HandleAsk(cfg, rest))
	case "chat":
		exitOnError(cli.HandleChat(cfg, rest))
	case "sessions":
		exitOnError(cli.HandleSessions(cfg, rest))
	case "history":
		exitOnError(cli.HandleHistory(cfg, rest))
	case "upload":
		exitOnError(cli.HandleUpload(cfg, rest))
	case "version", "--version", "-v":
		fmt.Printf("docchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		printUsage()
	case "":
		runTUI(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docchat - ask questions about your documents

Usage:
  docchat                      Open the TUI
  docchat ask "question"       One-shot question to stdout
  docchat chat                 Line-oriented REPL
  docchat sessions [show ID]   List conversations
  docchat upload <file...>     Upload documents to a conversation
  docchat history [query]      Search the local archive
  docchat version              Show version

Run any command with --json for machine-readable output.
Configuration lives in ~/.docchat/config.toml.`)
}

// =============================================================================
// TUI WIRING
// =============================================================================

// loadingRelay forwards engine loading transitions into the TUI.
type loadingRelay struct{}

func (loadingRelay) StartLoading() { sendToProgram(chat.LoadingMsg{On: true}) }
func (loadingRelay) StopLoading()  { sendToProgram(chat.LoadingMsg{On: false}) }

// uploadPolicy builds the drop-dir acceptance policy from config,
// falling back to the defaults for unset fields.
func uploadPolicy(cfg *config.Config) api.UploadPolicy {
	policy := api.DefaultUploadPolicy()
	if len(cfg.Upload.AllowedExtensions) > 0 {
		policy.AllowedExtensions = cfg.Upload.AllowedExtensions
	}
	if cfg.Upload.MaxSizeMB > 0 {
		policy.MaxSizeBytes = cfg.Upload.MaxSizeMB * 1024 * 1024
	}
	return policy
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config) {
	theme := styles.NewTheme(cfg.UI.Theme)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.Server.BaseURL,
		Timeout:       cfg.ServerTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
	})

	transcript := store.NewTranscriptStore()
	sessions := store.NewSessionStore()
	toasts := components.NewToastManager()

	// Local archive is best-effort: the TUI works without it.
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		if path, err := cfg.ArchivePath(); err == nil {
			if a, err := storage.Open(path); err == nil {
				archive = a
				defer a.Close()
			} else {
				util.Debugf("main: archive unavailable: %v", err)
			}
		}
	}

	eng := engine.New(client, client, transcript, sessions, engine.Options{
		Notifier: toasts,
		Loading:  loadingRelay{},
		OnAccepted: func() {
			sendToProgram(chat.StreamAcceptedMsg{At: time.Now()})
		},
		OnDone: func(err error) {
			if err == nil && archive != nil {
				archiveLastExchange(archive, transcript, sessions)
			}
			sendToProgram(chat.StreamDoneMsg{Err: err})
		},
	})

	// Store mutations happen on engine goroutines; the subscriptions
	// bridge them onto the Bubble Tea loop.
	transcript.Subscribe(func() { sendToProgram(chat.TranscriptChangedMsg{}) })
	sessions.Subscribe(func() { sendToProgram(chat.SessionsChangedMsg{}) })

	healthCheck := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.CheckReachable(ctx) == nil
	}

	m := chat.NewModel(chat.Options{
		Theme:       theme,
		Config:      cfg,
		Engine:      eng,
		Transcript:  transcript,
		Sessions:    sessions,
		Toasts:      toasts,
		HealthCheck: healthCheck,
	})

	if path, err := config.Path(); err == nil {
		if w, err := config.NewWatcher(path, func(next *config.Config) {
			sendToProgram(chat.ConfigReloadedMsg{Config: next})
		}); err == nil {
			if err := w.Watch(); err == nil {
				defer w.Close()
			} else {
				util.Debugf("main: config watch failed: %v", err)
			}
		}
	}

	if cfg.Upload.DropDir != "" {
		w, err := upload.NewWatcher(
			cfg.Upload.DropDir,
			uploadPolicy(cfg),
			client,
			sessions.ActiveID,
			func(r upload.Result) {
				sendToProgram(chat.UploadResultMsg{Name: r.Name, Err: r.Err})
			},
			upload.Options{UploadTimeout: cfg.UploadTimeout()},
		)
		if err != nil {
			util.Debugf("main: drop dir watcher unavailable: %v", err)
		} else if err := w.Watch(); err != nil {
			util.Debugf("main: drop dir watch failed: %v", err)
		} else {
			defer w.Close()
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running docchat: %v\n", err)
		os.Exit(1)
	}
}

// archiveLastExchange records the transcript's final question/answer
// pair. Called from the engine goroutine after a successful send.
func archiveLastExchange(archive *storage.Archive, transcript *store.TranscriptStore, sessions *store.SessionStore) {
	turns := transcript.Turns()
	if len(turns) < 2 {
		return
	}
	answer := turns[len(turns)-1]
	question := turns[len(turns)-2]
	if question.Role != model.RoleUser || answer.Role != model.RoleAssistant || answer.HasError() {
		return
	}

	name := ""
	if active, ok := sessions.Active(); ok {
		name = active.DisplayName()
	}
	if _, err := archive.RecordTurns(sessions.ActiveID(), name, question, answer); err != nil {
		util.Debugf("main: archive record failed: %v", err)
	}
}
