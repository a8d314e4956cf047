// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main Bubble Tea model for the docchat TUI.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/engine"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// healthProbeInterval is how often the backend reachability probe runs.
const healthProbeInterval = 30 * time.Second

// anchorRatePerSecond bounds how often the sidebar re-anchors during
// streaming.
const anchorRatePerSecond = 4

// Model is the top-level Bubble Tea model for the chat interface.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	engine     *engine.Engine
	transcript *store.TranscriptStore
	sessions   *store.SessionStore

	viewport  *components.TranscriptViewport
	sidebar   *components.Sidebar
	spinner   components.Spinner
	toasts    *components.ToastManager
	statusBar *components.StatusBar
	input     *components.InputArea

	keys       KeyMap
	reconciler *AnchorReconciler

	// healthCheck probes backend reachability; nil disables the probe.
	healthCheck func() bool

	width   int
	height  int
	online  bool
	lastLen int

	// Session picker overlay state.
	pickerOpen   bool
	pickerCursor int

	activeToasts []components.Toast
	quitting     bool
}

// Options configures the chat model.
type Options struct {
	Theme       *styles.Theme
	Config      *config.Config
	Engine      *engine.Engine
	Transcript  *store.TranscriptStore
	Sessions    *store.SessionStore
	Toasts      *components.ToastManager
	HealthCheck func() bool
}

// NewModel creates the chat model. The toast manager is shared with the
// engine so backend errors surface as toasts.
func NewModel(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	toasts := opts.Toasts
	if toasts == nil {
		toasts = components.NewToastManager()
	}

	threshold := cfg.UI.AutoscrollThresholdLines

	m := &Model{
		theme:       theme,
		cfg:         cfg,
		engine:      opts.Engine,
		transcript:  opts.Transcript,
		sessions:    opts.Sessions,
		viewport:    components.NewTranscriptViewport(theme, 80, 20, threshold),
		sidebar:     components.NewSidebar(theme, 30, 20),
		spinner:     components.NewSpinner(theme),
		toasts:      toasts,
		statusBar:   components.NewStatusBar(theme, 80),
		input:       components.NewInputArea(theme),
		keys:        DefaultKeyMap(),
		reconciler:  NewAnchorReconciler(anchorRatePerSecond),
		healthCheck: opts.HealthCheck,
		online:      true,
		width:       80,
		height:      24,
	}

	m.viewport.SetShowThinking(cfg.UI.ShowThinking)
	return m
}

// Init starts the input cursor blink, toast ticker, and health probe.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.input.Focus(),
		components.ToastTickCmd(),
	}
	if m.healthCheck != nil {
		cmds = append(cmds, m.probeBackendCmd())
	}
	return tea.Batch(cmds...)
}

// probeBackendCmd checks reachability off the update loop.
func (m *Model) probeBackendCmd() tea.Cmd {
	check := m.healthCheck
	return func() tea.Msg {
		return BackendStatusMsg{Online: check()}
	}
}

// scheduleHealthTick arms the next probe.
func scheduleHealthTick() tea.Cmd {
	return tea.Tick(healthProbeInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// =============================================================================
// TRANSCRIPT SYNC
// =============================================================================

// syncTranscript pushes store state into the viewport. A length change
// means turns were appended or replaced and everything re-renders; the
// same length means a streaming delta touched the last turn.
func (m *Model) syncTranscript() {
	turns := m.transcript.Turns()
	if len(turns) != m.lastLen {
		m.viewport.SetTurns(turns)
		m.lastLen = len(turns)
		m.reconciler.Reset()
	} else {
		m.viewport.RefreshLast()
	}
	m.reanchor(turns)
}

// reanchor points the sidebar at the answer under the top of the view.
func (m *Model) reanchor(turns []*model.ChatTurn) {
	idx := m.reconciler.Reconcile(m.viewport.Anchors(), m.viewport.ScrollY())
	m.sidebar.SetTurn(AnchoredAssistant(turns, idx))
}

// activeSessionName returns the display name for the status bar. Until
// the server names the session, the first question stands in.
func (m *Model) activeSessionName() string {
	if s, ok := m.sessions.Active(); ok && s.SessionName != "" {
		return s.DisplayName()
	}
	for _, t := range m.transcript.Turns() {
		if t.Role == model.RoleUser {
			return util.TruncateRunes(util.FirstLine(t.Content), 40)
		}
	}
	return ""
}
