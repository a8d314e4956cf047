// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/markdown"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// sessionLoadTimeout bounds history fetches triggered from the picker.
const sessionLoadTimeout = 15 * time.Second

// Update handles all messages for the chat interface.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TranscriptChangedMsg:
		m.syncTranscript()
		m.statusBar.SetStreaming(m.engine.Busy())
		m.statusBar.SetSession(m.activeSessionName())
		return m, nil

	case SessionsChangedMsg:
		m.statusBar.SetSession(m.activeSessionName())
		return m, nil

	case StreamAcceptedMsg:
		m.spinner.Stop()
		m.statusBar.SetStreaming(true)
		// The server creates or renames the session by the time the
		// first frame arrives, so the list is worth re-fetching.
		return m, m.refreshSessionsCmd()

	case StreamDoneMsg:
		m.spinner.Stop()
		m.statusBar.SetStreaming(false)
		m.statusBar.SetSession(m.activeSessionName())
		return m, nil

	case LoadingMsg:
		if msg.On {
			return m, m.spinner.Start()
		}
		m.spinner.Stop()
		return m, nil

	case BackendStatusMsg:
		if m.online && !msg.Online {
			m.toasts.AddError("backend unreachable")
		}
		if !m.online && msg.Online {
			m.toasts.AddSuccess("backend reachable again")
		}
		m.online = msg.Online
		m.statusBar.SetOnline(msg.Online)
		return m, scheduleHealthTick()

	case healthTickMsg:
		if m.healthCheck == nil {
			return m, nil
		}
		return m, m.probeBackendCmd()

	case UploadResultMsg:
		if msg.Err != nil {
			m.toasts.AddError("upload failed: " + msg.Name + ": " + msg.Err.Error())
		} else {
			m.toasts.AddSuccess("uploaded " + msg.Name)
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.viewport.SetShowThinking(msg.Config.UI.ShowThinking)
		m.toasts.AddInfo("configuration reloaded")
		return m, nil

	case components.ToastTickMsg:
		m.activeToasts = m.toasts.Tick()
		return m, components.ToastTickCmd()

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// resize distributes the new terminal size across the components.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	sidebarWidth := 0
	if m.sidebar.Visible() {
		sidebarWidth = width / 3
		if sidebarWidth > 44 {
			sidebarWidth = 44
		}
	}

	// Header, input, and status bar each take a row band.
	bodyHeight := height - 6
	if bodyHeight < 4 {
		bodyHeight = 4
	}

	m.viewport.SetSize(width-sidebarWidth, bodyHeight)
	m.sidebar.SetSize(sidebarWidth, bodyHeight)
	m.statusBar.SetWidth(width)
	m.input.SetWidth(width)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		// Ctrl+C during a stream cancels instead of quitting.
		if msg.String() == "ctrl+c" && m.engine.Busy() {
			m.engine.Cancel()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.engine.Busy() {
			m.engine.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		question := util.NormalizeInput(m.input.Value())
		if question == "" {
			return m, nil
		}
		if m.engine.Send(question) {
			m.input.Reset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		m.reanchor(m.transcript.Turns())
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.sidebar.Toggle()
		m.statusBar.SetSidebar(m.sidebar.Visible())
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.Thinking):
		m.cfg.UI.ShowThinking = !m.cfg.UI.ShowThinking
		m.viewport.SetShowThinking(m.cfg.UI.ShowThinking)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		m.copyLastAnswer()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.engine.NewConversation()
		m.statusBar.SetSession("")
		return m, nil

	case key.Matches(msg, m.keys.Sessions):
		m.pickerOpen = true
		m.pickerCursor = 0
		return m, m.refreshSessionsCmd()
	}

	// A digit with an empty input picks the matching follow-up question.
	if cmd, handled := m.maybePickFollowUp(msg); handled {
		return m, cmd
	}

	return m, m.input.Update(msg)
}

// copyLastAnswer puts the newest finished answer on the system clipboard,
// with citation markers stripped so the text pastes clean.
func (m *Model) copyLastAnswer() {
	last := m.transcript.LastAssistant()
	if last == nil || last.IsStreaming || last.Content == "" {
		m.toasts.AddInfo("nothing to copy")
		return
	}
	if err := clipboard.WriteAll(markdown.StripBadges(last.Content)); err != nil {
		m.toasts.AddError("clipboard unavailable: " + err.Error())
		return
	}
	m.toasts.AddSuccess("answer copied")
}

// maybePickFollowUp prefills the input from a suggested follow-up when a
// bare digit is pressed with nothing typed yet.
func (m *Model) maybePickFollowUp(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.input.Value() != "" {
		return nil, false
	}
	n, err := strconv.Atoi(msg.String())
	if err != nil || n < 1 {
		return nil, false
	}

	last := m.transcript.LastAssistant()
	if last == nil || last.IsStreaming || n > len(last.FollowUpQuestions) {
		return nil, false
	}

	m.input.SetValue(last.FollowUpQuestions[n-1])
	return nil, true
}

// =============================================================================
// SESSION PICKER
// =============================================================================

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.sessions.Sessions()

	switch msg.String() {
	case "esc", "ctrl+o":
		m.pickerOpen = false
		return m, nil

	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
		return m, nil

	case "down", "j":
		if m.pickerCursor < len(sessions)-1 {
			m.pickerCursor++
		}
		return m, nil

	case "enter":
		m.pickerOpen = false
		if m.pickerCursor >= len(sessions) {
			return m, nil
		}
		id := sessions[m.pickerCursor].SessionID
		return m, m.loadSessionCmd(id)

	case "ctrl+c", "ctrl+q":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// refreshSessionsCmd fetches the session list off the update loop.
// The toast manager is safe to call from a command goroutine.
func (m *Model) refreshSessionsCmd() tea.Cmd {
	eng, toasts := m.engine, m.toasts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionLoadTimeout)
		defer cancel()
		if err := eng.RefreshSessions(ctx); err != nil {
			toasts.AddError("could not list sessions: " + err.Error())
			return nil
		}
		return SessionsChangedMsg{}
	}
}

// loadSessionCmd loads a session transcript off the update loop.
func (m *Model) loadSessionCmd(id string) tea.Cmd {
	eng, toasts := m.engine, m.toasts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionLoadTimeout)
		defer cancel()
		if err := eng.LoadSession(ctx, id); err != nil {
			toasts.AddError("could not open session: " + err.Error())
			return nil
		}
		return SessionsChangedMsg{}
	}
}
