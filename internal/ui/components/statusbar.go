// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom line: backend reachability, active session,
// and the shortcut hints.
type StatusBar struct {
	theme *styles.Theme
	width int

	sessionName string
	online      bool
	streaming   bool
	sidebarOn   bool
}

// NewStatusBar creates a status bar assuming the backend is reachable.
func NewStatusBar(theme *styles.Theme, width int) *StatusBar {
	return &StatusBar{
		theme:  theme,
		width:  width,
		online: true,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetSession sets the displayed session name.
func (s *StatusBar) SetSession(name string) {
	s.sessionName = name
}

// SetOnline sets backend reachability.
func (s *StatusBar) SetOnline(online bool) {
	s.online = online
}

// SetStreaming flags whether an answer is currently streaming.
func (s *StatusBar) SetStreaming(streaming bool) {
	s.streaming = streaming
}

// SetSidebar flags whether the source sidebar is open.
func (s *StatusBar) SetSidebar(on bool) {
	s.sidebarOn = on
}

// View renders the status bar.
func (s *StatusBar) View() string {
	var left strings.Builder

	if s.online {
		left.WriteString(s.theme.StatusOnline.Render("online"))
	} else {
		left.WriteString(s.theme.StatusOffline.Render("offline"))
	}
	left.WriteString("  ")

	name := s.sessionName
	if name == "" {
		name = "new conversation"
	}
	left.WriteString(s.theme.StatusSession.Render(util.TruncateRunes(name, 32)))

	if s.streaming {
		left.WriteString("  ")
		left.WriteString(s.theme.ThinkingText.Render("streaming"))
	}

	hints := []string{"Enter send", "Esc cancel", "Ctrl+S sources", "Ctrl+N new", "Ctrl+O sessions", "q quit"}
	var right strings.Builder
	for i, hint := range hints {
		if i > 0 {
			right.WriteString("  ")
		}
		parts := strings.SplitN(hint, " ", 2)
		right.WriteString(s.theme.ShortcutKey.Render(parts[0]))
		right.WriteString(" ")
		right.WriteString(s.theme.ShortcutDesc.Render(parts[1]))
	}

	leftStr := left.String()
	rightStr := right.String()
	pad := s.width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if pad < 1 {
		pad = 1
	}

	return s.theme.StatusBar.Render(leftStr + strings.Repeat(" ", pad) + rightStr)
}
