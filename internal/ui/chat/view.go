// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// View renders the full chat interface.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.pickerOpen {
		b.WriteString(m.renderSessionPicker())
	} else {
		b.WriteString(m.renderBody())
	}
	b.WriteString("\n")

	if m.spinner.IsActive() {
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	}

	if toasts := components.RenderToasts(m.theme, m.activeToasts); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())

	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("docchat")
	subtitle := m.theme.HeaderSubtitle.Render("ask your documents")
	return m.theme.Container.Render(title + " " + subtitle)
}

func (m *Model) renderBody() string {
	if !m.sidebar.Visible() {
		return m.viewport.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.sidebar.View())
}

// renderSessionPicker renders the session list overlay.
func (m *Model) renderSessionPicker() string {
	sessions := m.sessions.Sessions()

	var b strings.Builder
	b.WriteString(m.theme.SourceTitle.Render("Conversations"))
	b.WriteString("\n")

	if len(sessions) == 0 {
		b.WriteString(m.theme.SessionMeta.Render("No saved conversations."))
	}

	for i, s := range sessions {
		line := fmt.Sprintf("%s  %s",
			util.TruncateRunes(s.DisplayName(), 40),
			m.theme.SessionMeta.Render(s.SessionID))
		if i == m.pickerCursor {
			b.WriteString(m.theme.SessionItemSelected.Render("> " + line))
		} else {
			b.WriteString(m.theme.SessionItem.Render("  " + line))
		}
		if i < len(sessions)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.ShortcutDesc.Render("enter open  esc close"))

	return m.theme.SessionList.Width(m.width - 4).Render(b.String())
}
