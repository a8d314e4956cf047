// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// INPUT AREA
// =============================================================================

// InputArea is the single-line question input at the bottom of the chat.
type InputArea struct {
	input textinput.Model
	theme *styles.Theme
	width int
}

// NewInputArea creates a focused question input.
func NewInputArea(theme *styles.Theme) *InputArea {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.CharLimit = 4096
	ti.Width = 70
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Cursor.Style = theme.InputPrompt

	return &InputArea{
		input: ti,
		theme: theme,
		width: 80,
	}
}

// Focus focuses the input.
func (i *InputArea) Focus() tea.Cmd {
	return i.input.Focus()
}

// Blur removes focus from the input.
func (i *InputArea) Blur() {
	i.input.Blur()
}

// Focused returns whether the input is focused.
func (i *InputArea) Focused() bool {
	return i.input.Focused()
}

// SetWidth sets the input area width.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	inputWidth := width - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	i.input.Width = inputWidth
}

// Value returns the current input value.
func (i *InputArea) Value() string {
	return i.input.Value()
}

// SetValue sets the input value. Used to prefill a follow-up question.
func (i *InputArea) SetValue(value string) {
	i.input.SetValue(value)
	i.input.CursorEnd()
}

// Reset clears the input.
func (i *InputArea) Reset() {
	i.input.Reset()
}

// Update forwards messages to the underlying text input.
func (i *InputArea) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return cmd
}

// View renders the input area.
func (i *InputArea) View() string {
	return i.theme.InputContainer.Width(i.width - 2).Render(i.input.View())
}
