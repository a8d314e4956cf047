// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the docchat TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/docchat-tui/internal/markdown"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT VIEWPORT
// =============================================================================

// streamCursor marks the live insertion point while an answer streams.
const streamCursor = "▌"

// TranscriptViewport is a scrollable view over the conversation transcript.
//
// While pinned to the bottom it follows streaming output; scrolling up past
// the pin threshold detaches it so the user can read earlier turns while
// tokens keep arriving below. Scrolling back to within the threshold of the
// bottom re-engages following.
type TranscriptViewport struct {
	width  int
	height int

	theme    *styles.Theme
	renderer *markdown.Renderer

	turns []*model.ChatTurn

	showThinking bool
	// Pin threshold in lines. Within this distance of the bottom the
	// viewport counts as pinned.
	thresholdLines int

	// Per-turn rendered blocks, cached so a streaming update only pays
	// for re-rendering the last turn.
	blocks []string

	lines   []string
	anchors []int

	scrollY    int
	maxScrollY int
	autoScroll bool
}

// NewTranscriptViewport creates a viewport pinned to the bottom.
// thresholdLines controls how close to the bottom the view must be for
// auto-following to stay engaged; values below 1 are clamped to 1.
func NewTranscriptViewport(theme *styles.Theme, width, height, thresholdLines int) *TranscriptViewport {
	if thresholdLines < 1 {
		thresholdLines = 1
	}
	v := &TranscriptViewport{
		width:          width,
		height:         height,
		theme:          theme,
		thresholdLines: thresholdLines,
		autoScroll:     true,
		showThinking:   true,
	}
	v.renderer = markdown.NewRenderer(v.contentWidth())
	return v
}

func (v *TranscriptViewport) contentWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// SetSize updates the viewport dimensions and re-renders the transcript.
func (v *TranscriptViewport) SetSize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width = width
	v.height = height
	v.renderer = markdown.NewRenderer(v.contentWidth())
	v.renderAll()
	v.reflow()
}

// SetShowThinking toggles the reasoning block on assistant turns.
func (v *TranscriptViewport) SetShowThinking(show bool) {
	if show == v.showThinking {
		return
	}
	v.showThinking = show
	v.renderAll()
	v.reflow()
}

// SetTurns replaces the transcript contents wholesale.
func (v *TranscriptViewport) SetTurns(turns []*model.ChatTurn) {
	v.turns = turns
	v.renderAll()
	v.reflow()
}

// RefreshLast re-renders only the final turn. Called for every streaming
// delta, so everything before the live turn stays cached.
func (v *TranscriptViewport) RefreshLast() {
	n := len(v.turns)
	if n == 0 || len(v.blocks) != n {
		v.renderAll()
		v.reflow()
		return
	}
	v.blocks[n-1] = v.renderTurn(v.turns[n-1])
	v.reflow()
}

func (v *TranscriptViewport) renderAll() {
	v.blocks = make([]string, len(v.turns))
	for i, turn := range v.turns {
		v.blocks[i] = v.renderTurn(turn)
	}
}

// reflow rebuilds the flat line list and per-turn anchors, then restores
// the scroll position. The anchor for turn i is the line its block starts
// on; the sidebar uses these to find the turn under the top of the view.
func (v *TranscriptViewport) reflow() {
	v.lines = v.lines[:0]
	v.anchors = make([]int, len(v.blocks))

	for i, block := range v.blocks {
		if i > 0 {
			v.lines = append(v.lines, "")
		}
		v.anchors[i] = len(v.lines)
		v.lines = append(v.lines, strings.Split(block, "\n")...)
	}

	v.maxScrollY = len(v.lines) - v.height
	if v.maxScrollY < 0 {
		v.maxScrollY = 0
	}

	if v.autoScroll {
		v.scrollY = v.maxScrollY
	} else if v.scrollY > v.maxScrollY {
		v.scrollY = v.maxScrollY
	}
}

// =============================================================================
// TURN RENDERING
// =============================================================================

func (v *TranscriptViewport) renderTurn(turn *model.ChatTurn) string {
	if turn.Role == model.RoleUser {
		return v.theme.UserLabel.Render(turn.Role.DisplayName()) + "\n" +
			v.theme.UserBlock.Render(wrapPlain(turn.Content, v.contentWidth()))
	}

	var b strings.Builder
	b.WriteString(v.theme.AssistantLabel.Render(turn.Role.DisplayName()))
	b.WriteString("\n")

	if v.showThinking && turn.Reasoning != "" {
		b.WriteString(v.theme.Reasoning.Render(wrapPlain(turn.Reasoning, v.contentWidth()-4)))
		b.WriteString("\n")
	}

	switch {
	case turn.Content == "" && turn.IsStreaming:
		b.WriteString(v.theme.AssistantBlock.Render(v.theme.StreamCursor.Render(streamCursor)))
	case turn.IsStreaming:
		body := v.renderer.RenderTurn(turn)
		b.WriteString(v.theme.AssistantBlock.Render(strings.TrimRight(body, "\n") + v.theme.StreamCursor.Render(streamCursor)))
	default:
		body := v.renderer.RenderTurn(turn)
		b.WriteString(v.theme.AssistantBlock.Render(strings.TrimRight(body, "\n")))
	}

	if turn.HasError() {
		b.WriteString("\n")
		b.WriteString(v.theme.FailedBlock.Render(styles.StatusIndicators.Error + " " + turn.Err))
	}

	if !turn.IsStreaming && len(turn.FollowUpQuestions) > 0 {
		b.WriteString("\n")
		for i, q := range turn.FollowUpQuestions {
			key := v.theme.FollowUpKey.Render(fmt.Sprintf("(%d)", i+1))
			b.WriteString("  " + key + " " + v.theme.FollowUp.Render(q))
			if i < len(turn.FollowUpQuestions)-1 {
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// =============================================================================
// SCROLLING
// =============================================================================

// distanceFromBottom returns how many lines the view is above the bottom.
func (v *TranscriptViewport) distanceFromBottom() int {
	return v.maxScrollY - v.scrollY
}

// updatePin recomputes whether the viewport follows streaming output.
func (v *TranscriptViewport) updatePin() {
	v.autoScroll = v.distanceFromBottom() <= v.thresholdLines
}

// ScrollUp moves the view up n lines, detaching the bottom pin once the
// view leaves the threshold zone.
func (v *TranscriptViewport) ScrollUp(n int) {
	v.scrollY -= n
	if v.scrollY < 0 {
		v.scrollY = 0
	}
	v.updatePin()
}

// ScrollDown moves the view down n lines.
func (v *TranscriptViewport) ScrollDown(n int) {
	v.scrollY += n
	if v.scrollY > v.maxScrollY {
		v.scrollY = v.maxScrollY
	}
	v.updatePin()
}

// PageUp scrolls up by one page.
func (v *TranscriptViewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *TranscriptViewport) PageDown() {
	v.ScrollDown(v.height)
}

// GotoTop jumps to the first turn and detaches the pin.
func (v *TranscriptViewport) GotoTop() {
	v.scrollY = 0
	v.updatePin()
}

// GotoBottom jumps to the newest content and re-engages the pin.
func (v *TranscriptViewport) GotoBottom() {
	v.scrollY = v.maxScrollY
	v.autoScroll = true
}

// Pinned reports whether the viewport follows streaming output.
func (v *TranscriptViewport) Pinned() bool {
	return v.autoScroll
}

// ScrollY returns the current top line of the view.
func (v *TranscriptViewport) ScrollY() int {
	return v.scrollY
}

// Anchors returns the starting line of each turn, in turn order.
func (v *TranscriptViewport) Anchors() []int {
	out := make([]int, len(v.anchors))
	copy(out, v.anchors)
	return out
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the visible window of the transcript.
func (v *TranscriptViewport) View() string {
	if len(v.lines) == 0 {
		return v.theme.ThinkingText.Render("Ask a question about your documents to get started.")
	}

	top := v.scrollY
	bottom := top + v.height
	if bottom > len(v.lines) {
		bottom = len(v.lines)
	}

	visible := make([]string, 0, v.height)
	visible = append(visible, v.lines[top:bottom]...)
	for len(visible) < v.height {
		visible = append(visible, "")
	}

	if below := v.distanceFromBottom(); below > 0 && v.height > 0 {
		indicator := v.theme.ShortcutDesc.Render(fmt.Sprintf("v %d more lines (End to follow)", below))
		visible[len(visible)-1] = indicator
	}

	return strings.Join(visible, "\n")
}

// =============================================================================
// PLAIN TEXT WRAPPING
// =============================================================================

// wrapPlain wraps text at word boundaries using display width, preserving
// existing newlines. Overly long words are broken mid-word.
func wrapPlain(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			out = append(out, line)
			continue
		}

		var current string
		for _, word := range strings.Fields(line) {
			for runewidth.StringWidth(word) > maxWidth {
				head := runewidth.Truncate(word, maxWidth, "")
				if current != "" {
					out = append(out, current)
					current = ""
				}
				out = append(out, head)
				word = strings.TrimPrefix(word, head)
			}
			switch {
			case current == "":
				current = word
			case runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= maxWidth:
				current += " " + word
			default:
				out = append(out, current)
				current = word
			}
		}
		out = append(out, current)
	}

	return strings.Join(out, "\n")
}
