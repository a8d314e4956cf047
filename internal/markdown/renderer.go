// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders assistant answers for terminal display.
package markdown

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns assistant Markdown into styled terminal output.
type Renderer struct {
	tr    *glamour.TermRenderer
	width int

	badgeStyle     lipgloss.Style
	deadBadgeStyle lipgloss.Style
}

// NewRenderer creates a renderer wrapping at the given width. A glamour
// initialization failure degrades to a plain renderer with chroma code
// highlighting only.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		tr = nil
	}

	return &Renderer{
		tr:    tr,
		width: width,
		badgeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("159")).
			Bold(true),
		deadBadgeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Render renders Markdown without citation handling.
func (r *Renderer) Render(content string) string {
	if r.tr == nil {
		return highlightCodeBlocks(content)
	}

	rendered, err := r.tr.Render(content)
	if err != nil {
		return highlightCodeBlocks(content)
	}
	return rendered
}

// RenderTurn renders one assistant turn: Markdown plus [N] citation
// badges resolved against the turn's citation list. Markers whose index
// falls outside the list render dimmed, so a stale marker never crashes
// or points at the wrong source.
func (r *Renderer) RenderTurn(turn *model.ChatTurn) string {
	parked := parkBadges(turn.Content)
	rendered := r.Render(parked)

	return restoreBadges(rendered, func(index int) string {
		label := "[" + strconv.Itoa(index) + "]"
		if index < 0 || index >= len(turn.Citations) {
			return r.deadBadgeStyle.Render(label)
		}
		return r.badgeStyle.Render(label)
	})
}

// =============================================================================
// FALLBACK CODE HIGHLIGHTING
// =============================================================================

// highlightCodeBlocks highlights fenced code blocks with chroma,
// leaving the rest of the text untouched. Used when glamour is
// unavailable.
func highlightCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	var inCodeBlock bool
	var codeLines []string
	var language string

	flush := func() {
		result = append(result, highlightCode(strings.Join(codeLines, "\n"), language))
		codeLines = nil
		language = ""
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inCodeBlock {
				flush()
				inCodeBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCodeBlock = true
			}
		case inCodeBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	if inCodeBlock && len(codeLines) > 0 {
		flush()
	}

	return strings.Join(result, "\n")
}

// highlightCode applies chroma syntax highlighting for terminal output.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
