// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// SOURCE SIDEBAR
// =============================================================================

// Sidebar shows the source documents backing the anchored answer: the
// assistant turn whose block is under the top of the transcript view.
// It tracks scrolling, not just the newest answer, so reading an old
// answer shows that answer's sources.
type Sidebar struct {
	theme  *styles.Theme
	width  int
	height int

	turn    *model.ChatTurn
	visible bool
}

// NewSidebar creates a hidden sidebar.
func NewSidebar(theme *styles.Theme, width, height int) *Sidebar {
	return &Sidebar{
		theme:  theme,
		width:  width,
		height: height,
	}
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Toggle flips sidebar visibility and reports the new state.
func (s *Sidebar) Toggle() bool {
	s.visible = !s.visible
	return s.visible
}

// Visible reports whether the sidebar is shown.
func (s *Sidebar) Visible() bool {
	return s.visible
}

// SetTurn anchors the sidebar to an assistant turn. A nil turn clears it.
func (s *Sidebar) SetTurn(turn *model.ChatTurn) {
	s.turn = turn
}

// Turn returns the currently anchored turn, or nil.
func (s *Sidebar) Turn() *model.ChatTurn {
	return s.turn
}

// View renders the source panel.
func (s *Sidebar) View() string {
	if !s.visible {
		return ""
	}

	inner := s.width - 4
	if inner < 12 {
		inner = 12
	}

	var b strings.Builder
	b.WriteString(s.theme.SourceTitle.Render("Sources"))
	b.WriteString("\n")

	switch {
	case s.turn == nil:
		b.WriteString(s.theme.SourceSnippet.Render("No answer in view."))
	case len(s.turn.Documents) == 0 && s.turn.IsStreaming:
		b.WriteString(s.theme.SourceSnippet.Render("Retrieving..."))
	case len(s.turn.Documents) == 0:
		b.WriteString(s.theme.SourceSnippet.Render("No sources for this answer."))
	default:
		for i, doc := range s.turn.Documents {
			if i > 0 {
				b.WriteString("\n")
			}
			name := util.TruncateRunes(doc.DocumentName, inner-4)
			// Badge indices refer to passages, so a document lists every
			// passage index that cites it.
			for _, idx := range passageIndices(s.turn.Citations, doc.DocumentID) {
				b.WriteString(s.theme.CitationBadge.Render(fmt.Sprintf("[%d]", idx)))
			}
			b.WriteString(" ")
			b.WriteString(s.theme.SourceName.Render(name))
			b.WriteString("\n")

			snippet := util.TruncateRunes(util.FirstLine(doc.ContentWithWeight), inner)
			if snippet != "" {
				b.WriteString("    " + s.theme.SourceSnippet.Render(snippet))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(s.theme.SourcePage.Render(fmt.Sprintf("%d source(s), %d passage(s)",
			len(s.turn.Documents), len(s.turn.Citations))))
	}

	return s.theme.SessionList.Width(s.width - 2).Render(b.String())
}

// passageIndices returns the positions in refs citing the given document.
func passageIndices(refs []model.Reference, documentID string) []int {
	var out []int
	for i, ref := range refs {
		if ref.DocumentID == documentID {
			out = append(out, i)
		}
	}
	return out
}
