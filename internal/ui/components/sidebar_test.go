// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func citedTurn() *model.ChatTurn {
	a := model.NewAssistantTurn()
	a.AppendContent("See ##0$$ and ##2$$.")
	a.SetCitations([]model.Reference{
		{ID: "r0", DocumentID: "d1", DocumentName: "policy.pdf", ContentWithWeight: "leave policy text"},
		{ID: "r1", DocumentID: "d2", DocumentName: "handbook.md", ContentWithWeight: "handbook text"},
		{ID: "r2", DocumentID: "d1", DocumentName: "policy.pdf", ContentWithWeight: "more policy text"},
	})
	a.FinishStream()
	return a
}

func TestSidebarHiddenByDefault(t *testing.T) {
	s := NewSidebar(testTheme(), 40, 20)
	if s.Visible() {
		t.Error("sidebar should start hidden")
	}
	if s.View() != "" {
		t.Error("hidden sidebar should render nothing")
	}
	if !s.Toggle() {
		t.Error("first toggle should show the sidebar")
	}
}

func TestSidebarListsDocumentsWithPassageIndices(t *testing.T) {
	s := NewSidebar(testTheme(), 40, 20)
	s.Toggle()
	s.SetTurn(citedTurn())

	view := s.View()
	if !strings.Contains(view, "policy.pdf") || !strings.Contains(view, "handbook.md") {
		t.Fatalf("sidebar should list both documents: %q", view)
	}
	// policy.pdf is cited by passages 0 and 2, handbook.md by passage 1.
	if !strings.Contains(view, "[0]") || !strings.Contains(view, "[2]") || !strings.Contains(view, "[1]") {
		t.Errorf("sidebar should show passage indices: %q", view)
	}
	if !strings.Contains(view, "2 source(s), 3 passage(s)") {
		t.Errorf("sidebar should summarize counts: %q", view)
	}
	// Dedup: each document appears once.
	if strings.Count(view, "policy.pdf") != 1 {
		t.Errorf("document names must be deduped: %q", view)
	}
}

func TestSidebarPlaceholders(t *testing.T) {
	s := NewSidebar(testTheme(), 40, 20)
	s.Toggle()

	if view := s.View(); !strings.Contains(view, "No answer in view") {
		t.Errorf("nil turn should show placeholder: %q", view)
	}

	streaming := model.NewAssistantTurn()
	s.SetTurn(streaming)
	if view := s.View(); !strings.Contains(view, "Retrieving") {
		t.Errorf("streaming turn without documents should show retrieving: %q", view)
	}

	done := model.NewAssistantTurn()
	done.AppendContent("plain answer")
	done.FinishStream()
	s.SetTurn(done)
	if view := s.View(); !strings.Contains(view, "No sources") {
		t.Errorf("ungrounded answer should show no-sources placeholder: %q", view)
	}
}

func TestPassageIndices(t *testing.T) {
	refs := citedTurn().Citations
	if got := passageIndices(refs, "d1"); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected [0 2] for d1, got %v", got)
	}
	if got := passageIndices(refs, "d2"); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1] for d2, got %v", got)
	}
	if got := passageIndices(refs, "missing"); got != nil {
		t.Errorf("expected nil for unknown document, got %v", got)
	}
}
