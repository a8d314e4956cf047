// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestDedupDocuments(t *testing.T) {
	refs := []Reference{
		{ID: "c1", DocumentID: "d2", DocumentName: "b.pdf", ContentWithWeight: "first"},
		{ID: "c2", DocumentID: "d1", DocumentName: "a.pdf", ContentWithWeight: "second"},
		{ID: "c3", DocumentID: "d2", DocumentName: "b.pdf", ContentWithWeight: "third"},
	}

	docs := DedupDocuments(refs)

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	// First-seen order, not sorted.
	if docs[0].DocumentID != "d2" || docs[1].DocumentID != "d1" {
		t.Errorf("order = [%s, %s], want [d2, d1]", docs[0].DocumentID, docs[1].DocumentID)
	}
	// Fields come from the first reference per document.
	if docs[0].ContentWithWeight != "first" {
		t.Errorf("content = %q, want %q", docs[0].ContentWithWeight, "first")
	}
}

func TestDedupDocumentsEmpty(t *testing.T) {
	if docs := DedupDocuments(nil); docs != nil {
		t.Errorf("DedupDocuments(nil) = %v, want nil", docs)
	}
}

func TestNewUserTurn(t *testing.T) {
	turn := NewUserTurn("hello")

	if turn.Role != RoleUser || turn.Kind != KindText {
		t.Errorf("role/kind = %s/%s", turn.Role, turn.Kind)
	}
	if turn.IsStreaming {
		t.Error("user turn should never stream")
	}
	if !strings.HasPrefix(turn.ID, "turn_") {
		t.Errorf("ID = %q", turn.ID)
	}
}

func TestNewAssistantTurn(t *testing.T) {
	turn := NewAssistantTurn()

	if turn.Role != RoleAssistant || turn.Kind != KindDocument {
		t.Errorf("role/kind = %s/%s", turn.Role, turn.Kind)
	}
	if !turn.IsStreaming {
		t.Error("new assistant turn should be streaming")
	}
	if !turn.IsEmpty() {
		t.Error("new assistant turn should be empty")
	}
}

func TestSetCitationsRecomputesDocuments(t *testing.T) {
	turn := NewAssistantTurn()

	turn.SetCitations([]Reference{{ID: "c1", DocumentID: "d1", DocumentName: "a.pdf"}})
	if len(turn.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(turn.Documents))
	}

	turn.SetCitations([]Reference{
		{ID: "c2", DocumentID: "d2", DocumentName: "b.pdf"},
		{ID: "c3", DocumentID: "d3", DocumentName: "c.pdf"},
	})

	// Replacement, never accumulation.
	if len(turn.Citations) != 2 || len(turn.Documents) != 2 {
		t.Errorf("citations/documents = %d/%d, want 2/2", len(turn.Citations), len(turn.Documents))
	}
	if turn.Documents[0].DocumentID != "d2" {
		t.Errorf("first document = %s, want d2", turn.Documents[0].DocumentID)
	}
}

func TestFailPreservesContent(t *testing.T) {
	turn := NewAssistantTurn()
	turn.AppendContent("partial answer")

	turn.Fail("connection lost")

	if turn.Content != "partial answer" {
		t.Errorf("content = %q, partial content must survive failure", turn.Content)
	}
	if !turn.HasError() || turn.IsStreaming {
		t.Errorf("HasError=%v IsStreaming=%v", turn.HasError(), turn.IsStreaming)
	}
}

func TestIsGrounded(t *testing.T) {
	user := NewUserTurn("q")
	if user.IsGrounded() {
		t.Error("user turn reported grounded")
	}

	assistant := NewAssistantTurn()
	if assistant.IsGrounded() {
		t.Error("citation-less assistant turn reported grounded")
	}

	assistant.SetCitations([]Reference{{ID: "c1", DocumentID: "d1"}})
	if !assistant.IsGrounded() {
		t.Error("cited assistant turn not reported grounded")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		content string
		maxLen  int
		want    string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld düde", 10, "héllo w..."},
		{"ab", 1, "a"},
	}

	for _, tt := range tests {
		turn := &ChatTurn{Content: tt.content}
		if got := turn.Preview(tt.maxLen); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.content, tt.maxLen, got, tt.want)
		}
	}
}

func TestSessionDisplayName(t *testing.T) {
	named := Session{SessionID: "s1", SessionName: "Budget review"}
	if named.DisplayName() != "Budget review" {
		t.Errorf("DisplayName = %q", named.DisplayName())
	}

	unnamed := Session{SessionID: "s2"}
	if unnamed.DisplayName() != "New conversation" {
		t.Errorf("DisplayName = %q", unnamed.DisplayName())
	}
}
