// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func TestTranscriptAppendNotifies(t *testing.T) {
	s := NewTranscriptStore()

	fired := 0
	s.Subscribe(func() { fired++ })

	s.Append(model.NewUserTurn("hi"))
	s.Append(model.NewAssistantTurn())

	if fired != 2 {
		t.Errorf("listener fired %d times, want 2", fired)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestTranscriptReplaceIsWholesale(t *testing.T) {
	s := NewTranscriptStore()
	s.Append(model.NewUserTurn("old"))

	restored := []*model.ChatTurn{
		model.NewUserTurn("q"),
		model.NewUserTurn("q2"),
	}
	s.Replace(restored)

	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("len = %d, want 2", len(turns))
	}
	if turns[0].Content != "q" {
		t.Errorf("turn 0 = %q", turns[0].Content)
	}
}

func TestTranscriptTurnsIsSnapshot(t *testing.T) {
	s := NewTranscriptStore()
	s.Append(model.NewUserTurn("a"))

	snapshot := s.Turns()
	s.Append(model.NewUserTurn("b"))

	if len(snapshot) != 1 {
		t.Errorf("snapshot len = %d, want 1", len(snapshot))
	}
}

func TestTranscriptLastAssistant(t *testing.T) {
	s := NewTranscriptStore()
	if s.LastAssistant() != nil {
		t.Error("empty transcript returned an assistant turn")
	}

	s.Append(model.NewUserTurn("q1"))
	first := model.NewAssistantTurn()
	s.Append(first)
	s.Append(model.NewUserTurn("q2"))
	second := model.NewAssistantTurn()
	s.Append(second)

	if got := s.LastAssistant(); got != second {
		t.Errorf("LastAssistant = %v, want the later turn", got)
	}
}

func TestTranscriptGroundedTurns(t *testing.T) {
	s := NewTranscriptStore()
	s.Append(model.NewUserTurn("q"))

	plain := model.NewAssistantTurn()
	s.Append(plain)

	cited := model.NewAssistantTurn()
	cited.SetCitations([]model.Reference{{ID: "c1", DocumentID: "d1"}})
	s.Append(cited)

	grounded := s.GroundedTurns()
	if len(grounded) != 1 || grounded[0] != cited {
		t.Errorf("grounded = %v, want only the cited turn", grounded)
	}
}

func TestTranscriptTouchNotifies(t *testing.T) {
	s := NewTranscriptStore()
	turn := model.NewAssistantTurn()
	s.Append(turn)

	fired := 0
	s.Subscribe(func() { fired++ })

	turn.AppendContent("delta")
	s.Touch()

	if fired != 1 {
		t.Errorf("listener fired %d times, want 1", fired)
	}
}

func TestSessionStoreReplacePreservesServerOrder(t *testing.T) {
	s := NewSessionStore()

	fired := 0
	s.Subscribe(func() { fired++ })

	s.Replace([]model.Session{
		{SessionID: "s3", SessionName: "newest"},
		{SessionID: "s1", SessionName: "oldest"},
	})

	sessions := s.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	if sessions[0].SessionID != "s3" {
		t.Errorf("order = %s first, want s3", sessions[0].SessionID)
	}
	if fired != 1 {
		t.Errorf("listener fired %d times, want 1", fired)
	}
}

func TestSessionStoreActive(t *testing.T) {
	s := NewSessionStore()
	if s.ActiveID() != "" {
		t.Errorf("initial ActiveID = %q, want empty", s.ActiveID())
	}

	s.Replace([]model.Session{{SessionID: "s1", SessionName: "docs"}})
	s.SetActive("s1")

	active, ok := s.Active()
	if !ok || active.SessionName != "docs" {
		t.Errorf("Active = %v, %v", active, ok)
	}

	// Unknown active id: id is kept, metadata lookup misses.
	s.SetActive("s9")
	if _, ok := s.Active(); ok {
		t.Error("Active found metadata for unknown id")
	}
	if s.ActiveID() != "s9" {
		t.Errorf("ActiveID = %q, want s9", s.ActiveID())
	}
}

func TestSessionStoreSetActiveNoopDoesNotNotify(t *testing.T) {
	s := NewSessionStore()
	s.SetActive("s1")

	fired := 0
	s.Subscribe(func() { fired++ })

	s.SetActive("s1")
	if fired != 0 {
		t.Errorf("listener fired %d times for no-op, want 0", fired)
	}
}
