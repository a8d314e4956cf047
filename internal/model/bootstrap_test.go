// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func TestBootstrapTurns(t *testing.T) {
	records := []HistoryRecord{
		{
			UserQuestion:         "what is the refund policy?",
			ModelAnswer:          "30 days.",
			Think:                "checking the policy doc",
			Documents:            `[{"id":"c1","document_id":"d1","document_name":"policy.pdf","content_with_weight":"..."}]`,
			RecommendedQuestions: `["what about exchanges?"]`,
		},
		{
			UserQuestion: "thanks",
			ModelAnswer:  "You're welcome.",
		},
	}

	turns := BootstrapTurns(records)

	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "what is the refund policy?" {
		t.Errorf("turn 0 = %s %q", turns[0].Role, turns[0].Content)
	}

	assistant := turns[1]
	if assistant.Role != RoleAssistant {
		t.Fatalf("turn 1 role = %s", assistant.Role)
	}
	if assistant.Content != "30 days." || assistant.Reasoning != "checking the policy doc" {
		t.Errorf("content/reasoning = %q/%q", assistant.Content, assistant.Reasoning)
	}
	if assistant.IsStreaming {
		t.Error("restored turn marked streaming")
	}
	if len(assistant.Citations) != 1 || len(assistant.Documents) != 1 {
		t.Errorf("citations/documents = %d/%d", len(assistant.Citations), len(assistant.Documents))
	}
	if len(assistant.FollowUpQuestions) != 1 {
		t.Errorf("follow-ups = %v", assistant.FollowUpQuestions)
	}
}

func TestBootstrapTurnsSkipsEmptySides(t *testing.T) {
	records := []HistoryRecord{
		{UserQuestion: "unanswered question"},
		{ModelAnswer: "orphan answer"},
	}

	turns := BootstrapTurns(records)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s", turns[0].Role, turns[1].Role)
	}
}

// Malformed nested JSON must degrade to empty collections, never fail
// the whole bootstrap.
func TestBootstrapTurnsDefensiveDecode(t *testing.T) {
	records := []HistoryRecord{
		{
			UserQuestion:         "q",
			ModelAnswer:          "a",
			Documents:            `{not valid json`,
			RecommendedQuestions: `also broken`,
		},
	}

	turns := BootstrapTurns(records)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}

	assistant := turns[1]
	if assistant.Content != "a" {
		t.Errorf("content = %q", assistant.Content)
	}
	if len(assistant.Citations) != 0 || len(assistant.FollowUpQuestions) != 0 {
		t.Errorf("citations/follow-ups = %d/%d, want 0/0",
			len(assistant.Citations), len(assistant.FollowUpQuestions))
	}
}

func TestBootstrapTurnsEmpty(t *testing.T) {
	if turns := BootstrapTurns(nil); len(turns) != 0 {
		t.Errorf("got %d turns, want 0", len(turns))
	}
}
