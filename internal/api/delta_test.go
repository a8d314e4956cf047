// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func applyAll(t *testing.T, turn *model.ChatTurn, frames ...string) {
	t.Helper()
	for _, f := range frames {
		ApplyFrame(turn, f)
	}
}

func TestApplyFrameAppendsContent(t *testing.T) {
	turn := model.NewAssistantTurn()
	applyAll(t, turn,
		`data: {"content":"Hel"}`,
		`data: {"content":"lo"}`,
		`data: [DONE]`,
	)

	if turn.Content != "Hello" {
		t.Errorf("content = %q, want %q", turn.Content, "Hello")
	}
	if turn.Reasoning != "" {
		t.Errorf("reasoning = %q, want empty", turn.Reasoning)
	}
}

func TestApplyFrameRoutesThinkingToReasoning(t *testing.T) {
	turn := model.NewAssistantTurn()
	applyAll(t, turn,
		`data: {"content":"step 1. ","thinking":true}`,
		`data: {"content":"step 2.","thinking":true}`,
		`data: {"content":"Answer."}`,
	)

	if turn.Reasoning != "step 1. step 2." {
		t.Errorf("reasoning = %q", turn.Reasoning)
	}
	if turn.Content != "Answer." {
		t.Errorf("content = %q", turn.Content)
	}
}

func TestApplyFrameMalformedFrameIsDropped(t *testing.T) {
	turn := model.NewAssistantTurn()

	applyAll(t, turn, `data: {"content":"a"}`)
	if ApplyFrame(turn, `data: {bad json!!`) {
		t.Error("malformed frame reported as mutation")
	}
	applyAll(t, turn, `data: {"content":"b"}`)

	// Frames after the malformed one still apply.
	if turn.Content != "ab" {
		t.Errorf("content = %q, want %q", turn.Content, "ab")
	}
}

func TestApplyFrameDoneSentinelIsNoOp(t *testing.T) {
	turn := model.NewAssistantTurn()
	applyAll(t, turn, `data: {"content":"x"}`)

	if ApplyFrame(turn, "data: [DONE]") {
		t.Error("sentinel frame reported as mutation")
	}
	if turn.Content != "x" {
		t.Errorf("content = %q, want %q", turn.Content, "x")
	}
}

func TestApplyFrameDocumentsReplaceWholesale(t *testing.T) {
	turn := model.NewAssistantTurn()

	applyAll(t, turn,
		`data: {"documents":[{"id":"c1","document_id":"d1","document_name":"a.pdf","content_with_weight":"x"}]}`,
	)
	if len(turn.Citations) != 1 || len(turn.Documents) != 1 {
		t.Fatalf("after first frame: %d citations, %d documents", len(turn.Citations), len(turn.Documents))
	}

	// A later documents frame supersedes, never accumulates.
	applyAll(t, turn,
		`data: {"documents":[`+
			`{"id":"c2","document_id":"d2","document_name":"b.pdf","content_with_weight":"y"},`+
			`{"id":"c3","document_id":"d2","document_name":"b.pdf","content_with_weight":"z"},`+
			`{"id":"c4","document_id":"d3","document_name":"c.pdf","content_with_weight":"w"}]}`,
	)

	if len(turn.Citations) != 3 {
		t.Errorf("citations = %d, want 3", len(turn.Citations))
	}
	// Documents dedup by document_id, first-seen order.
	if len(turn.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(turn.Documents))
	}
	if turn.Documents[0].DocumentID != "d2" || turn.Documents[1].DocumentID != "d3" {
		t.Errorf("document order = [%s, %s], want [d2, d3]",
			turn.Documents[0].DocumentID, turn.Documents[1].DocumentID)
	}
}

func TestApplyFrameRecommendedQuestionsReplace(t *testing.T) {
	turn := model.NewAssistantTurn()

	applyAll(t, turn,
		`data: {"recommended_questions":["q1","q2"]}`,
		`data: {"recommended_questions":["q3"]}`,
	)

	if len(turn.FollowUpQuestions) != 1 || turn.FollowUpQuestions[0] != "q3" {
		t.Errorf("follow-ups = %v, want [q3]", turn.FollowUpQuestions)
	}
}

func TestApplyFrameIndependentFields(t *testing.T) {
	// A single frame can carry content and documents together.
	turn := model.NewAssistantTurn()
	applyAll(t, turn,
		`data: {"content":"cited","documents":[{"id":"c1","document_id":"d1","document_name":"a.pdf","content_with_weight":"x"}]}`,
	)

	if turn.Content != "cited" {
		t.Errorf("content = %q", turn.Content)
	}
	if len(turn.Citations) != 1 {
		t.Errorf("citations = %d, want 1", len(turn.Citations))
	}
}

func TestIsDoneFrame(t *testing.T) {
	tests := []struct {
		frame string
		want  bool
	}{
		{"data: [DONE]", true},
		{"data: [DONE]\r", true},
		{"[DONE]", true},
		{"data: {\"content\":\"[DONE]\"}", false},
		{"data: ", false},
	}
	for _, tt := range tests {
		if got := IsDoneFrame(tt.frame); got != tt.want {
			t.Errorf("IsDoneFrame(%q) = %v, want %v", tt.frame, got, tt.want)
		}
	}
}
