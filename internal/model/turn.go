// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and turns.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN KIND
// =============================================================================

// Kind distinguishes plain text turns from document-grounded ones.
// Only document-grounded assistant turns carry citations and participate
// in the side-panel anchor tracking.
type Kind string

const (
	KindText     Kind = "text"
	KindDocument Kind = "document"
)

// =============================================================================
// REFERENCE AND DOCUMENT TYPES
// =============================================================================

// Reference is one retrieved passage backing part of an assistant answer.
// Immutable once received from the server.
type Reference struct {
	ID                string      `json:"id"`
	DocumentID        string      `json:"document_id"`
	DocumentName      string      `json:"document_name"`
	ContentWithWeight string      `json:"content_with_weight"`
	Positions         [][]float64 `json:"positions,omitempty"`
}

// Document is a per-source rollup of one or more references sharing a
// document identifier. Always derived from a citation list, never stored
// independently.
type Document struct {
	DocumentID        string `json:"document_id"`
	DocumentName      string `json:"document_name"`
	ContentWithWeight string `json:"content_with_weight"`
}

// DedupDocuments projects a citation list onto its distinct documents,
// preserving first-seen order and carrying the fields of the first
// reference seen for each document id.
func DedupDocuments(refs []Reference) []Document {
	if len(refs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(refs))
	docs := make([]Document, 0, len(refs))

	for _, ref := range refs {
		if seen[ref.DocumentID] {
			continue
		}
		seen[ref.DocumentID] = true
		docs = append(docs, Document{
			DocumentID:        ref.DocumentID,
			DocumentName:      ref.DocumentName,
			ContentWithWeight: ref.ContentWithWeight,
		})
	}

	return docs
}

// =============================================================================
// CHAT TURN
// =============================================================================

// ChatTurn represents a single turn in a transcript.
//
// For assistant turns, Content and Reasoning accumulate append-only while
// IsStreaming is true. Citations and FollowUpQuestions are replaced
// wholesale when a new batch arrives. Documents is always the deduped
// projection of Citations.
type ChatTurn struct {
	// Identity; stable for the turn's lifetime.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	// Accumulated answer text and "thinking" text. Two separate channels:
	// a delta flagged as thinking appends to Reasoning, not Content.
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`

	// Retrieval state.
	Citations []Reference `json:"citations,omitempty"`
	Documents []Document  `json:"documents,omitempty"`

	// Follow-up suggestions; only meaningful on the final delta.
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`

	// Streaming state. Err is set on transport failure; content already
	// accumulated stays visible alongside it.
	IsStreaming bool   `json:"-"`
	Err         string `json:"error,omitempty"`
}

// NewUserTurn creates an immutable user turn.
func NewUserTurn(content string) *ChatTurn {
	return &ChatTurn{
		ID:        generateTurnID(),
		Role:      RoleUser,
		Kind:      KindText,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantTurn creates an empty assistant placeholder turn ready to
// receive streamed deltas.
func NewAssistantTurn() *ChatTurn {
	return &ChatTurn{
		ID:          generateTurnID(),
		Role:        RoleAssistant,
		Kind:        KindDocument,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// =============================================================================
// TURN MUTATION
// =============================================================================

// AppendContent appends streamed answer text.
func (t *ChatTurn) AppendContent(s string) {
	t.Content += s
}

// AppendReasoning appends streamed thinking text.
func (t *ChatTurn) AppendReasoning(s string) {
	t.Reasoning += s
}

// SetCitations replaces the citation list wholesale and recomputes the
// derived document list. Earlier batches are fully superseded, not merged.
func (t *ChatTurn) SetCitations(refs []Reference) {
	t.Citations = refs
	t.Documents = DedupDocuments(refs)
}

// SetFollowUpQuestions replaces the follow-up question list wholesale.
func (t *ChatTurn) SetFollowUpQuestions(questions []string) {
	t.FollowUpQuestions = questions
}

// FinishStream marks the turn as no longer streaming.
func (t *ChatTurn) FinishStream() {
	t.IsStreaming = false
}

// Fail records a transport failure. Accumulated content is preserved;
// partial answers are better than none.
func (t *ChatTurn) Fail(message string) {
	t.Err = message
	t.IsStreaming = false
}

// HasError returns true if the turn ended in a transport failure.
func (t *ChatTurn) HasError() bool {
	return t.Err != ""
}

// IsEmpty returns true if the turn carries no visible text.
func (t *ChatTurn) IsEmpty() bool {
	return t.Content == "" && t.Reasoning == ""
}

// IsGrounded returns true for document-grounded assistant turns that
// actually carry citations, the ones the side panel anchors to.
func (t *ChatTurn) IsGrounded() bool {
	return t.Role == RoleAssistant && t.Kind == KindDocument && len(t.Citations) > 0
}

// Preview returns a truncated single-line preview of the turn content.
// Uses rune-based truncation to handle Unicode correctly.
func (t *ChatTurn) Preview(maxLen int) string {
	runes := []rune(t.Content)
	if len(runes) <= maxLen {
		return t.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateTurnID creates a unique turn ID.
func generateTurnID() string {
	return "turn_" + uuid.NewString()
}
