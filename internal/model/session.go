// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and turns.
package model

import "time"

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is server-side session metadata. Sessions are created and renamed
// by the server; the client only lists and observes them.
type Session struct {
	SessionID   string    `json:"session_id"`
	SessionName string    `json:"session_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName returns the session name, falling back to a placeholder.
func (s Session) DisplayName() string {
	if s.SessionName != "" {
		return s.SessionName
	}
	return "New conversation"
}

// =============================================================================
// HISTORY RECORD
// =============================================================================

// HistoryRecord is one past exchange as returned by the session-detail
// endpoint. The documents and recommended_questions fields arrive
// JSON-encoded inside the JSON response; that double encoding is a wire
// quirk handled at the bootstrap boundary and never leaks into ChatTurn.
type HistoryRecord struct {
	UserQuestion         string `json:"user_question"`
	ModelAnswer          string `json:"model_answer"`
	Think                string `json:"think"`
	Documents            string `json:"documents"`
	RecommendedQuestions string `json:"recommended_questions"`
}
