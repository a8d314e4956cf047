// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docchat backend.
package api

import (
	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

const (
	// dataPrefix marks payload lines in the event stream. Lines without
	// it (keep-alives, comments) are dropped by the framer.
	dataPrefix = "data: "

	// DoneSentinel is the stream's own end-of-data marker, distinct from
	// the transport-level close.
	DoneSentinel = "[DONE]"
)

// Delta is the partial-field payload carried by one stream frame. Any
// subset of fields may be present; each is applied independently.
type Delta struct {
	Content              string            `json:"content,omitempty"`
	Thinking             bool              `json:"thinking,omitempty"`
	Documents            []model.Reference `json:"documents,omitempty"`
	RecommendedQuestions []string          `json:"recommended_questions,omitempty"`
}

// sendTurnRequest is the body of the send-turn endpoint.
type sendTurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// sessionListResponse is the body of the session-list endpoint.
type sessionListResponse struct {
	Sessions []model.Session `json:"sessions"`
}

// sessionDetailResponse is the body of the session-detail endpoint.
type sessionDetailResponse struct {
	Messages []model.HistoryRecord `json:"messages"`
}

// QuickParseResult is the response of the file quick-parse endpoint.
type QuickParseResult struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name,omitempty"`
}

// serverError is the error envelope the backend uses for non-2xx bodies.
type serverError struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// message returns whichever error field the backend populated.
func (e serverError) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}
