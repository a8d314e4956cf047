// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and turns.
package model

import (
	"encoding/json"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// HISTORY BOOTSTRAP
// =============================================================================

// BootstrapTurns reconstructs a turn sequence from flat history records.
// Each record yields a user turn (when a question is present) followed by
// an assistant turn (when an answer is present). The nested JSON-string
// fields are decoded defensively: a bad payload yields an empty collection
// and a log line, never an error.
func BootstrapTurns(records []HistoryRecord) []*ChatTurn {
	turns := make([]*ChatTurn, 0, len(records)*2)

	for _, rec := range records {
		if rec.UserQuestion != "" {
			turns = append(turns, NewUserTurn(rec.UserQuestion))
		}

		if rec.ModelAnswer == "" {
			continue
		}

		turn := &ChatTurn{
			ID:        generateTurnID(),
			Role:      RoleAssistant,
			Kind:      KindDocument,
			Content:   rec.ModelAnswer,
			Reasoning: rec.Think,
		}

		if refs := decodeReferences(rec.Documents); len(refs) > 0 {
			turn.SetCitations(refs)
		}
		if questions := decodeQuestions(rec.RecommendedQuestions); len(questions) > 0 {
			turn.FollowUpQuestions = questions
		}

		turns = append(turns, turn)
	}

	return turns
}

// decodeReferences parses the JSON-encoded citation list from a history
// record. Parse failure is logged and yields nil.
func decodeReferences(raw string) []Reference {
	if raw == "" {
		return nil
	}
	var refs []Reference
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		util.Debugf("bootstrap: bad documents payload: %v", err)
		return nil
	}
	return refs
}

// decodeQuestions parses the JSON-encoded follow-up question list from a
// history record. Parse failure is logged and yields nil.
func decodeQuestions(raw string) []string {
	if raw == "" {
		return nil
	}
	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		util.Debugf("bootstrap: bad recommended_questions payload: %v", err)
		return nil
	}
	return questions
}
