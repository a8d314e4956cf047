// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docchat backend.
package api

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// DELTA MERGER
// =============================================================================

// ApplyFrame decodes one candidate frame and applies it to the target
// turn. It never fails: the sentinel is a clean no-op, and a malformed
// payload is logged and dropped so a single bad frame cannot abort the
// stream. The return value reports whether the turn was mutated, which
// the UI uses to drive auto-scroll.
//
// Fields are applied independently; a content-only frame leaves
// citations untouched and vice versa.
func ApplyFrame(turn *model.ChatTurn, frame string) bool {
	if IsDoneFrame(frame) {
		return false
	}

	payload := strings.TrimSpace(frame)
	payload = strings.TrimPrefix(payload, dataPrefix)
	payload = strings.TrimSpace(payload)

	var delta Delta
	if err := json.Unmarshal([]byte(payload), &delta); err != nil {
		util.Debugf("stream: dropping malformed frame: %v", err)
		return false
	}

	mutated := false

	if delta.Content != "" {
		if delta.Thinking {
			turn.AppendReasoning(delta.Content)
		} else {
			turn.AppendContent(delta.Content)
		}
		mutated = true
	}

	if len(delta.Documents) > 0 {
		turn.SetCitations(delta.Documents)
		mutated = true
	}

	if len(delta.RecommendedQuestions) > 0 {
		turn.SetFollowUpQuestions(delta.RecommendedQuestions)
		mutated = true
	}

	return mutated
}

// IsDoneFrame reports whether a frame carries the end-of-data sentinel.
func IsDoneFrame(frame string) bool {
	payload := strings.TrimSpace(frame)
	payload = strings.TrimPrefix(payload, dataPrefix)
	return strings.TrimSpace(payload) == DoneSentinel
}
