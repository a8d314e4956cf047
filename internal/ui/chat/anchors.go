// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main Bubble Tea model for the docchat TUI.
//
// This file implements the scroll anchor reconciler that decides which
// answer the source sidebar describes.
package chat

import (
	"golang.org/x/time/rate"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// ANCHOR RECONCILIATION
// =============================================================================

// ReconcileAnchor returns the index of the turn under the top of the
// viewport: the greatest anchor at or above the scroll position. When the
// scroll position sits above every anchor the first turn wins. Returns -1
// for an empty transcript.
//
// Anchors must be sorted ascending, which the viewport guarantees.
func ReconcileAnchor(anchors []int, scrollY int) int {
	if len(anchors) == 0 {
		return -1
	}

	best := 0
	for i, a := range anchors {
		if a > scrollY {
			break
		}
		best = i
	}
	return best
}

// AnchorReconciler throttles anchor reconciliation. Streaming deltas can
// arrive hundreds of times a second and every one moves the pinned
// viewport, so the sidebar recomputes its anchor at a bounded rate and
// otherwise keeps the previous answer.
type AnchorReconciler struct {
	limiter *rate.Limiter
	last    int
}

// NewAnchorReconciler creates a reconciler allowing perSecond updates,
// with a small burst so isolated scroll events reconcile immediately.
func NewAnchorReconciler(perSecond float64) *AnchorReconciler {
	return &AnchorReconciler{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 2),
		last:    -1,
	}
}

// Reconcile returns the anchored turn index, recomputing at most at the
// configured rate.
func (r *AnchorReconciler) Reconcile(anchors []int, scrollY int) int {
	if !r.limiter.Allow() {
		return r.last
	}
	r.last = ReconcileAnchor(anchors, scrollY)
	return r.last
}

// Reset clears the cached anchor, forcing the next call to recompute.
func (r *AnchorReconciler) Reset() {
	r.last = -1
}

// AnchoredAssistant maps an anchored turn index to the assistant turn the
// sidebar should describe. A user turn anchors to its answer, the turn
// that follows it. Returns nil when no assistant turn qualifies.
func AnchoredAssistant(turns []*model.ChatTurn, idx int) *model.ChatTurn {
	if idx < 0 || idx >= len(turns) {
		return nil
	}
	for i := idx; i < len(turns); i++ {
		if turns[i].Role == model.RoleAssistant {
			return turns[i]
		}
	}
	// Bottom of the transcript is a user turn still waiting for its
	// answer; fall back to the most recent answer above it.
	for i := idx - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleAssistant {
			return turns[i]
		}
	}
	return nil
}
