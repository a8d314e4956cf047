// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func manyTurns(n int) []*model.ChatTurn {
	turns := make([]*model.ChatTurn, 0, n*2)
	for i := 0; i < n; i++ {
		turns = append(turns, model.NewUserTurn("question about section "+strings.Repeat("x", i%5)))
		a := model.NewAssistantTurn()
		a.AppendContent("An answer.\n\nWith a second paragraph to take up vertical space.")
		a.FinishStream()
		turns = append(turns, a)
	}
	return turns
}

func TestViewportStartsPinned(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	if !v.Pinned() {
		t.Fatal("new viewport should be pinned to the bottom")
	}

	v.SetTurns(manyTurns(10))
	if !v.Pinned() {
		t.Error("viewport should stay pinned after SetTurns")
	}
	if v.ScrollY() != v.maxScrollY {
		t.Errorf("pinned viewport should sit at maxScrollY, got %d want %d", v.ScrollY(), v.maxScrollY)
	}
}

func TestViewportScrollUpDetachesPin(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	v.SetTurns(manyTurns(10))

	// Within the threshold the pin holds.
	v.ScrollUp(4)
	if !v.Pinned() {
		t.Error("scrolling within the threshold should keep the pin")
	}

	// Past the threshold it detaches.
	v.ScrollUp(20)
	if v.Pinned() {
		t.Error("scrolling past the threshold should detach the pin")
	}

	before := v.ScrollY()
	v.RefreshLast()
	if v.ScrollY() != before {
		t.Errorf("detached viewport must hold position on refresh, moved %d -> %d", before, v.ScrollY())
	}
}

func TestViewportGotoBottomRepins(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	v.SetTurns(manyTurns(10))

	v.GotoTop()
	if v.Pinned() {
		t.Error("GotoTop should detach the pin")
	}
	if v.ScrollY() != 0 {
		t.Errorf("expected scrollY 0, got %d", v.ScrollY())
	}

	v.GotoBottom()
	if !v.Pinned() {
		t.Error("GotoBottom should re-engage the pin")
	}
}

func TestViewportScrollBackIntoThresholdRepins(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	v.SetTurns(manyTurns(10))

	v.GotoTop()
	for i := 0; i < 1000 && !v.Pinned(); i++ {
		v.ScrollDown(3)
	}
	if !v.Pinned() {
		t.Error("scrolling down to the bottom should re-engage the pin")
	}
}

func TestViewportAnchorsAreOrdered(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	turns := manyTurns(5)
	v.SetTurns(turns)

	anchors := v.Anchors()
	if len(anchors) != len(turns) {
		t.Fatalf("expected %d anchors, got %d", len(turns), len(anchors))
	}
	for i := 1; i < len(anchors); i++ {
		if anchors[i] <= anchors[i-1] {
			t.Errorf("anchors must be strictly increasing, anchors[%d]=%d anchors[%d]=%d",
				i-1, anchors[i-1], i, anchors[i])
		}
	}
	if anchors[0] != 0 {
		t.Errorf("first anchor should be line 0, got %d", anchors[0])
	}
}

func TestViewportEmptyTranscript(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 10, 8)
	view := v.View()
	if !strings.Contains(view, "Ask a question") {
		t.Errorf("empty transcript should show the greeting, got %q", view)
	}
}

func TestViewportStreamingTurnShowsCursor(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 20, 8)
	a := model.NewAssistantTurn()
	a.AppendContent("partial answer")
	v.SetTurns([]*model.ChatTurn{model.NewUserTurn("q"), a})

	if !strings.Contains(v.View(), streamCursor) {
		t.Error("streaming turn should render the stream cursor")
	}

	a.FinishStream()
	v.RefreshLast()
	if strings.Contains(v.View(), streamCursor) {
		t.Error("finished turn should not render the stream cursor")
	}
}

func TestViewportFailedTurnShowsError(t *testing.T) {
	v := NewTranscriptViewport(testTheme(), 80, 20, 8)
	a := model.NewAssistantTurn()
	a.AppendContent("partial")
	a.Fail("backend unreachable")
	v.SetTurns([]*model.ChatTurn{model.NewUserTurn("q"), a})

	view := v.View()
	if !strings.Contains(view, "backend unreachable") {
		t.Error("failed turn should surface its error message")
	}
	if !strings.Contains(view, "partial") {
		t.Error("failed turn should keep its partial content visible")
	}
}

func TestWrapPlain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		maxLines int
	}{
		{"short line untouched", "hello", 20, 1},
		{"wraps at word boundary", "one two three four five six", 10, 4},
		{"preserves newlines", "a\nb\nc", 20, 3},
		{"breaks very long word", strings.Repeat("x", 25), 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := wrapPlain(tt.input, tt.width)
			for _, line := range strings.Split(out, "\n") {
				if len([]rune(line)) > tt.width {
					t.Errorf("line %q exceeds width %d", line, tt.width)
				}
			}
			if got := len(strings.Split(out, "\n")); got > tt.maxLines {
				t.Errorf("expected at most %d lines, got %d: %q", tt.maxLines, got, out)
			}
		})
	}
}
