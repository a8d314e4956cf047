// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestToastManagerNewestFirst(t *testing.T) {
	m := NewToastManager()
	m.AddInfo("first")
	m.AddError("second")

	toasts := m.Tick()
	if len(toasts) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(toasts))
	}
	if toasts[0].Message != "second" {
		t.Errorf("newest toast should be first, got %q", toasts[0].Message)
	}
	if toasts[0].Kind != ToastKindError {
		t.Errorf("expected error kind, got %v", toasts[0].Kind)
	}
}

func TestToastManagerCapsStack(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddInfo("toast")
	}
	if got := len(m.Tick()); got != 3 {
		t.Errorf("expected stack capped at 3, got %d", got)
	}
}

func TestToastManagerExpiry(t *testing.T) {
	m := NewToastManager()
	id := m.add("stale", ToastKindInfo, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if toasts := m.Tick(); len(toasts) != 0 {
		t.Errorf("expired toast %d should be dropped, got %d active", id, len(toasts))
	}
	if m.HasToasts() {
		t.Error("manager should report no toasts after expiry")
	}
}

func TestToastManagerDismiss(t *testing.T) {
	m := NewToastManager()
	id := m.AddError("dismiss me")
	m.AddInfo("keep me")

	m.Dismiss(id)
	toasts := m.Tick()
	if len(toasts) != 1 || toasts[0].Message != "keep me" {
		t.Errorf("expected only the kept toast, got %v", toasts)
	}
}

func TestToastManagerNotifierInterface(t *testing.T) {
	m := NewToastManager()
	m.Info("status line")
	m.Error("broke")

	toasts := m.Tick()
	if len(toasts) != 2 {
		t.Fatalf("expected 2 toasts via notifier methods, got %d", len(toasts))
	}
}

func TestRenderToasts(t *testing.T) {
	theme := testTheme()
	m := NewToastManager()

	if out := RenderToasts(theme, m.Tick()); out != "" {
		t.Errorf("no toasts should render empty, got %q", out)
	}

	m.AddError("upload rejected")
	out := RenderToasts(theme, m.Tick())
	if !strings.Contains(out, "upload rejected") {
		t.Errorf("rendered toast missing message: %q", out)
	}
	if !strings.Contains(out, "[X]") {
		t.Errorf("error toast should carry the error indicator: %q", out)
	}
}
