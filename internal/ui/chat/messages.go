// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main Bubble Tea model for the docchat TUI.
//
// This file defines the Bubble Tea message types the chat model consumes.
// Messages from the engine's goroutines arrive via program.Send; the rest
// originate inside the update loop.
package chat

import (
	"time"

	"github.com/jeranaias/docchat-tui/internal/config"
)

// =============================================================================
// ENGINE MESSAGES
// =============================================================================

// TranscriptChangedMsg signals that the transcript store changed: a turn
// was appended, replaced, or mutated by a streaming delta.
type TranscriptChangedMsg struct{}

// SessionsChangedMsg signals that the session store was refreshed.
type SessionsChangedMsg struct{}

// StreamAcceptedMsg signals that the first token of an answer arrived.
type StreamAcceptedMsg struct {
	At time.Time
}

// StreamDoneMsg signals that the in-flight turn finished, successfully
// or not. A cancel reports a nil error.
type StreamDoneMsg struct {
	Err error
}

// LoadingMsg toggles the waiting spinner.
type LoadingMsg struct {
	On bool
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// BackendStatusMsg reports backend reachability from the periodic probe.
type BackendStatusMsg struct {
	Online bool
}

// healthTickMsg schedules the next reachability probe.
type healthTickMsg struct{}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadResultMsg reports the outcome of a drop-directory upload.
type UploadResultMsg struct {
	Name string
	Err  error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a hot-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}
