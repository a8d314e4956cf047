// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine orchestrates sending chat turns: it owns the
// send-and-stream lifecycle, applies incoming deltas to the transcript,
// and guards against overlapping sends.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CAPABILITY INTERFACES
// =============================================================================

// Streamer is the slice of the backend client the engine needs for
// sending turns.
type Streamer interface {
	StreamTurn(ctx context.Context, sessionID, message string, callback api.FrameCallback) error
}

// HistoryLoader is the slice of the backend client the engine needs for
// switching sessions.
type HistoryLoader interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	SessionDetail(ctx context.Context, sessionID string) ([]model.HistoryRecord, error)
}

// Notifier surfaces transient user-facing notices (toasts in the TUI,
// stderr lines in the CLI). Optional; nil disables notices.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// LoadingIndicator reflects the waiting-for-first-byte phase. Optional;
// nil disables it.
type LoadingIndicator interface {
	StartLoading()
	StopLoading()
}

// =============================================================================
// ENGINE STATE
// =============================================================================

// State is the engine's send lifecycle phase.
type State int

const (
	// StateIdle means no send is in flight; input is accepted.
	StateIdle State = iota

	// StateSending means a turn was dispatched but no frame has
	// arrived yet.
	StateSending

	// StateStreaming means frames are arriving for the current turn.
	StateStreaming
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives a conversation against one backend. At most one send is
// in flight at a time; Send while busy is a silent no-op so a double
// keypress cannot fork the stream.
type Engine struct {
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	client     Streamer
	history    HistoryLoader
	transcript *store.TranscriptStore
	sessions   *store.SessionStore

	notifier Notifier
	loading  LoadingIndicator

	// onAccepted fires once per send, on the first received frame. By
	// then the server has created the session, so the session list is
	// worth re-fetching.
	onAccepted func()

	// onDone fires when a send finishes, after the turn is finalized.
	onDone func(err error)
}

// Options configures optional engine collaborators.
type Options struct {
	Notifier   Notifier
	Loading    LoadingIndicator
	OnAccepted func()
	OnDone     func(err error)
}

// New creates an engine bound to a client and the two stores.
func New(client Streamer, history HistoryLoader, transcript *store.TranscriptStore, sessions *store.SessionStore, opts Options) *Engine {
	return &Engine{
		state:      StateIdle,
		client:     client,
		history:    history,
		transcript: transcript,
		sessions:   sessions,
		notifier:   opts.Notifier,
		loading:    opts.Loading,
		onAccepted: opts.OnAccepted,
		onDone:     opts.OnDone,
	}
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy returns true while a send is in flight.
func (e *Engine) Busy() bool {
	return e.State() != StateIdle
}

// =============================================================================
// SENDING
// =============================================================================

// Send dispatches one user message. Returns false without side effects
// when a send is already in flight or the message is empty after
// normalization.
//
// The stream is consumed on a background goroutine; transcript
// listeners fire as deltas land.
func (e *Engine) Send(message string) bool {
	message = util.NormalizeInput(message)
	if message == "" {
		return false
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		util.Debugf("engine: send ignored, state=%s", e.state)
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.state = StateSending
	e.cancel = cancel
	e.mu.Unlock()

	userTurn := model.NewUserTurn(message)
	assistantTurn := model.NewAssistantTurn()
	e.transcript.Append(userTurn)
	e.transcript.Append(assistantTurn)

	if e.loading != nil {
		e.loading.StartLoading()
	}

	sessionID := e.sessions.ActiveID()

	go e.run(ctx, cancel, sessionID, message, assistantTurn)
	return true
}

// run consumes one turn's stream. Always ends back in StateIdle.
func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, sessionID, message string, turn *model.ChatTurn) {
	defer cancel()

	firstFrame := true
	err := e.client.StreamTurn(ctx, sessionID, message, func(frame string) {
		if firstFrame {
			firstFrame = false
			e.enterStreaming()
		}
		if api.ApplyFrame(turn, frame) {
			e.transcript.Touch()
		}
	})

	e.finish(turn, err)
}

// enterStreaming transitions Sending -> Streaming on the first frame.
func (e *Engine) enterStreaming() {
	e.mu.Lock()
	if e.state == StateSending {
		e.state = StateStreaming
	}
	e.mu.Unlock()

	if e.loading != nil {
		e.loading.StopLoading()
	}
	if e.onAccepted != nil {
		e.onAccepted()
	}
}

// finish finalizes the assistant turn and returns the engine to idle.
func (e *Engine) finish(turn *model.ChatTurn, err error) {
	switch {
	case err == nil:
		turn.FinishStream()
	case errors.Is(err, context.Canceled):
		// User cancellation keeps whatever arrived.
		turn.FinishStream()
		util.Debugf("engine: stream canceled, kept %d bytes", len(turn.Content))
	default:
		turn.Fail(err.Error())
		util.Debugf("engine: stream failed: %v", err)
		if e.notifier != nil {
			e.notifier.Error(err.Error())
		}
	}
	e.transcript.Touch()

	if e.loading != nil {
		e.loading.StopLoading()
	}

	e.mu.Lock()
	e.state = StateIdle
	e.cancel = nil
	e.mu.Unlock()

	if e.onDone != nil {
		if errors.Is(err, context.Canceled) {
			e.onDone(nil)
		} else {
			e.onDone(err)
		}
	}
}

// Cancel aborts the in-flight send, if any. Content already received
// stays in the transcript.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// SESSION NAVIGATION
// =============================================================================

// RefreshSessions re-fetches the session list and replaces the store's
// copy wholesale.
func (e *Engine) RefreshSessions(ctx context.Context) error {
	sessions, err := e.history.ListSessions(ctx)
	if err != nil {
		return err
	}
	e.sessions.Replace(sessions)
	return nil
}

// LoadSession switches the transcript to a session's history. Refuses
// while a send is in flight.
func (e *Engine) LoadSession(ctx context.Context, sessionID string) error {
	if e.Busy() {
		return errors.New("cannot switch sessions while a response is streaming")
	}

	records, err := e.history.SessionDetail(ctx, sessionID)
	if err != nil {
		return err
	}

	e.transcript.Replace(model.BootstrapTurns(records))
	e.sessions.SetActive(sessionID)
	return nil
}

// NewConversation clears the transcript and detaches from any session.
// The server mints a session id on the next sent turn.
func (e *Engine) NewConversation() {
	if e.Busy() {
		e.Cancel()
	}
	e.transcript.Clear()
	e.sessions.SetActive("")
}
