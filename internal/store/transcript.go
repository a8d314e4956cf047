// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side mutable state: the transcript of
// the active conversation and the known session list.
package store

import (
	"sync"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore is the ordered list of turns in the active
// conversation. Turns are appended during a conversation and replaced
// wholesale when switching sessions; existing turns are mutated in
// place by the streaming engine, never reordered.
//
// The store is safe for concurrent use. Listeners run synchronously on
// the mutating goroutine, outside the store lock.
type TranscriptStore struct {
	mu    sync.RWMutex
	turns []*model.ChatTurn

	listenerMu sync.Mutex
	listeners  []func()
}

// NewTranscriptStore creates an empty transcript.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{}
}

// Subscribe registers a change listener. Listeners cannot be removed;
// the store outlives every subscriber.
func (s *TranscriptStore) Subscribe(fn func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// notify runs all listeners. Must be called without holding mu.
func (s *TranscriptStore) notify() {
	s.listenerMu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// =============================================================================
// MUTATION
// =============================================================================

// Append adds a turn to the end of the transcript.
func (s *TranscriptStore) Append(turn *model.ChatTurn) {
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()

	s.notify()
}

// Replace swaps the whole transcript, used when loading a session's
// history. Never merges with the previous contents.
func (s *TranscriptStore) Replace(turns []*model.ChatTurn) {
	s.mu.Lock()
	s.turns = turns
	s.mu.Unlock()

	s.notify()
}

// Clear empties the transcript, used when starting a fresh conversation.
func (s *TranscriptStore) Clear() {
	s.Replace(nil)
}

// Touch signals that an existing turn was mutated in place (streamed
// delta applied). The streaming engine owns the turn mutation; the
// store only fans out the change.
func (s *TranscriptStore) Touch() {
	s.notify()
}

// =============================================================================
// ACCESS
// =============================================================================

// Turns returns a snapshot of the turn list. The slice is a copy; the
// pointed-to turns are shared and must only be mutated by the engine.
func (s *TranscriptStore) Turns() []*model.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]*model.ChatTurn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Len returns the number of turns.
func (s *TranscriptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Last returns the final turn, or nil for an empty transcript.
func (s *TranscriptStore) Last() *model.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.turns) == 0 {
		return nil
	}
	return s.turns[len(s.turns)-1]
}

// LastAssistant returns the most recent assistant turn, or nil.
func (s *TranscriptStore) LastAssistant() *model.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Role == model.RoleAssistant {
			return s.turns[i]
		}
	}
	return nil
}

// GroundedTurns returns the document-grounded assistant turns, the ones
// the side panel anchors to, in transcript order.
func (s *TranscriptStore) GroundedTurns() []*model.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var grounded []*model.ChatTurn
	for _, turn := range s.turns {
		if turn.IsGrounded() {
			grounded = append(grounded, turn)
		}
	}
	return grounded
}
