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
// SESSION STORE
// =============================================================================

// SessionStore is the client's view of the server-side session list,
// plus the identity of the active session. The list is only ever
// replaced wholesale from a fresh server fetch; the client never edits
// entries locally. Server order is preserved.
//
// Safe for concurrent use. Listeners run synchronously on the mutating
// goroutine, outside the store lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions []model.Session
	activeID string

	listenerMu sync.Mutex
	listeners  []func()
}

// NewSessionStore creates an empty session store. The empty activeID
// means "new conversation": the server will mint a session on the first
// sent turn.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Subscribe registers a change listener.
func (s *SessionStore) Subscribe(fn func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *SessionStore) notify() {
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

// Replace swaps the session list for a freshly fetched one.
func (s *SessionStore) Replace(sessions []model.Session) {
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()

	s.notify()
}

// SetActive records which session the transcript belongs to. An empty
// id means a new, not-yet-persisted conversation.
func (s *SessionStore) SetActive(sessionID string) {
	s.mu.Lock()
	changed := s.activeID != sessionID
	s.activeID = sessionID
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// =============================================================================
// ACCESS
// =============================================================================

// Sessions returns a snapshot of the session list in server order.
func (s *SessionStore) Sessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]model.Session, len(s.sessions))
	copy(sessions, s.sessions)
	return sessions
}

// ActiveID returns the active session id, or "" for a new conversation.
func (s *SessionStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns the active session's metadata, if the list has it.
func (s *SessionStore) Active() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.SessionID == s.activeID {
			return sess, true
		}
	}
	return model.Session{}, false
}

// Len returns the number of known sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
