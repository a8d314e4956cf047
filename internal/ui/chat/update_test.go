// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/engine"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/store"
)

// stubBackend satisfies the engine interfaces without touching a server.
type stubBackend struct {
	sessions []model.Session
	records  []model.HistoryRecord
}

func (s *stubBackend) StreamTurn(ctx context.Context, sessionID, message string, cb api.FrameCallback) error {
	return nil
}

func (s *stubBackend) ListSessions(ctx context.Context) ([]model.Session, error) {
	return s.sessions, nil
}

func (s *stubBackend) SessionDetail(ctx context.Context, sessionID string) ([]model.HistoryRecord, error) {
	return s.records, nil
}

func newTestModel(t *testing.T) (*Model, *store.TranscriptStore, *store.SessionStore) {
	t.Helper()

	transcript := store.NewTranscriptStore()
	sessions := store.NewSessionStore()
	backend := &stubBackend{
		sessions: []model.Session{
			{SessionID: "s1", SessionName: "Quarterly report"},
			{SessionID: "s2", SessionName: "Security review"},
		},
	}
	eng := engine.New(backend, backend, transcript, sessions, engine.Options{})

	m := NewModel(Options{
		Engine:     eng,
		Transcript: transcript,
		Sessions:   sessions,
	})
	m.Init() // focuses the input
	m.resize(100, 30)
	return m, transcript, sessions
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func answeredTurns(followUps ...string) []*model.ChatTurn {
	user := model.NewUserTurn("what is the leave policy?")
	answer := model.NewAssistantTurn()
	answer.AppendContent("Twenty days.")
	answer.SetFollowUpQuestions(followUps)
	answer.FinishStream()
	return []*model.ChatTurn{user, answer}
}

func TestFollowUpDigitPrefillsInput(t *testing.T) {
	m, transcript, _ := newTestModel(t)
	for _, turn := range answeredTurns("How is it accrued?", "Does it roll over?") {
		transcript.Append(turn)
	}
	m.Update(TranscriptChangedMsg{})

	m.Update(keyRunes("2"))
	if got := m.input.Value(); got != "Does it roll over?" {
		t.Errorf("digit should prefill the matching follow-up, got %q", got)
	}
}

func TestFollowUpDigitOutOfRangeTypesNormally(t *testing.T) {
	m, transcript, _ := newTestModel(t)
	for _, turn := range answeredTurns("Only one") {
		transcript.Append(turn)
	}
	m.Update(TranscriptChangedMsg{})

	m.Update(keyRunes("7"))
	if got := m.input.Value(); got != "7" {
		t.Errorf("out-of-range digit should be typed into the input, got %q", got)
	}
}

func TestDigitWithTextTypesNormally(t *testing.T) {
	m, transcript, _ := newTestModel(t)
	for _, turn := range answeredTurns("A follow-up") {
		transcript.Append(turn)
	}

	m.Update(keyRunes("q"))
	m.Update(keyRunes("1"))
	if got := m.input.Value(); got != "q1" {
		t.Errorf("digit after text should append, got %q", got)
	}
}

func TestTranscriptChangeAnchorsSidebarToLastAnswer(t *testing.T) {
	m, transcript, _ := newTestModel(t)

	answer := model.NewAssistantTurn()
	answer.AppendContent("See ##0$$.")
	answer.SetCitations([]model.Reference{
		{ID: "r0", DocumentID: "d1", DocumentName: "policy.pdf"},
	})
	answer.FinishStream()
	transcript.Append(model.NewUserTurn("q"))
	transcript.Append(answer)

	m.Update(TranscriptChangedMsg{})
	if got := m.sidebar.Turn(); got != answer {
		t.Errorf("sidebar should anchor to the answer in view, got %v", got)
	}
}

func TestSessionPickerOpensAndLoads(t *testing.T) {
	m, _, sessions := newTestModel(t)
	sessions.Replace([]model.Session{
		{SessionID: "s1", SessionName: "Quarterly report"},
		{SessionID: "s2", SessionName: "Security review"},
	})

	m.pickerOpen = true
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.pickerCursor != 1 {
		t.Fatalf("down should move the cursor, got %d", m.pickerCursor)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.pickerOpen {
		t.Error("enter should close the picker")
	}
	if cmd == nil {
		t.Fatal("enter should return a load command")
	}
	cmd() // runs LoadSession against the stub backend

	if got := sessions.ActiveID(); got != "s2" {
		t.Errorf("expected active session s2, got %q", got)
	}
}

func TestStreamAcceptRefreshesSessions(t *testing.T) {
	m, _, sessions := newTestModel(t)
	if sessions.Len() != 0 {
		t.Fatalf("session store should start empty, got %d", sessions.Len())
	}

	_, cmd := m.Update(StreamAcceptedMsg{})
	if cmd == nil {
		t.Fatal("accepting a stream should schedule a session refresh")
	}
	msg := cmd() // runs RefreshSessions against the stub backend

	if _, ok := msg.(SessionsChangedMsg); !ok {
		t.Fatalf("refresh should report SessionsChangedMsg, got %T", msg)
	}
	if sessions.Len() != 2 {
		t.Errorf("session list should be refetched on accept, got %d entries", sessions.Len())
	}
}

func TestSessionPickerEscCloses(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.pickerOpen = true

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.pickerOpen {
		t.Error("esc should close the picker")
	}
}

func TestQuitKeyReturnsQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatal("ctrl+q should return a quit command")
	}
	if !m.quitting {
		t.Error("quitting flag should be set")
	}
	if m.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestBackendStatusTransitionsToast(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(BackendStatusMsg{Online: false})
	if m.online {
		t.Error("model should record offline state")
	}
	if !m.toasts.HasToasts() {
		t.Error("going offline should raise a toast")
	}

	m.toasts.Clear()
	m.Update(BackendStatusMsg{Online: true})
	if !m.online {
		t.Error("model should record online state")
	}
	if !m.toasts.HasToasts() {
		t.Error("recovery should raise a toast")
	}
}

func TestSidebarToggleResizesViewport(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.sidebar.Visible() {
		t.Error("ctrl+s should open the sidebar")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.sidebar.Visible() {
		t.Error("second ctrl+s should close the sidebar")
	}
}
