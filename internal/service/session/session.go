package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
)

// ErrAborted is the cancellation cause of a turn stopped by Abort.
var ErrAborted = errors.New("turn aborted")

// Session owns the state of one chat. Dispatch and Snapshot are safe for
// concurrent use; turn exclusivity comes from the reducer rejecting Submit.
type Session struct {
	id string

	mu    sync.Mutex
	state State
	// typed holds tokens not yet folded into state.Pending.
	typed  strings.Builder
	cancel context.CancelCauseFunc
}

// New creates an idle session seeded with earlier exchanges.
func New(id string, history core.ChatHistory) *Session {
	s := &Session{id: id}
	s.state.History = slices.Clone(history)
	for _, ex := range history {
		s.state.Messages = append(s.state.Messages,
			core.Message{Role: core.RoleUser, Text: ex.Question},
			core.Message{Role: core.RoleAssistant, Text: ex.Answer},
		)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Dispatch applies ev. Tokens are buffered and folded into the pending
// message by the next other event, so streaming costs O(1) per token.
func (s *Session) Dispatch(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := ev.(Token); ok {
		if s.state.Phase != PhaseStreaming {
			return invalid(s.state, ev)
		}
		s.typed.WriteString(tok.Text)
		return nil
	}

	s.foldTyped()
	next, err := Reduce(s.state, ev)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	if st.Pending != nil {
		st.Pending.Text += s.typed.String()
	}
	return st
}

func (s *Session) foldTyped() {
	if s.typed.Len() == 0 {
		return
	}
	if s.state.Pending != nil {
		p := *s.state.Pending
		p.Text += s.typed.String()
		s.state.Pending = &p
	}
	s.typed.Reset()
}

// BindTurn registers the cancel func of the running turn. The returned func unbinds it.
func (s *Session) BindTurn(cancel context.CancelCauseFunc) func() {
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}
}

// Abort cancels the running turn, if any, and reports whether there was one.
func (s *Session) Abort() bool {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel(ErrAborted)
	return true
}

func (s State) clone() State {
	s.Messages = slices.Clone(s.Messages)
	s.History = slices.Clone(s.History)
	s.Sources = slices.Clone(s.Sources)
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}
