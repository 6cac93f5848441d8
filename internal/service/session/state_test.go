package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

var retrieved = []core.ScoredChunk{
	{Chunk: core.Chunk{Content: "X is a letter.", Metadata: core.ChunkMetadata{Source: "doc.txt"}}, Score: 0.9},
}

func apply(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, ev := range events {
		var err error
		s, err = Reduce(s, ev)
		require.NoError(t, err, "event %T", ev)
	}
	return s
}

func TestReduce_HappyPath(t *testing.T) {
	s := State{}

	s = apply(t, s, Submit{Question: "What is X?"})
	assert.Equal(t, PhaseAwaitingCondensation, s.Phase)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, core.Message{Role: core.RoleUser, Text: "What is X?"}, s.Messages[0])

	s = apply(t, s, Condensed{Standalone: "What is X in the document?"})
	assert.Equal(t, PhaseAwaitingRetrieval, s.Phase)
	assert.Equal(t, "What is X in the document?", s.Standalone)

	s = apply(t, s, Retrieved{Chunks: retrieved})
	assert.Equal(t, PhaseStreaming, s.Phase)
	require.NotNil(t, s.Pending)
	assert.Empty(t, s.Pending.Text)
	assert.True(t, s.Typing())

	s = apply(t, s, Token{Text: "X is "}, Token{Text: "a letter."})
	assert.Equal(t, "X is a letter.", s.Pending.Text)
	assert.Empty(t, s.History)

	s = apply(t, s, StreamComplete{})
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Pending)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, core.RoleAssistant, s.Messages[1].Role)
	assert.Equal(t, "X is a letter.", s.Messages[1].Text)
	assert.Equal(t, retrieved, s.Messages[1].Sources)
	assert.Equal(t, core.ChatHistory{{Question: "What is X?", Answer: "X is a letter."}}, s.History)

	answer, ok := s.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "X is a letter.", answer.Text)
}

func TestReduce_FailureLeavesNoHistory(t *testing.T) {
	tests := []struct {
		name   string
		before []Event
	}{
		{name: "during condensation", before: []Event{Submit{Question: "q"}}},
		{name: "during retrieval", before: []Event{Submit{Question: "q"}, Condensed{Standalone: "q"}}},
		{name: "mid stream", before: []Event{
			Submit{Question: "q"}, Condensed{Standalone: "q"}, Retrieved{}, Token{Text: "par"}, Token{Text: "tial"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := State{History: core.ChatHistory{{Question: "old", Answer: "answer"}}}
			s := apply(t, start, tt.before...)

			s = apply(t, s, Fail{Err: core.ErrGenerationInterrupted})
			assert.Equal(t, PhaseFailed, s.Phase)
			assert.Nil(t, s.Pending)
			assert.Equal(t, core.ErrGenerationInterrupted.Error(), s.LastError)
			assert.Equal(t, start.History, s.History)

			s = apply(t, s, Acknowledge{})
			assert.Equal(t, PhaseIdle, s.Phase)
			assert.Equal(t, start.History, s.History)
			require.Len(t, s.Messages, 1, "user message is kept")
			assert.Equal(t, core.RoleUser, s.Messages[0].Role)

			s = apply(t, s, Submit{Question: "retry"})
			assert.Equal(t, PhaseAwaitingCondensation, s.Phase)
			assert.Empty(t, s.LastError)
		})
	}
}

func TestReduce_SubmitWhileBusy(t *testing.T) {
	busy := []Event{Submit{Question: "first"}, Condensed{Standalone: "first"}, Retrieved{}, Token{Text: "a"}}
	for n := 1; n <= len(busy); n++ {
		s := apply(t, State{}, busy[:n]...)

		next, err := Reduce(s, Submit{Question: "second"})
		assert.ErrorIs(t, err, core.ErrTurnInProgress)
		assert.Equal(t, s, next, "state unchanged")
	}

	failed := apply(t, State{}, Submit{Question: "first"}, Fail{Err: errors.New("x")})
	_, err := Reduce(failed, Submit{Question: "second"})
	assert.ErrorIs(t, err, core.ErrTurnInProgress)
}

func TestReduce_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		before []Event
		ev     Event
	}{
		{name: "condensed while idle", ev: Condensed{}},
		{name: "retrieved while idle", ev: Retrieved{}},
		{name: "token while idle", ev: Token{Text: "x"}},
		{name: "complete while idle", ev: StreamComplete{}},
		{name: "fail while idle", ev: Fail{}},
		{name: "acknowledge while idle", ev: Acknowledge{}},
		{name: "token before retrieval", before: []Event{Submit{Question: "q"}}, ev: Token{Text: "x"}},
		{name: "retrieved before condensed", before: []Event{Submit{Question: "q"}}, ev: Retrieved{}},
		{name: "fail twice", before: []Event{Submit{Question: "q"}, Fail{}}, ev: Fail{}},
		{name: "token after failure", before: []Event{Submit{Question: "q"}, Condensed{}, Retrieved{}, Fail{}}, ev: Token{Text: "late"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(t, State{}, tt.before...)
			next, err := Reduce(s, tt.ev)
			assert.ErrorIs(t, err, core.ErrInvalidTransition)
			assert.Equal(t, s, next)
		})
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	base := apply(t, State{}, Submit{Question: "q1"}, Condensed{Standalone: "q1"}, Retrieved{}, Token{Text: "a1"}, StreamComplete{})
	base.Messages = base.Messages[:2:4]

	streaming := apply(t, base, Submit{Question: "q2"}, Condensed{Standalone: "q2"}, Retrieved{}, Token{Text: "a"})
	pending := streaming.Pending

	_ = apply(t, streaming, Token{Text: "b"})
	assert.Equal(t, "a", pending.Text, "pending message of earlier state untouched")

	done := apply(t, streaming, StreamComplete{})
	assert.Len(t, base.Messages, 2)
	assert.Len(t, base.History, 1)
	assert.Len(t, done.History, 2)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "streaming", PhaseStreaming.String())
	text, err := PhaseAwaitingRetrieval.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "awaiting_retrieval", string(text))
}
