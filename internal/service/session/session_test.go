package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

func TestNew_SeedsHistory(t *testing.T) {
	history := core.ChatHistory{{Question: "What is the doc about?", Answer: "It discusses Y."}}
	s := New("chat-1", history)

	snap := s.Snapshot()
	assert.Equal(t, "chat-1", s.ID())
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, history, snap.History)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, core.RoleAssistant, snap.Messages[1].Role)

	history[0].Answer = "mutated"
	assert.Equal(t, "It discusses Y.", s.Snapshot().History[0].Answer)
}

func TestSession_ConcurrentSubmit(t *testing.T) {
	s := New("chat-1", nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Dispatch(Submit{Question: "q"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, core.ErrTurnInProgress) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 19, rejected)
	assert.Len(t, s.Snapshot().Messages, 1)
}

func TestSession_SnapshotIsolated(t *testing.T) {
	s := New("chat-1", nil)
	require.NoError(t, s.Dispatch(Submit{Question: "q"}))

	snap := s.Snapshot()
	snap.Messages[0].Text = "changed"
	assert.Equal(t, "q", s.Snapshot().Messages[0].Text)
}

func TestSession_Abort(t *testing.T) {
	s := New("chat-1", nil)
	assert.False(t, s.Abort())

	ctx, cancel := context.WithCancelCause(context.Background())
	unbind := s.BindTurn(cancel)
	assert.True(t, s.Abort())
	assert.ErrorIs(t, context.Cause(ctx), ErrAborted)

	unbind()
	assert.False(t, s.Abort())
}

func TestSession_StreamedTokens(t *testing.T) {
	s := New("chat-1", nil)
	require.ErrorIs(t, s.Dispatch(Token{Text: "early"}), core.ErrInvalidTransition)

	require.NoError(t, s.Dispatch(Submit{Question: "What is X?"}))
	require.NoError(t, s.Dispatch(Condensed{Standalone: "What is X?"}))
	require.NoError(t, s.Dispatch(Retrieved{}))

	var want strings.Builder
	for i := 0; i < 500; i++ {
		frag := fmt.Sprintf("t%d ", i)
		want.WriteString(frag)
		require.NoError(t, s.Dispatch(Token{Text: frag}))
		if i == 249 {
			st := s.Snapshot()
			assert.True(t, st.Typing())
			assert.Equal(t, want.String(), st.Pending.Text)
		}
	}

	require.NoError(t, s.Dispatch(StreamComplete{}))
	st := s.Snapshot()
	assert.Nil(t, st.Pending)
	require.Len(t, st.History, 1)
	assert.Equal(t, want.String(), st.History[0].Answer)
	last, ok := st.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, want.String(), last.Text)
}

func TestSession_FailDropsBufferedTokens(t *testing.T) {
	s := New("chat-1", nil)
	require.NoError(t, s.Dispatch(Submit{Question: "q"}))
	require.NoError(t, s.Dispatch(Condensed{Standalone: "q"}))
	require.NoError(t, s.Dispatch(Retrieved{}))
	require.NoError(t, s.Dispatch(Token{Text: "partial"}))

	require.NoError(t, s.Dispatch(Fail{Err: errors.New("stream cut")}))
	require.NoError(t, s.Dispatch(Acknowledge{}))
	require.NoError(t, s.Dispatch(Submit{Question: "again"}))
	require.NoError(t, s.Dispatch(Condensed{Standalone: "again"}))
	require.NoError(t, s.Dispatch(Retrieved{}))
	require.NoError(t, s.Dispatch(Token{Text: "fresh"}))

	st := s.Snapshot()
	assert.Equal(t, "fresh", st.Pending.Text)
	assert.Empty(t, st.History)
}
