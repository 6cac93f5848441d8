package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

func TestGenerator_StreamsInOrder(t *testing.T) {
	llm := &mockLLM{streamFunc: func(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
		return emit(sink, "X ", "is ", "a ", "letter.")
	}}
	chunks := []core.ScoredChunk{{Chunk: core.Chunk{Content: "X is a letter.", Metadata: core.ChunkMetadata{Source: "doc.txt"}}}}
	sink := &recordingSink{}

	gen, err := NewGenerator(llm, time.Second).Generate(context.Background(), "What is X?", chunks, sink)
	require.NoError(t, err)
	assert.Equal(t, "X is a letter.", gen.Answer)
	assert.Equal(t, chunks, gen.Sources)
	assert.Equal(t, []string{"X ", "is ", "a ", "letter."}, sink.Tokens())
	require.Len(t, llm.streamPrompts, 1)
	assert.Contains(t, llm.streamPrompts[0], "source: doc.txt\nX is a letter.")
}

func TestGenerator_NoContextPrompt(t *testing.T) {
	llm := &mockLLM{}
	gen, err := NewGenerator(llm, 0).Generate(context.Background(), "What is X?", []core.ScoredChunk{}, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, "Hmm, I'm not sure.", gen.Answer)
	assert.Contains(t, llm.streamPrompts[0], "No part of the document matched")
}

func TestGenerator_InterruptedKeepsDeliveredTokens(t *testing.T) {
	llm := &mockLLM{streamFunc: func(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
		sink.OnToken("partial ")
		sink.OnToken("answer")
		return "", errors.New("stream reset by peer")
	}}
	sink := &recordingSink{}

	_, err := NewGenerator(llm, time.Second).Generate(context.Background(), "q", nil, sink)
	assert.ErrorIs(t, err, core.ErrGenerationInterrupted)
	assert.Equal(t, []string{"partial ", "answer"}, sink.Tokens())
}

func TestGenerator_IdleTimeout(t *testing.T) {
	llm := &mockLLM{streamFunc: func(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
		for i := 0; i < 3; i++ {
			time.Sleep(20 * time.Millisecond)
			sink.OnToken("tick ")
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	sink := &recordingSink{}

	start := time.Now()
	_, err := NewGenerator(llm, 80*time.Millisecond).Generate(context.Background(), "q", nil, sink)
	assert.ErrorIs(t, err, core.ErrGenerationInterrupted)
	assert.ErrorIs(t, err, errIdle)
	assert.Len(t, sink.Tokens(), 3)
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond, "tokens reset the timer")
}
