package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
)

type mockLLM struct {
	mu sync.Mutex

	completeFunc func(ctx context.Context, prompt string) (string, error)
	streamFunc   func(ctx context.Context, prompt string, sink core.TokenSink) (string, error)

	completePrompts []string
	streamPrompts   []string
}

func (m *mockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.completePrompts = append(m.completePrompts, prompt)
	m.mu.Unlock()
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "", nil
}

func (m *mockLLM) Stream(ctx context.Context, prompt string, sink core.TokenSink) (string, error) {
	m.mu.Lock()
	m.streamPrompts = append(m.streamPrompts, prompt)
	m.mu.Unlock()
	if m.streamFunc != nil {
		return m.streamFunc(ctx, prompt, sink)
	}
	return emit(sink, "Hmm, ", "I'm not sure.")
}

func (m *mockLLM) completeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completePrompts)
}

func emit(sink core.TokenSink, tokens ...string) (string, error) {
	for _, t := range tokens {
		sink.OnToken(t)
	}
	return strings.Join(tokens, ""), nil
}

type recordingSink struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recordingSink) OnToken(text string) {
	r.mu.Lock()
	r.tokens = append(r.tokens, text)
	r.mu.Unlock()
}

func (r *recordingSink) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

type mockEmbedder struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]core.Vector, error) {
	m.mu.Lock()
	m.texts = append(m.texts, texts...)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]core.Vector, len(texts))
	for i, text := range texts {
		out[i] = core.Vector{1, float32(len(text)%13) + 1, float32(strings.Count(text, "a")) + 1}
	}
	return out, nil
}

func (m *mockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

type mockArchive struct {
	mu    sync.Mutex
	err   error
	turns []core.ArchivedTurn
}

func (m *mockArchive) SaveTurn(ctx context.Context, chatID string, turn core.ArchivedTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.turns = append(m.turns, turn)
	return nil
}

func (m *mockArchive) LoadHistory(ctx context.Context, chatID string, limit int) (core.ChatHistory, error) {
	return nil, nil
}

func (m *mockArchive) DeleteChat(ctx context.Context, chatID string) error {
	return nil
}
