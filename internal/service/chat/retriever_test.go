package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/providers/vectordb"
)

func TestRetriever_EmptyNamespace(t *testing.T) {
	r := NewRetriever(&mockEmbedder{}, vectordb.NewMemory(), 0, time.Second)
	assert.Equal(t, DefaultTopK, r.K())

	found, err := r.Retrieve(context.Background(), "anything", "chat-empty")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	_, err = r.Retrieve(context.Background(), "anything", "")
	assert.ErrorIs(t, err, core.ErrNamespaceRequired)
}

func TestRetriever_TopK(t *testing.T) {
	ctx := context.Background()
	store := vectordb.NewMemory()
	chunks := []core.Chunk{
		{ID: "a", Content: "aaaa"},
		{ID: "b", Content: "bbbb"},
		{ID: "c", Content: "abab"},
	}
	vectors := []core.Vector{{1, 0, 0}, {0, 1, 0}, {1, 1, 1}}
	require.NoError(t, store.Upsert(ctx, "chat-1", chunks, vectors))
	require.NoError(t, store.Upsert(ctx, "chat-2", []core.Chunk{{ID: "x", Content: "other"}}, []core.Vector{{1, 6, 1}}))

	embedder := &mockEmbedder{}
	r := NewRetriever(embedder, store, 2, time.Second)

	found, err := r.Retrieve(ctx, "query", "chat-1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.GreaterOrEqual(t, found[0].Score, found[1].Score)
	for _, f := range found {
		assert.NotEqual(t, "x", f.ID)
	}
	assert.Equal(t, []string{"query"}, embedder.Texts())

	all, err := r.RetrieveK(ctx, "query", "chat-1", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRetriever_EmbedFailure(t *testing.T) {
	embedder := &mockEmbedder{err: errors.Join(core.ErrEmbeddingServiceUnavailable, errors.New("401"))}
	r := NewRetriever(embedder, vectordb.NewMemory(), 2, 0)

	_, err := r.Retrieve(context.Background(), "q", "chat-1")
	assert.ErrorIs(t, err, core.ErrEmbeddingServiceUnavailable)
}
