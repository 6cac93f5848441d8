package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

func testChunks(source string, contents ...string) []core.Chunk {
	out := make([]core.Chunk, len(contents))
	for i, c := range contents {
		out[i] = core.Chunk{Content: c, Metadata: core.ChunkMetadata{Source: source, Offset: i * 800, Index: i}}
	}
	return out
}

func TestMemory_Query(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		query     core.Vector
		k         int
		want      []string
		wantErr   error
	}{
		{name: "top two", namespace: "chat", query: core.Vector{1, 0}, k: 2, want: []string{"a", "c"}},
		{name: "k larger than namespace", namespace: "chat", query: core.Vector{0, 1}, k: 10, want: []string{"b", "c", "a"}},
		{name: "zero k", namespace: "chat", query: core.Vector{1, 0}, k: 0, want: []string{}},
		{name: "unknown namespace", namespace: "other", query: core.Vector{1, 0}, k: 2, want: []string{}},
		{name: "missing namespace", namespace: "", query: core.Vector{1, 0}, k: 2, wantErr: core.ErrNamespaceRequired},
	}

	m := NewMemory()
	require.NoError(t, m.Upsert(context.Background(), "chat",
		testChunks("doc", "a", "b", "c"),
		[]core.Vector{{1, 0}, {0, 1}, {0.7, 0.7}}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Query(context.Background(), tt.namespace, tt.query, tt.k)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			contents := []string{}
			for _, sc := range got {
				contents = append(contents, sc.Chunk.Content)
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func TestMemory_IdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	chunks := testChunks("doc", "a", "b", "c")
	vectors := []core.Vector{{1, 0}, {0, 1}, {1, 1}}

	require.NoError(t, m.Upsert(ctx, "chat", chunks, vectors))
	require.NoError(t, m.Upsert(ctx, "chat", chunks, vectors))

	n, err := m.Count(ctx, "chat")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, m.DeleteNamespace(ctx, "chat"))
	n, _ = m.Count(ctx, "chat")
	assert.Zero(t, n)
}

func TestMemory_CopiesVectors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := core.Vector{1, 0}
	require.NoError(t, m.Upsert(ctx, "chat", testChunks("doc", "a"), []core.Vector{v}))
	v[0], v[1] = 0, 1

	got, err := m.Query(ctx, "chat", core.Vector{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}
