package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

func TestPinecone_Upsert(t *testing.T) {
	var batches [][]pineconeVector
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))
		assert.Equal(t, pineconeAPIVersion, r.Header.Get("X-Pinecone-API-Version"))

		var body struct {
			Vectors   []pineconeVector `json:"vectors"`
			Namespace string           `json:"namespace"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chat-1", body.Namespace)
		batches = append(batches, body.Vectors)
		fmt.Fprintf(w, `{"upsertedCount":%d}`, len(body.Vectors))
	}))
	defer srv.Close()

	chunks := make([]core.Chunk, 150)
	vectors := make([]core.Vector, 150)
	for i := range chunks {
		chunks[i] = core.Chunk{Content: fmt.Sprintf("c%d", i), Metadata: core.ChunkMetadata{Source: "doc", Offset: i * 800, Index: i}}
		vectors[i] = core.Vector{float32(i), 1}
	}

	p := NewPinecone(srv.URL, "pc-key")
	require.NoError(t, p.Upsert(context.Background(), "chat-1", chunks, vectors))

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 50)
	assert.Equal(t, core.ChunkID("chat-1", chunks[100]), batches[1][0].ID)
	assert.Equal(t, "c100", batches[1][0].Metadata.Text)
	assert.Equal(t, 80000, batches[1][0].Metadata.Offset)
}

func TestPinecone_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chat-1", body["namespace"])
		assert.Equal(t, float64(2), body["topK"])
		assert.Equal(t, true, body["includeMetadata"])

		fmt.Fprint(w, `{"matches":[
			{"id":"a","score":0.92,"metadata":{"text":"first","source":"doc.pdf","offset":0,"index":0}},
			{"id":"b","score":0.81,"metadata":{"text":"second","source":"doc.pdf","offset":800,"index":1}}
		],"namespace":"chat-1"}`)
	}))
	defer srv.Close()

	got, err := NewPinecone(srv.URL, "k").Query(context.Background(), "chat-1", core.Vector{1, 2}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Chunk.Content)
	assert.Equal(t, float32(0.92), got[0].Score)
	assert.Equal(t, 800, got[1].Chunk.Metadata.Offset)
	assert.Equal(t, "doc.pdf", got[1].Chunk.Metadata.Source)
}

func TestPinecone_EmptyNamespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"matches":[],"namespace":"fresh"}`)
	}))
	defer srv.Close()

	got, err := NewPinecone(srv.URL, "k").Query(context.Background(), "fresh", core.Vector{1}, 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPinecone_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewPinecone(srv.URL, "bad")
	_, err := p.Query(context.Background(), "chat", core.Vector{1}, 2)
	assert.ErrorIs(t, err, core.ErrVectorStoreUnavailable)

	err = p.Upsert(context.Background(), "chat", testChunks("doc", "a"), []core.Vector{{1}})
	assert.ErrorIs(t, err, core.ErrVectorStoreUnavailable)

	_, err = p.Query(context.Background(), "", core.Vector{1}, 2)
	assert.ErrorIs(t, err, core.ErrNamespaceRequired)
}

func TestNewPinecone_Host(t *testing.T) {
	assert.Equal(t, "https://idx-abc.svc.pinecone.io", NewPinecone("idx-abc.svc.pinecone.io/", "k").host)
	assert.Equal(t, "http://localhost:5080", NewPinecone("http://localhost:5080", "k").host)
}
