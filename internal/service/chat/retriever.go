package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

const DefaultTopK = 2

type Retriever struct {
	embedder core.Embedder
	store    core.VectorStore
	k        int
	timeout  time.Duration
}

// NewRetriever uses DefaultTopK when k is not positive. timeout bounds the vector query.
func NewRetriever(embedder core.Embedder, store core.VectorStore, k int, timeout time.Duration) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, k: k, timeout: timeout}
}

func (r *Retriever) K() int {
	return r.k
}

func (r *Retriever) Retrieve(ctx context.Context, question, namespace string) ([]core.ScoredChunk, error) {
	return r.RetrieveK(ctx, question, namespace, r.k)
}

// RetrieveK returns up to k chunks of namespace ordered by similarity.
// An empty namespace yields an empty slice.
func (r *Retriever) RetrieveK(ctx context.Context, question, namespace string, k int) ([]core.ScoredChunk, error) {
	if namespace == "" {
		return nil, core.ErrNamespaceRequired
	}
	if k <= 0 {
		k = r.k
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", core.ErrEmbeddingServiceUnavailable, len(vectors))
	}

	qctx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	found, err := r.store.Query(qctx, namespace, vectors[0], k)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []core.ScoredChunk{}
	}
	return found, nil
}
