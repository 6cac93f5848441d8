package vectordb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
)

type memoryEntry struct {
	chunk  core.Chunk
	vector core.Vector
}

// Memory is a process-local vector store. Contents are lost on exit.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]map[string]memoryEntry)}
}

func (m *Memory) Upsert(ctx context.Context, namespace string, chunks []core.Chunk, vectors []core.Vector) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("upsert: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrVectorStoreUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string]memoryEntry, len(chunks))
		m.namespaces[namespace] = ns
	}
	for i, ch := range chunks {
		ch.ID = core.ChunkID(namespace, ch)
		ns[ch.ID] = memoryEntry{chunk: ch, vector: append(core.Vector(nil), vectors[i]...)}
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, namespace string, vector core.Vector, k int) ([]core.ScoredChunk, error) {
	if namespace == "" {
		return nil, core.ErrNamespaceRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrVectorStoreUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]core.ScoredChunk, 0, len(m.namespaces[namespace]))
	if k <= 0 {
		return results, nil
	}
	for _, e := range m.namespaces[namespace] {
		results = append(results, core.ScoredChunk{Chunk: e.chunk, Score: vector.Cosine(e.vector)})
	}

	// Map iteration is random; break score ties by id for deterministic output.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *Memory) DeleteNamespace(ctx context.Context, namespace string) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	m.mu.Lock()
	delete(m.namespaces, namespace)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Count(ctx context.Context, namespace string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace]), nil
}
