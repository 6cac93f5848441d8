package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// VectorStore keeps chunk vectors in SQLite and ranks them by exact cosine
// similarity, scanning only the queried namespace.
type VectorStore struct {
	db *sql.DB
}

func NewVectorStore(db *sql.DB) *VectorStore {
	return &VectorStore{db: db}
}

func (r *VectorStore) Upsert(ctx context.Context, namespace string, chunks []core.Chunk, vectors []core.Vector) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("upsert: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", core.ErrVectorStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (namespace, id, content, source, char_offset, chunk_index, token_count, dims, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (namespace, id) DO UPDATE SET
			content = excluded.content,
			source = excluded.source,
			char_offset = excluded.char_offset,
			chunk_index = excluded.chunk_index,
			token_count = excluded.token_count,
			dims = excluded.dims,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", core.ErrVectorStoreUnavailable, err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		blob, err := serializeVector(vectors[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			namespace, core.ChunkID(namespace, ch), ch.Content, ch.Metadata.Source,
			ch.Metadata.Offset, ch.Metadata.Index, ch.Metadata.Tokens, len(vectors[i]), blob,
		); err != nil {
			return fmt.Errorf("%w: insert chunk %d: %w", core.ErrVectorStoreUnavailable, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrVectorStoreUnavailable, err)
	}
	return nil
}

func (r *VectorStore) Query(ctx context.Context, namespace string, vector core.Vector, k int) ([]core.ScoredChunk, error) {
	if namespace == "" {
		return nil, core.ErrNamespaceRequired
	}
	results := []core.ScoredChunk{}
	if k <= 0 {
		return results, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, source, char_offset, chunk_index, token_count, dims, embedding FROM chunks WHERE namespace = ?`,
		namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", core.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sc   core.ScoredChunk
			dims int
			blob []byte
		)
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.Content, &sc.Chunk.Metadata.Source,
			&sc.Chunk.Metadata.Offset, &sc.Chunk.Metadata.Index, &sc.Chunk.Metadata.Tokens, &dims, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", core.ErrVectorStoreUnavailable, err)
		}
		if dims != len(vector) {
			log.FromCtx(ctx).Warn().
				Str("namespace", namespace).
				Int("dims", dims).
				Int("query_dims", len(vector)).
				Msg("skipping chunk with mismatched dimensions")
			continue
		}
		stored, err := deserializeVector(blob, dims)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrVectorStoreUnavailable, err)
		}
		sc.Score = vector.Cosine(stored)
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", core.ErrVectorStoreUnavailable, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (r *VectorStore) DeleteNamespace(ctx context.Context, namespace string) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("%w: delete namespace: %w", core.ErrVectorStoreUnavailable, err)
	}
	return nil
}

// Count returns the number of stored chunks in namespace.
func (r *VectorStore) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE namespace = ?`, namespace).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", core.ErrVectorStoreUnavailable, err)
	}
	return n, nil
}
