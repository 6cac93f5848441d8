package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/providers/rag"
	"github.com/sandevgo/docchat/pkg/log"
)

// Service indexes documents into a chat's namespace: chunk, embed, upsert.
// Ingestions into the same namespace run one at a time.
type Service struct {
	loader   core.DocumentLoader
	chunker  *rag.Chunker
	embedder core.Embedder
	store    core.VectorStore
	locks    *keyedMutex
}

func NewService(
	loader core.DocumentLoader,
	chunker *rag.Chunker,
	embedder core.Embedder,
	store core.VectorStore,
) *Service {
	return &Service{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		locks:    newKeyedMutex(),
	}
}

// Ingest reports success only when every chunk was embedded and upserted.
// A failure after some upserts may leave those vectors in the store.
func (s *Service) Ingest(ctx context.Context, doc core.Document, namespace string) (core.IngestResult, error) {
	if namespace == "" {
		return core.IngestResult{}, core.ErrNamespaceRequired
	}

	chunks, err := s.chunker.Split(doc)
	if errors.Is(err, core.ErrEmptyDocument) {
		return core.IngestResult{}, err
	}
	if err != nil {
		return core.IngestResult{}, fmt.Errorf("%w: split: %w", core.ErrIngestionFailed, err)
	}

	logger := log.FromCtx(ctx).With().
		Str("chat_id", namespace).
		Str("source", doc.Metadata.Source).
		Int("chunks", len(chunks)).
		Logger()
	start := time.Now()

	texts := make([]string, len(chunks))
	tokens := 0
	for i, ch := range chunks {
		texts[i] = ch.Content
		tokens += ch.Metadata.Tokens
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		logger.Error().Err(err).Msg("embedding failed")
		return core.IngestResult{}, fmt.Errorf("%w: embed: %w", core.ErrIngestionFailed, err)
	}
	if len(vectors) != len(chunks) {
		return core.IngestResult{}, fmt.Errorf("%w: got %d vectors for %d chunks",
			core.ErrIngestionFailed, len(vectors), len(chunks))
	}

	unlock := s.locks.Lock(namespace)
	defer unlock()

	if err := s.store.Upsert(ctx, namespace, chunks, vectors); err != nil {
		logger.Error().Err(err).Msg("upsert failed")
		return core.IngestResult{}, fmt.Errorf("%w: upsert: %w", core.ErrIngestionFailed, err)
	}

	logger.Info().Int("tokens", tokens).Dur("took", time.Since(start)).Msg("document indexed")
	return core.IngestResult{ChunkCount: len(chunks)}, nil
}

// IngestFile loads a local path or URL and ingests it.
func (s *Service) IngestFile(ctx context.Context, ref, namespace string) (core.IngestResult, error) {
	if s.loader == nil {
		return core.IngestResult{}, errors.New("ingest: no document loader configured")
	}
	doc, err := s.loader.Load(ctx, ref)
	if err != nil {
		return core.IngestResult{}, err
	}
	return s.Ingest(ctx, doc, namespace)
}

// IngestReader loads an upload named name and ingests it.
func (s *Service) IngestReader(ctx context.Context, name string, r io.Reader, namespace string) (core.IngestResult, error) {
	if s.loader == nil {
		return core.IngestResult{}, errors.New("ingest: no document loader configured")
	}
	doc, err := s.loader.LoadReader(ctx, name, r)
	if err != nil {
		return core.IngestResult{}, err
	}
	return s.Ingest(ctx, doc, namespace)
}
