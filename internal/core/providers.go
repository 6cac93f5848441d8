package core

import (
	"context"
	"io"
)

// Embedder turns texts into vectors, one per text, order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]Vector, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, namespace string, chunks []Chunk, vectors []Vector) error
	Query(ctx context.Context, namespace string, vector Vector, k int) ([]ScoredChunk, error)
}

// Completer is the single-shot completion mode of a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Streamer is the token-streaming completion mode of a language model.
// It returns the concatenation of every fragment passed to sink.
type Streamer interface {
	Stream(ctx context.Context, prompt string, sink TokenSink) (string, error)
}

type LanguageModel interface {
	Completer
	Streamer
}

// TokenSink receives generated fragments synchronously, in emission order.
type TokenSink interface {
	OnToken(text string)
}

type TokenSinkFunc func(text string)

func (f TokenSinkFunc) OnToken(text string) { f(text) }

type DocumentLoader interface {
	Load(ctx context.Context, path string) (Document, error)
	LoadReader(ctx context.Context, name string, r io.Reader) (Document, error)
}

type ModelLister interface {
	Models(ctx context.Context) ([]Model, error)
}
