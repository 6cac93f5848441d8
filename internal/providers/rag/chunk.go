package rag

import (
	"fmt"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits a document into fixed-size overlapping windows of runes.
// Windows start every size-overlap runes; the last window ends at the end of the document.
type Chunker struct {
	size    int
	overlap int
	counter TokenCounter
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", core.ErrInvalidConfig, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func NewDefaultChunker() *Chunker {
	return &Chunker{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
}

// WithCounter returns a copy of the chunker that records each chunk's token count.
func (c *Chunker) WithCounter(tc TokenCounter) *Chunker {
	cp := *c
	cp.counter = tc
	return &cp
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the ordered chunks of doc. Chunk content is never trimmed, so
// chunk[0] followed by chunk[i][overlap:] for every i > 0 reproduces doc.Content.
func (c *Chunker) Split(doc core.Document) ([]core.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, core.ErrEmptyDocument
	}

	runes := []rune(doc.Content)
	n := len(runes)
	step := c.size - c.overlap

	chunks := make([]core.Chunk, 0, n/step+1)
	for start := 0; ; start += step {
		end := min(start+c.size, n)
		ch := core.Chunk{
			Content: string(runes[start:end]),
			Metadata: core.ChunkMetadata{
				Source: doc.Metadata.Source,
				Offset: start,
				Index:  len(chunks),
			},
		}
		if c.counter != nil {
			tokens, err := c.counter.CountTokens(ch.Content)
			if err != nil {
				return nil, fmt.Errorf("count tokens of chunk %d: %w", ch.Metadata.Index, err)
			}
			ch.Metadata.Tokens = tokens
		}
		chunks = append(chunks, ch)
		if end == n {
			break
		}
	}
	return chunks, nil
}

// Join reverses Split for chunks produced with the given overlap.
func Join(chunks []core.Chunk, overlap int) string {
	var b strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			b.WriteString(ch.Content)
			continue
		}
		r := []rune(ch.Content)
		b.WriteString(string(r[min(overlap, len(r)):]))
	}
	return b.String()
}
