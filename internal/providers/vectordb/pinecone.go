package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

const (
	pineconeAPIVersion = "2024-07"
	// pineconeUpsertBatch stays under the data plane's 2MB request limit for 1536-dim vectors.
	pineconeUpsertBatch = 100
)

// Pinecone speaks the data plane REST API of a single serverless index.
type Pinecone struct {
	client *http.Client
	host   string
	apiKey string
}

func NewPinecone(indexHost, apiKey string) *Pinecone {
	host := strings.TrimRight(indexHost, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Pinecone{
		client: &http.Client{Timeout: 60 * time.Second},
		host:   host,
		apiKey: apiKey,
	}
}

type pineconeMetadata struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Offset int    `json:"offset"`
	Index  int    `json:"index"`
	Tokens int    `json:"tokens,omitempty"`
}

type pineconeVector struct {
	ID       string           `json:"id"`
	Values   core.Vector      `json:"values"`
	Metadata pineconeMetadata `json:"metadata"`
}

func (p *Pinecone) Upsert(ctx context.Context, namespace string, chunks []core.Chunk, vectors []core.Vector) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("upsert: %d chunks but %d vectors", len(chunks), len(vectors))
	}

	for start := 0; start < len(chunks); start += pineconeUpsertBatch {
		end := min(start+pineconeUpsertBatch, len(chunks))
		batch := make([]pineconeVector, 0, end-start)
		for i := start; i < end; i++ {
			ch := chunks[i]
			batch = append(batch, pineconeVector{
				ID:     core.ChunkID(namespace, ch),
				Values: vectors[i],
				Metadata: pineconeMetadata{
					Text:   ch.Content,
					Source: ch.Metadata.Source,
					Offset: ch.Metadata.Offset,
					Index:  ch.Metadata.Index,
					Tokens: ch.Metadata.Tokens,
				},
			})
		}

		payload := map[string]any{"vectors": batch, "namespace": namespace}
		if err := p.do(ctx, "/vectors/upsert", payload, nil); err != nil {
			return fmt.Errorf("upsert batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (p *Pinecone) Query(ctx context.Context, namespace string, vector core.Vector, k int) ([]core.ScoredChunk, error) {
	if namespace == "" {
		return nil, core.ErrNamespaceRequired
	}
	results := []core.ScoredChunk{}
	if k <= 0 {
		return results, nil
	}

	payload := map[string]any{
		"namespace":       namespace,
		"vector":          vector,
		"topK":            k,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []struct {
			ID       string           `json:"id"`
			Score    float32          `json:"score"`
			Metadata pineconeMetadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := p.do(ctx, "/query", payload, &resp); err != nil {
		return nil, err
	}

	for _, m := range resp.Matches {
		results = append(results, core.ScoredChunk{
			Chunk: core.Chunk{
				ID:      m.ID,
				Content: m.Metadata.Text,
				Metadata: core.ChunkMetadata{
					Source: m.Metadata.Source,
					Offset: m.Metadata.Offset,
					Index:  m.Metadata.Index,
					Tokens: m.Metadata.Tokens,
				},
			},
			Score: m.Score,
		})
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (p *Pinecone) DeleteNamespace(ctx context.Context, namespace string) error {
	if namespace == "" {
		return core.ErrNamespaceRequired
	}
	return p.do(ctx, "/vectors/delete", map[string]any{"deleteAll": true, "namespace": namespace}, nil)
}

func (p *Pinecone) do(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-API-Version", pineconeAPIVersion)
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// Deleting a namespace that was never written is not a failure.
		if resp.StatusCode == http.StatusNotFound && path == "/vectors/delete" {
			return nil
		}
		return fmt.Errorf("%w: http %d: %s", core.ErrVectorStoreUnavailable, resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", core.ErrVectorStoreUnavailable, err)
	}
	return nil
}
