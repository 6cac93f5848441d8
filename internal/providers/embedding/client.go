package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

// Client talks to an OpenAI-compatible /v1/embeddings endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int         `json:"index"`
		Embedding core.Vector `json:"embedding"`
	} `json:"data"`
}

// errServerBusy marks 5xx responses, retried like rate limits.
var errServerBusy = errors.New("embedding server error")

// EmbedBatch embeds texts in a single request. Every failure wraps
// core.ErrEmbeddingServiceUnavailable; HTTP 429 also wraps core.ErrRateLimited.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([]core.Vector, error) {
	data, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %w: http %d: %s",
				core.ErrEmbeddingServiceUnavailable, core.ErrRateLimited, resp.StatusCode, string(body))
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %w: http %d: %s",
				core.ErrEmbeddingServiceUnavailable, errServerBusy, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: http %d: %s", core.ErrEmbeddingServiceUnavailable, resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", core.ErrEmbeddingServiceUnavailable, err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			core.ErrEmbeddingServiceUnavailable, len(result.Data), len(texts))
	}

	vectors := make([]core.Vector, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("%w: bad embedding index %d", core.ErrEmbeddingServiceUnavailable, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
