package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
)

func TestClient_EmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-ada-002", req.Model)
		assert.Equal(t, []string{"first", "second"}, req.Input)

		// Indices deliberately out of order.
		fmt.Fprint(w, `{"data":[{"index":1,"embedding":[0.3,0.4]},{"index":0,"embedding":[0.1,0.2]}]}`)
	}))
	defer srv.Close()

	vectors, err := NewClient(srv.URL, "key", "text-embedding-ada-002").
		EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, []core.Vector{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}

func TestClient_EmbedBatch_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantRateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"rate"}`, wantRateLimit: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"key"}`},
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway"},
		{name: "short response", status: http.StatusOK, body: `{"data":[{"index":0,"embedding":[1]}]}`},
		{name: "duplicate index", status: http.StatusOK, body: `{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[1]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", "m").EmbedBatch(context.Background(), []string{"a", "b"})
			require.ErrorIs(t, err, core.ErrEmbeddingServiceUnavailable)
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, core.ErrRateLimited))
		})
	}
}

func TestClient_EmbedBatch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", "m").EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, core.ErrEmbeddingServiceUnavailable)
}
