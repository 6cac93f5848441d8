package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/providers/rag"
	"github.com/sandevgo/docchat/pkg/log"
)

// NewEmbedder builds the embedding gateway from configuration. fallbackKey is
// used when no dedicated embedding key is configured.
func NewEmbedder(ctx context.Context, cfg core.EmbeddingConfig, fallbackKey string) (*Gateway, error) {
	baseURL := cfg.GetEmbeddingBaseURL()
	apiKey := cfg.GetEmbeddingAPIKey()
	if apiKey == "" {
		apiKey = fallbackKey
	}

	switch cfg.GetEmbeddingProvider() {
	case "openai":
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
	case "custom":
		if baseURL == "" {
			return nil, fmt.Errorf("%w: custom embedding provider needs a base URL", core.ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", core.ErrUnknownProvider, cfg.GetEmbeddingProvider())
	}

	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetEmbeddingProvider()).
		Str("model", cfg.GetEmbeddingModel()).
		Msg("starting embedding provider")

	return NewGateway(NewClient(baseURL, apiKey, cfg.GetEmbeddingModel()), Options{
		BatchSize:      cfg.GetEmbeddingBatchSize(),
		MaxInputTokens: cfg.GetEmbeddingMaxInputTokens(),
		Concurrency:    cfg.GetEmbeddingConcurrency(),
		Timeout:        cfg.GetEmbeddingTimeout(),
		Counter:        rag.NewTiktoken(rag.DefaultEncoding),
	}), nil
}
