package config

import (
	"context"
	"time"
)

type EmbeddingConfig struct {
	// Provider selects defaults for BaseURL: openai, ollama or custom.
	Provider       string        `env:"DOCCHAT_EMBEDDING_PROVIDER" envDefault:"openai"`
	Model          string        `env:"DOCCHAT_EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
	BaseURL        string        `env:"DOCCHAT_EMBEDDING_BASE_URL"`
	APIKey         string        `env:"DOCCHAT_EMBEDDING_API_KEY" secret:"true"`
	BatchSize      int           `env:"DOCCHAT_EMBEDDING_BATCH_SIZE" envDefault:"512"`
	MaxInputTokens int           `env:"DOCCHAT_EMBEDDING_MAX_INPUT_TOKENS" envDefault:"8191"`
	Concurrency    int           `env:"DOCCHAT_EMBEDDING_CONCURRENCY" envDefault:"4"`
	Timeout        time.Duration `env:"DOCCHAT_EMBEDDING_TIMEOUT" envDefault:"30s"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	return mustParse[EmbeddingConfig](ctx, "embedding")
}

func (c EmbeddingConfig) GetEmbeddingProvider() string       { return c.Provider }
func (c EmbeddingConfig) GetEmbeddingModel() string          { return c.Model }
func (c EmbeddingConfig) GetEmbeddingBaseURL() string        { return c.BaseURL }
func (c EmbeddingConfig) GetEmbeddingAPIKey() string         { return c.APIKey }
func (c EmbeddingConfig) GetEmbeddingBatchSize() int         { return c.BatchSize }
func (c EmbeddingConfig) GetEmbeddingMaxInputTokens() int    { return c.MaxInputTokens }
func (c EmbeddingConfig) GetEmbeddingConcurrency() int       { return c.Concurrency }
func (c EmbeddingConfig) GetEmbeddingTimeout() time.Duration { return c.Timeout }
