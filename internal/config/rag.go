package config

import (
	"context"
	"time"
)

// RAGConfig holds chunking, retrieval and per-call timeout settings.
type RAGConfig struct {
	ChunkSize    int `env:"DOCCHAT_CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"DOCCHAT_CHUNK_OVERLAP" envDefault:"200"`
	TopK         int `env:"DOCCHAT_TOP_K" envDefault:"2"`

	CondenseTimeout   time.Duration `env:"DOCCHAT_CONDENSE_TIMEOUT" envDefault:"30s"`
	GenerationTimeout time.Duration `env:"DOCCHAT_GENERATION_IDLE_TIMEOUT" envDefault:"60s"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	return mustParse[RAGConfig](ctx, "RAG")
}

func (c RAGConfig) GetChunkSize() int    { return c.ChunkSize }
func (c RAGConfig) GetChunkOverlap() int { return c.ChunkOverlap }
