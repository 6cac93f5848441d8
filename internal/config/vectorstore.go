package config

import (
	"context"
	"time"
)

type VectorStoreConfig struct {
	// Backend is sqlite, pinecone or memory.
	Backend           string        `env:"DOCCHAT_VECTOR_STORE" envDefault:"sqlite"`
	PineconeAPIKey    string        `env:"DOCCHAT_PINECONE_API_KEY" secret:"true"`
	PineconeIndexHost string        `env:"DOCCHAT_PINECONE_INDEX_HOST"`
	QueryTimeout      time.Duration `env:"DOCCHAT_QUERY_TIMEOUT" envDefault:"10s"`
}

func NewVectorStoreConfig(ctx context.Context) *VectorStoreConfig {
	return mustParse[VectorStoreConfig](ctx, "vector store")
}

func (c VectorStoreConfig) GetVectorStoreBackend() string  { return c.Backend }
func (c VectorStoreConfig) GetPineconeAPIKey() string      { return c.PineconeAPIKey }
func (c VectorStoreConfig) GetPineconeIndexHost() string   { return c.PineconeIndexHost }
func (c VectorStoreConfig) GetQueryTimeout() time.Duration { return c.QueryTimeout }
