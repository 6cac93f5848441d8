package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetEnvPath() string
}

type ProviderConfig interface {
	GetModel() string
	GetProvider() string
	GetAnthropicAPIKey() string
	GetOpenAIAPIKey() string
	GetOpenRouterAPIKey() string
	GetOllamaAPIKey() string
	GetOllamaBaseURL() string
	GetCustomOpenAIBaseURL() string
	GetCustomOpenAIAPIKey() string
}

type EmbeddingConfig interface {
	GetEmbeddingProvider() string
	GetEmbeddingModel() string
	GetEmbeddingBaseURL() string
	GetEmbeddingAPIKey() string
	GetEmbeddingBatchSize() int
	GetEmbeddingMaxInputTokens() int
	GetEmbeddingConcurrency() int
	GetEmbeddingTimeout() time.Duration
}

type ChunkerConfig interface {
	GetChunkSize() int
	GetChunkOverlap() int
}

type VectorStoreConfig interface {
	GetVectorStoreBackend() string
	GetPineconeAPIKey() string
	GetPineconeIndexHost() string
	GetQueryTimeout() time.Duration
}

type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramOwnerID() int64
}
