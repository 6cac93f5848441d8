package core

import "errors"

var (
	ErrInvalidConfig               = errors.New("invalid config")
	ErrEmptyDocument               = errors.New("empty document")
	ErrEmbeddingInputTooLarge      = errors.New("embedding input too large")
	ErrEmbeddingServiceUnavailable = errors.New("embedding service unavailable")
	ErrVectorStoreUnavailable      = errors.New("vector store unavailable")
	ErrNamespaceRequired           = errors.New("namespace required")
	ErrIngestionFailed             = errors.New("ingestion failed")
	ErrCondensationFailed          = errors.New("condensation failed")
	ErrGenerationInterrupted       = errors.New("generation interrupted")
	ErrTurnInProgress              = errors.New("turn in progress")
	ErrLoadError                   = errors.New("document load error")

	// ErrRateLimited marks a retryable rate-limit response from an external service.
	ErrRateLimited = errors.New("rate limited")

	ErrEmptyQuestion     = errors.New("empty question")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrUnknownProvider   = errors.New("unknown provider")
)
