package vectordb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/storage/sqlite"
	"github.com/sandevgo/docchat/pkg/log"
)

// Store is a vector store that can also drop a whole namespace.
type Store interface {
	core.VectorStore
	DeleteNamespace(ctx context.Context, namespace string) error
}

// NewStore builds the configured backend. db is only used by the sqlite backend.
func NewStore(ctx context.Context, cfg core.VectorStoreConfig, db *sql.DB) (Store, error) {
	backend := cfg.GetVectorStoreBackend()
	log.FromCtx(ctx).Info().Str("backend", backend).Msg("starting vector store")

	switch backend {
	case "sqlite":
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite vector store needs a database", core.ErrInvalidConfig)
		}
		return sqlite.NewVectorStore(db), nil
	case "pinecone":
		if cfg.GetPineconeIndexHost() == "" || cfg.GetPineconeAPIKey() == "" {
			return nil, fmt.Errorf("%w: pinecone needs an index host and API key", core.ErrInvalidConfig)
		}
		return NewPinecone(cfg.GetPineconeIndexHost(), cfg.GetPineconeAPIKey()), nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: vector store %q", core.ErrUnknownProvider, backend)
	}
}
