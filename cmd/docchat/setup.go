package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/providers/embedding"
	"github.com/sandevgo/docchat/internal/providers/llm"
	"github.com/sandevgo/docchat/internal/providers/loader"
	"github.com/sandevgo/docchat/internal/providers/rag"
	"github.com/sandevgo/docchat/internal/providers/vectordb"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/command"
	"github.com/sandevgo/docchat/internal/service/ingest"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/internal/storage/sqlite"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/srv"
)

// App is everything a subcommand needs, wired once from the environment.
type App struct {
	cfg     *config.AppConfig
	ragCfg  *config.RAGConfig
	httpCfg *config.HTTPConfig

	db       *sql.DB
	store    vectordb.Store
	llm      *llm.DynamicProvider
	ingest   *ingest.Service
	pipeline *chat.Pipeline
	sessions *session.Registry
	router   *command.Router

	cleanup srv.Service
}

func NewApp(ctx context.Context) (*App, error) {
	logger := log.FromCtx(ctx)

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)
	vsCfg := config.NewVectorStoreConfig(ctx)
	httpCfg := config.NewHTTPConfig(ctx)

	if _, err := config.EnsureRuntimeDir(); err != nil {
		return nil, err
	}

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	archive := sqlite.NewTurnArchive(db)

	store, err := vectordb.NewStore(ctx, vsCfg, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	// 3. Language model and embeddings
	provider, err := llm.NewDynamicProvider(ctx, appCfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	embedder, err := embedding.NewEmbedder(ctx, embCfg, appCfg.GetOpenAIAPIKey())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	// 4. Ingestion
	chunker, err := rag.NewChunker(ragCfg.GetChunkSize(), ragCfg.GetChunkOverlap())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid chunker settings: %w", err)
	}
	chunker = chunker.WithCounter(rag.NewTiktoken(rag.DefaultEncoding))
	ingester := ingest.NewService(loader.New(httpCfg.MaxUploadBytes), chunker, embedder, store)

	// 5. Conversation
	pipeline := chat.NewPipeline(
		chat.NewCondenser(provider, ragCfg.CondenseTimeout),
		chat.NewRetriever(embedder, store, ragCfg.TopK, vsCfg.GetQueryTimeout()),
		chat.NewGenerator(provider, ragCfg.GenerationTimeout),
		archive,
	)
	sessions := session.NewRegistry(archive, appCfg.HistoryLimit)

	logger.Debug().
		Str("provider", provider.GetProvider()).
		Str("model", provider.GetModel()).
		Str("embedding_model", embCfg.GetEmbeddingModel()).
		Str("vector_store", vsCfg.GetVectorStoreBackend()).
		Msg("application wired")

	return &App{
		cfg:      appCfg,
		ragCfg:   ragCfg,
		httpCfg:  httpCfg,
		db:       db,
		store:    store,
		llm:      provider,
		ingest:   ingester,
		pipeline: pipeline,
		sessions: sessions,
		router:   command.NewRouter(sessions, store, provider),
		cleanup:  srv.NewCleanup(db.Close),
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	return a.cleanup.Shutdown(ctx)
}
