// Package app wires configuration, the database pool, the provider client
// and the services together. Clients are constructed once here and injected
// explicitly; nothing is lazily created from global state.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/docpilot/docpilot/internal/ai"
	"github.com/docpilot/docpilot/internal/answer"
	"github.com/docpilot/docpilot/internal/config"
	"github.com/docpilot/docpilot/internal/ingest"
	"github.com/docpilot/docpilot/internal/store"
)

// App is the application container.
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Store  *store.Store
	AI     *ai.Client

	logger *slog.Logger
}

// Setup connects to PostgreSQL (registering pgvector types on every
// connection) and constructs the provider client. logger may be nil.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	client := ai.New(ai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
	}, logger.With("component", "ai"))

	return &App{
		Config: cfg,
		Pool:   pool,
		Store:  store.New(pool, logger.With("component", "store")),
		AI:     client,
		logger: logger,
	}, nil
}

// NewPipeline builds the ingestion pipeline over the shared store and
// provider client.
func (a *App) NewPipeline() *ingest.Pipeline {
	return ingest.New(a.Store, a.AI, ingest.Config{
		SourceLabel:   a.Config.DocsSource,
		EmbedInterval: a.Config.EmbedInterval(),
	}, a.logger.With("component", "ingest"))
}

// NewAnswerService builds the query answering service.
func (a *App) NewAnswerService() (*answer.Service, error) {
	return answer.New(a.AI, a.Store, a.AI, answer.Config{
		MatchThreshold:     a.Config.MatchThreshold,
		MatchCount:         a.Config.MatchCount,
		MinContentLength:   a.Config.MinContentLength,
		ContextTokenBudget: a.Config.ContextTokenBudget,
	}, a.logger.With("component", "answer"))
}

// Close releases the database pool.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
		a.logger.Debug("database pool closed")
	}
}
