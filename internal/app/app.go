package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/handlers"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
	"github.com/voxlore/voxlore/internal/services/answer"
	"github.com/voxlore/voxlore/internal/services/assembler"
	"github.com/voxlore/voxlore/internal/services/chunker"
	"github.com/voxlore/voxlore/internal/services/embeddings"
	"github.com/voxlore/voxlore/internal/services/indexer"
	"github.com/voxlore/voxlore/internal/services/ingest"
	"github.com/voxlore/voxlore/internal/services/llm"
	"github.com/voxlore/voxlore/internal/services/retriever"
	"github.com/voxlore/voxlore/internal/services/tokens"
	"github.com/voxlore/voxlore/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Index snapshot holder, shared by the retriever, assembler and
	// handlers. Builds publish into it atomically.
	Snapshots *SnapshotHolder

	// Core services
	TokenCounter     interfaces.TokenCounter
	ChunkerService   interfaces.ChunkerService
	EmbeddingService interfaces.EmbeddingService
	IndexerService   interfaces.IndexerService
	RetrieverService interfaces.RetrieverService
	AssemblerService interfaces.AssemblerService
	AnswerService    interfaces.AnswerService
	IngestService    interfaces.IngestService

	// LLM provider registry
	Registry *llm.Registry

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	AnswerHandler *handlers.AnswerHandler
	ModelsHandler *handlers.ModelsHandler
	IndexHandler  *handlers.IndexHandler

	scheduler *cron.Cron
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Snapshots: NewSnapshotHolder(),
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.initScheduler(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	logger.Info().
		Str("profile", cfg.Corpus.Profile).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer and loads any previously
// published snapshot for the configured embedding model.
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	if snapshot, err := storageManager.IndexStorage().LoadSnapshot(a.Config.Indexing.EmbedModel); err == nil {
		a.Snapshots.Publish(snapshot)
		a.Logger.Info().
			Str("model", snapshot.ModelName).
			Int("entries", len(snapshot.Entries)).
			Msg("Loaded index snapshot from disk")
	} else {
		a.Logger.Debug().Err(err).Msg("No index snapshot on disk")
	}

	return nil
}

// initServices wires the service graph
func (a *App) initServices() error {
	counter, err := tokens.NewService(a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create token counter: %w", err)
	}
	a.TokenCounter = counter

	a.ChunkerService = chunker.NewService(&a.Config.Chunking, counter, a.Logger)

	registry, err := llm.NewRegistry(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create llm registry: %w", err)
	}
	a.Registry = registry

	// Embedding-backed services need the OpenAI key. Without it the
	// server still answers full-mode questions; retrieval degrades.
	if embedder, err := embeddings.NewService(a.Config, a.Logger); err == nil {
		a.EmbeddingService = embedder
		a.IndexerService = indexer.NewService(
			a.StorageManager.RecordStorage(),
			a.StorageManager.IndexStorage(),
			a.ChunkerService,
			embedder,
			&a.Config.Indexing,
			a.Logger,
		)
		a.RetrieverService = retriever.NewService(a.Snapshots, embedder, &a.Config.Retrieval, a.Logger)
	} else {
		a.Logger.Warn().Err(err).Msg("Embeddings unavailable, RAG mode disabled")
		a.IndexerService = &unavailableIndexer{}
		a.RetrieverService = &unavailableRetriever{}
	}

	a.AssemblerService = assembler.NewService(
		a.StorageManager.RecordStorage(),
		a.Snapshots,
		counter,
		a.Logger,
	)

	a.AnswerService = answer.NewService(
		a.Registry,
		a.RetrieverService,
		a.AssemblerService,
		counter,
		a.Config,
		a.Logger,
	)

	a.IngestService = ingest.NewService(a.StorageManager.RecordStorage(), counter, a.Logger)

	return nil
}

// initHandlers wires the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.StorageManager.RecordStorage(), a.Snapshots)
	a.AnswerHandler = handlers.NewAnswerHandler(a.AnswerService)
	a.ModelsHandler = handlers.NewModelsHandler(a.Registry, a.Config)
	a.IndexHandler = handlers.NewIndexHandler(a.IndexerService, a.Snapshots)
}

// initScheduler starts cron-driven index rebuilds when configured
func (a *App) initScheduler() error {
	schedule := a.Config.Indexing.Schedule
	if schedule == "" {
		return nil
	}

	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(schedule, func() {
		if _, err := a.RebuildIndex(context.Background()); err != nil {
			a.Logger.Error().Err(err).Msg("Scheduled index rebuild failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid index schedule %q: %w", schedule, err)
	}

	a.scheduler.Start()
	a.Logger.Info().Str("schedule", schedule).Msg("Scheduled index rebuilds enabled")
	return nil
}

// RebuildIndex runs one index build and publishes the result
func (a *App) RebuildIndex(ctx context.Context) (*interfaces.BuildReport, error) {
	snapshot, report, err := a.IndexerService.Build(ctx)
	if err != nil {
		return nil, err
	}
	a.Snapshots.Publish(snapshot)
	return report, nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}

// unavailableIndexer stands in when no embedding key is configured
type unavailableIndexer struct{}

func (u *unavailableIndexer) Build(ctx context.Context) (*models.IndexSnapshot, *interfaces.BuildReport, error) {
	return nil, nil, fmt.Errorf("%w: embeddings are not configured", models.ErrIndexUnavailable)
}

// unavailableRetriever stands in when no embedding key is configured
type unavailableRetriever struct{}

func (u *unavailableRetriever) Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievedRecord, error) {
	return nil, fmt.Errorf("%w: embeddings are not configured", models.ErrIndexUnavailable)
}
