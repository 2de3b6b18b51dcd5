// Package bootstrap assembles the application object graph from config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/classifier"
	"github.com/auditscan/auditscan/internal/config"
	"github.com/auditscan/auditscan/internal/core/ports"
	"github.com/auditscan/auditscan/internal/core/usecase"
	"github.com/auditscan/auditscan/internal/infrastructure/cache/sqlitecache"
	"github.com/auditscan/auditscan/internal/infrastructure/extractor"
	"github.com/auditscan/auditscan/internal/infrastructure/llm/ollama"
	natsqueue "github.com/auditscan/auditscan/internal/infrastructure/queue/nats"
	"github.com/auditscan/auditscan/internal/infrastructure/repository/postgres"
	"github.com/auditscan/auditscan/internal/infrastructure/resilience"
	"github.com/auditscan/auditscan/internal/observability/logging"
	"github.com/auditscan/auditscan/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog *catalog.Catalog

	Loader ports.DocumentLoader
	RunUC  ports.ScanRunner

	// Worker-only collaborators, nil when assembled with New.
	Queue    ports.ScanQueue
	RunStore ports.RunStore
	Metrics  *metrics.ScannerMetrics

	closeFn func()
}

// New wires the classification pipeline: catalog, classifier, cache and
// the run use case. This is everything the one-shot scanner needs.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger("auditscan", cfg.LogLevel)

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	executor := resilience.NewExecutor(policyFromConfig(cfg))

	var completion ports.CompletionClient
	if cfg.ClassifierMode != "rules" {
		completion = ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
			RequestsPerSecond: cfg.OllamaRequestsPerSecond,
			Executor:          executor,
		})
	}

	cls, err := classifier.ForMode(cfg.ClassifierMode, completion, cat, classifier.SemanticOptions{
		MaxDocumentChars: cfg.MaxDocumentChars,
		MaxEvidence:      cfg.MaxEvidence,
		MaxTokens:        cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}

	var cache ports.ResultCache
	var cacheStore *sqlitecache.Store
	if cfg.CachePath != "" {
		cacheStore, err = sqlitecache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open result cache: %w", err)
		}
		cache = cacheStore
	}

	classifyUC := usecase.NewClassifyUseCase(
		cls,
		cache,
		cat.Version(),
		classifierID(cfg),
		time.Duration(cfg.CallTimeoutSeconds)*time.Second,
		logger,
	)
	runUC := usecase.NewRunUseCase(classifyUC, cat, cfg.ConfidenceThreshold, cfg.Concurrency, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: cat,
		Loader:  extractor.NewLoader(logger),
		RunUC:   runUC,

		closeFn: func() {
			if cacheStore != nil {
				_ = cacheStore.Close()
			}
		},
	}, nil
}

// NewWorker layers the queue consumer, the run artifact store and the
// Prometheus registry on top of the core pipeline.
func NewWorker(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		app.Close()
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: resilience.NewExecutor(policyFromConfig(cfg)),
	})
	if err != nil {
		app.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init scan queue: %w", err)
	}

	coreClose := app.closeFn
	app.Queue = queue
	app.RunStore = repo
	app.Metrics = metrics.NewScannerMetrics("auditscan-worker")
	app.closeFn = func() {
		queue.Close()
		_ = db.Close()
		coreClose()
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// classifierID feeds the cache fingerprint so cached records are never
// reused across classifier variants or model swaps.
func classifierID(cfg config.Config) string {
	if cfg.ClassifierMode == "rules" {
		return "rules"
	}
	return "semantic:" + cfg.OllamaModel
}

func policyFromConfig(cfg config.Config) resilience.Policy {
	policy := resilience.DefaultPolicy()
	policy.MaxAttempts = cfg.RetryMaxAttempts
	if cfg.RetryInitialBackoffMS > 0 {
		policy.InitialBackoff = time.Duration(cfg.RetryInitialBackoffMS) * time.Millisecond
	}
	policy.BreakerEnabled = cfg.CircuitBreakerEnabled
	return policy
}
