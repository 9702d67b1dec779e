package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/internal/config"
	"github.com/spec-kit/history-importer/internal/events"
	"github.com/spec-kit/history-importer/internal/markdown"
	"github.com/spec-kit/history-importer/internal/observability"
	"github.com/spec-kit/history-importer/internal/persistence"
	"github.com/spec-kit/history-importer/internal/repository"
	"github.com/spec-kit/history-importer/internal/service"
	"github.com/spec-kit/history-importer/internal/worker"
)

// app holds the process-wide dependencies shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	pg         *persistence.Postgres
	redis      *persistence.Redis
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	reporter   *service.ProgressReporter
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		pg:         pg,
		redis:      persistence.NewRedis(ctx, cfg.Redis, logger),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	a.reporter = service.NewProgressReporter(a.dispatcher, logger, a.metrics).
		WithRetention(cfg.Importer.RunRetention)
	worker.StartProgressWorker(a.reporter)

	if cfg.Postgres.RunMigrations && pg.Pool != nil {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			a.close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return a, nil
}

func (a *app) close() {
	a.redis.Close()
	a.pg.Close()
	_ = a.logger.Sync()
}

func (a *app) bindingStore() *bindings.RedisStore {
	if !a.redis.Enabled() {
		return nil
	}
	return bindings.NewRedisStore(a.redis.Client, a.cfg.Redis.BindingsTTL())
}

// importService wires the Postgres-backed sink and lookups. Stored binding
// tables are consulted only when useRedis is set.
func (a *app) importService(useRedis bool) (*service.ImportService, error) {
	pool, err := a.pg.Require()
	if err != nil {
		return nil, err
	}

	deps := service.ImportDependencies{
		Lookups:    repository.NewLookupRepository(pool),
		Sink:       repository.NewHistorySink(repository.NewHistoryRepository(pool), repository.NewWorkItemRepository(pool)),
		Renderer:   markdown.NewRenderer(a.logger),
		Users:      repository.NewUserRepository(pool),
		TagColors:  repository.NewProjectRepository(pool),
		Dispatcher: a.dispatcher,
		Config:     a.cfg.Importer,
		Logger:     a.logger,
	}
	if useRedis {
		store := a.bindingStore()
		if store == nil {
			return nil, fmt.Errorf("redis bindings requested but REDIS_ADDR is empty")
		}
		deps.Bindings = store
	}
	return service.NewImportService(deps), nil
}
