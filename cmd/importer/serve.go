package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/history-importer/internal/api/http"
	"github.com/spec-kit/history-importer/internal/api/http/handlers"
	"github.com/spec-kit/history-importer/internal/auth"
	"github.com/spec-kit/history-importer/internal/repository"
	"github.com/spec-kit/history-importer/internal/worker"
)

func serveCmd() *cobra.Command {
	var useRedis bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API that queues imports and serves history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pool, err := a.pg.Require()
			if err != nil {
				return err
			}
			svc, err := a.importService(useRedis)
			if err != nil {
				return err
			}

			queue := worker.NewImportQueue(svc, a.reporter, a.logger, a.cfg.Importer.QueueSize)
			queue.Start(ctx)

			tokens := auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.AccessTokenTTLMinutes, a.cfg.Auth.Issuer)
			deps := map[string]handlers.Pinger{"postgres": a.pg}
			if a.redis.Enabled() {
				deps["redis"] = a.redis
			}

			server := fiber.New(fiber.Config{AppName: a.cfg.App.Name})
			httptransport.RegisterMiddlewares(server, a.logger, a.metrics, a.cfg.App.RequestTimeout())
			httptransport.RegisterRoutes(server, httptransport.RouteConfig{
				Health:         handlers.NewHealthHandler(a.cfg.App.Name, a.cfg.App.Version, deps),
				Imports:        handlers.NewImportsHandler(queue, a.reporter, a.cfg.Importer.DumpDir),
				History:        handlers.NewHistoryHandler(repository.NewWorkItemRepository(pool), repository.NewHistoryRepository(pool)),
				Metrics:        handlers.NewMetricsHandler(a.metrics),
				AuthMiddleware: auth.NewAuthMiddleware(tokens),
			})

			go func() {
				if err := server.Listen(a.cfg.App.Addr()); err != nil {
					a.logger.Error("fiber listen", zap.Error(err))
					cancel()
				}
			}()

			waitForShutdown(ctx, a.logger)

			_ = server.Shutdown()
			queue.Stop()
			cancel()
			return nil
		},
	}

	cmd.Flags().BoolVar(&useRedis, "redis-bindings", false, "load binding tables pushed to Redis for every run")
	return cmd
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
