package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lottery-auth/internal/api/http"
	"github.com/spec-kit/lottery-auth/internal/api/http/handlers"
	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/events"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/persistence"
	"github.com/spec-kit/lottery-auth/internal/service"
	"github.com/spec-kit/lottery-auth/internal/worker"
)

const devSecret = "dev-secret"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == devSecret && cfg.App.Env != "development" {
		logger.Warn("AUTH_JWT_SECRET is the development default", zap.String("env", cfg.App.Env))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	health := map[string]handlers.Pinger{"postgres": nil, "redis": nil}
	if pg.PoolHandle() != nil {
		health["postgres"] = pg
	}

	var rdb *persistence.Redis
	if cfg.Auth.SessionStore == config.SessionStoreRedis {
		rdb, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		health["redis"] = rdb
	}

	stores, err := persistence.OpenStores(cfg.Auth, pg, rdb, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	events.RegisterAuditLog(dispatcher, logger)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:    stores.Users,
		Sessions: stores.Sessions,
		Events:   dispatcher,
		Metrics:  metrics,
		Logger:   logger,
	})

	app := httptransport.NewApp(logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health),
		Auth:       handlers.NewAuthHandler(authService),
		Admin:      handlers.NewAdminHandler(authService, metrics),
		Authorizer: authService,
	})

	sweeper := worker.NewSessionSweeper(authService, cfg.Auth.SweepInterval(), logger)
	go sweeper.Run(ctx)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("session_store", cfg.Auth.SessionStore))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
