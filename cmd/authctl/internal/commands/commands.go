package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/persistence"
	"github.com/spec-kit/lottery-auth/internal/service"
)

type Globals struct {
	Debug   bool
	Version string
	Out     io.Writer
}

// environment is the service wired from the same environment variables as the API.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	rdb    *persistence.Redis
	auth   *service.AuthService
}

func (e *environment) Close() {
	e.rdb.Close()
	e.pg.Close()
	_ = e.logger.Sync()
}

func openEnvironment(ctx context.Context, globals *Globals) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if globals.Debug {
		cfg.Logger.Level = "debug"
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	env := &environment{cfg: cfg, logger: logger}
	env.pg, err = persistence.NewPostgres(ctx, cfg.Postgres, "authctl", logger)
	if err != nil {
		return nil, err
	}
	if env.pg.PoolHandle() == nil {
		env.Close()
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.Auth.SessionStore == config.SessionStoreRedis {
		env.rdb, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			env.Close()
			return nil, err
		}
	}

	stores, err := persistence.OpenStores(cfg.Auth, env.pg, env.rdb, logger)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.auth = service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:    stores.Users,
		Sessions: stores.Sessions,
		Logger:   logger,
	})
	return env, nil
}
