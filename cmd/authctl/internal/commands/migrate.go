package commands

import (
	"context"
	"fmt"

	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/persistence"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, "authctl", logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
}
