//go:build integration

package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/domain"
	"github.com/spec-kit/lottery-auth/internal/persistence"
	"github.com/spec-kit/lottery-auth/internal/repository"
	"github.com/spec-kit/lottery-auth/internal/service"
)

func setupPostgres(t *testing.T, ctx context.Context) *persistence.Postgres {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "lottery",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/lottery?sslmode=disable", host, port.Port())
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 4}, "lottery-auth-test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pg.PoolHandle(), zap.NewNop()))
	// second run is a no-op
	require.NoError(t, persistence.RunMigrations(ctx, pg.PoolHandle(), zap.NewNop()))
	return pg
}

func TestIntegration_PostgresStores(t *testing.T) {
	ctx := context.Background()
	pg := setupPostgres(t, ctx)

	stores, err := persistence.OpenStores(config.AuthConfig{SessionStore: config.SessionStorePostgres}, pg, nil, zap.NewNop())
	require.NoError(t, err)
	sessions := stores.Sessions

	owner := &domain.User{Username: "alice", PasswordDigest: "d", Salt: "s", Role: domain.RoleUser}

	t.Run("users", func(t *testing.T) {
		require.NoError(t, stores.Users.Create(ctx, owner))
		require.NotEmpty(t, owner.ID)

		err := stores.Users.Create(ctx, &domain.User{Username: "alice", PasswordDigest: "x", Role: domain.RoleUser})
		require.ErrorIs(t, err, domain.ErrDuplicateUser)

		got, err := stores.Users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, owner, got)

		_, err = stores.Users.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrUserNotFound)

		n, err := stores.Users.Count(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("sessions", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		live := domain.NewSession("live-token", owner.ID, now, time.Hour)
		lapsed := domain.NewSession("lapsed-token", owner.ID, now.Add(-2*time.Hour), time.Hour)
		require.NoError(t, sessions.Create(ctx, live))
		require.NoError(t, sessions.Create(ctx, lapsed))
		require.ErrorIs(t, sessions.Create(ctx, live), domain.ErrDuplicateSession)

		got, err := sessions.Lookup(ctx, "live-token")
		require.NoError(t, err)
		require.Equal(t, owner.ID, got.UserID)
		require.True(t, got.ExpiresAt.Equal(live.ExpiresAt))

		got, err = sessions.Lookup(ctx, "lapsed-token")
		require.NoError(t, err)
		require.True(t, got.ExpiredAt(now))

		stats, err := sessions.Stats(ctx, now)
		require.NoError(t, err)
		require.Equal(t, domain.SessionStats{Total: 2, Active: 1}, stats)

		purged, err := sessions.PurgeExpired(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, purged)

		require.NoError(t, sessions.Revoke(ctx, "live-token"))
		require.NoError(t, sessions.Revoke(ctx, "live-token"))
		_, err = sessions.Lookup(ctx, "live-token")
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestIntegration_LoginLogoutAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pg := setupPostgres(t, ctx)

	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "integration", TokenTTLSeconds: 3600}, service.AuthDependencies{
		Users:    repository.NewUserRepository(pg.PoolHandle()),
		Sessions: repository.NewSessionRepository(pg.PoolHandle()),
	})

	_, err := svc.Register(ctx, "bob", "hunter2", domain.RoleModerator)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "bob", "hunter2")
	require.NoError(t, err)

	principal, err := svc.Authorize(ctx, "Bearer "+result.Token, domain.RoleModerator)
	require.NoError(t, err)
	require.Equal(t, "bob", principal.Username)

	require.NoError(t, svc.Logout(ctx, principal, result.Token))
	_, err = svc.Authorize(ctx, "Bearer "+result.Token, domain.RoleUser)
	require.Error(t, err)
}
