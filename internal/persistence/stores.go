package persistence

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/repository"
	"github.com/spec-kit/lottery-auth/internal/session"
)

const redisSessionPrefix = "lottery-auth"

// Stores bundles the account and session storage selected by configuration.
type Stores struct {
	Users    repository.UserRepository
	Sessions session.Backend
}

// OpenStores picks the user repository from the Postgres handle and the session
// backend from AUTH_SESSION_STORE.
func OpenStores(cfg config.AuthConfig, pg *Postgres, rdb *Redis, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{}

	if pool := pg.PoolHandle(); pool != nil {
		stores.Users = repository.NewUserRepository(pool)
	} else {
		logger.Warn("using in-memory user repository; accounts are lost on restart")
		stores.Users = repository.NewMemoryUserRepository()
	}

	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		pool := pg.PoolHandle()
		if pool == nil {
			return nil, fmt.Errorf("session store %q requires POSTGRES_DSN", cfg.SessionStore)
		}
		stores.Sessions = repository.NewSessionRepository(pool)
	case config.SessionStoreRedis:
		if rdb == nil || rdb.Client == nil {
			return nil, fmt.Errorf("session store %q requires a redis client", cfg.SessionStore)
		}
		stores.Sessions = session.NewRedisStore(rdb.Client, redisSessionPrefix, cfg.SessionRetention())
	case config.SessionStoreMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		stores.Sessions = session.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}

	logger.Info("storage selected", zap.String("session_store", cfg.SessionStore))
	return stores, nil
}
