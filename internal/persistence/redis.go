package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/lottery-auth/internal/config"
)

const redisDialTimeout = 3 * time.Second

// Redis holds the client backing the redis session store.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis connects to Redis. REDIS_ADDR may list several comma separated
// addresses, in which case a cluster client is created.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	addrs := splitAddrs(cfg.Addr)
	if len(addrs) == 0 {
		return nil, errors.New("REDIS_ADDR is empty")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", zap.Strings("addrs", addrs), zap.Int("db", cfg.DB))
	return &Redis{Client: client}, nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func splitAddrs(raw string) []string {
	var addrs []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}
