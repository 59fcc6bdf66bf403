// Package session holds the non-Postgres session store backends.
package session

import (
	"context"
	"time"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// Backend is a session store that also supports maintenance queries.
type Backend interface {
	Create(ctx context.Context, session *domain.Session) error
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
	Stats(ctx context.Context, now time.Time) (domain.SessionStats, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*RedisStore)(nil)
)
