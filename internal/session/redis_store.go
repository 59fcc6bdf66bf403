package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

const scanBatch = 200

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

type redisRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisStore keeps sessions as JSON values keyed by the SHA-256 of the token.
// Keys outlive their session by the retention window; zero retention keeps them forever.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisStore builds a store under the given key prefix.
func NewRedisStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "auth"
	}
	return &RedisStore{client: client, prefix: prefix, retention: retention, now: time.Now}
}

func (s *RedisStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":session:" + hex.EncodeToString(sum[:])
}

func (s *RedisStore) pattern() string {
	return s.prefix + ":session:*"
}

// Create writes the row unless a row already exists for the token.
func (s *RedisStore) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(redisRecord{
		Token:     session.Token,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	var ttl time.Duration
	if s.retention > 0 {
		ttl = session.ExpiresAt.Sub(s.now()) + s.retention
		if ttl < time.Second {
			ttl = time.Second
		}
	}

	created, err := s.client.SetNX(ctx, s.key(session.Token), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: create session: %w", ErrRedisUnavailable, err)
	}
	if !created {
		return domain.ErrDuplicateSession
	}
	return nil
}

// Lookup returns the stored row, lapsed or not.
func (s *RedisStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: lookup session: %w", ErrRedisUnavailable, err)
	}
	return decodeRecord(payload)
}

// Revoke deletes the row; absent tokens are not an error.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: revoke session: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Stats scans every session key.
func (s *RedisStore) Stats(ctx context.Context, now time.Time) (domain.SessionStats, error) {
	var stats domain.SessionStats
	err := s.scan(ctx, func(key string, session *domain.Session) error {
		stats.Total++
		if !session.ExpiredAt(now) {
			stats.Active++
		}
		return nil
	})
	return stats, err
}

// PurgeExpired deletes every session lapsed at now.
func (s *RedisStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := s.scan(ctx, func(key string, session *domain.Session) error {
		if !session.ExpiredAt(now) {
			return nil
		}
		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: purge session: %w", ErrRedisUnavailable, err)
		}
		purged += n
		return nil
	})
	return purged, err
}

// scan visits every session key. Cluster clients are scanned master by master,
// since SCAN only walks the node it is sent to.
func (s *RedisStore) scan(ctx context.Context, fn func(key string, session *domain.Session) error) error {
	cluster, ok := s.client.(*redis.ClusterClient)
	if !ok {
		return s.scanNode(ctx, s.client, fn)
	}

	var mu sync.Mutex
	locked := func(key string, session *domain.Session) error {
		mu.Lock()
		defer mu.Unlock()
		return fn(key, session)
	}
	return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		return s.scanNode(ctx, node, locked)
	})
}

func (s *RedisStore) scanNode(ctx context.Context, node redis.UniversalClient, fn func(key string, session *domain.Session) error) error {
	iter := node.Scan(ctx, 0, s.pattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := node.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: read session: %w", ErrRedisUnavailable, err)
		}
		session, err := decodeRecord(payload)
		if err != nil {
			return err
		}
		if err := fn(key, session); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan sessions: %w", ErrRedisUnavailable, err)
	}
	return nil
}

func decodeRecord(payload []byte) (*domain.Session, error) {
	var rec redisRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		Token:     rec.Token,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
