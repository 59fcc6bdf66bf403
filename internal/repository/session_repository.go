package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// SessionRepository is the Postgres session store. Rows are never filtered by expiry on read.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs repository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts the row keyed by token.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (token, user_id, created_at, expires_at)
        VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt.UTC(),
		session.ExpiresAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSession
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Lookup returns the row for token.
func (r *SessionRepository) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	const query = `
        SELECT token, user_id, created_at, expires_at
        FROM sessions WHERE token=$1`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

// Revoke deletes the row unconditionally.
func (r *SessionRepository) Revoke(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Stats counts all rows and rows still live at now.
func (r *SessionRepository) Stats(ctx context.Context, now time.Time) (domain.SessionStats, error) {
	const query = `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE expires_at >= $1)
        FROM sessions`

	var stats domain.SessionStats
	if err := r.pool.QueryRow(ctx, query, now.UTC()).Scan(&stats.Total, &stats.Active); err != nil {
		return domain.SessionStats{}, fmt.Errorf("count sessions: %w", err)
	}
	return stats, nil
}

// PurgeExpired deletes rows lapsed at now.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return cmd.RowsAffected(), nil
}
