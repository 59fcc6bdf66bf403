package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, password_digest, salt, role)
        VALUES ($1, $2, $3, $4, $5)`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordDigest,
		user.Salt,
		user.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, username, password_digest, salt, role
        FROM users WHERE id=$1`

	return r.scanOne(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT id, username, password_digest, salt, role
        FROM users WHERE username=$1`

	return r.scanOne(ctx, query, username)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordDigest,
		&user.Salt,
		&user.Role,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
