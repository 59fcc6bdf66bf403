package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/lottery-auth/internal/domain"
)

type memoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byUsername map[string]string
}

// NewMemoryUserRepository returns a process-local implementation used when no DSN is configured.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:       make(map[string]domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.ErrDuplicateUser
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *memoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
