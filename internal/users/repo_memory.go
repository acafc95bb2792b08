package users

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// Create stores a user, enforcing email uniqueness.
func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return nil
}

// GetByID fetches a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetByEmail fetches a user by email.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

var _ Repo = (*MemoryRepo)(nil)
