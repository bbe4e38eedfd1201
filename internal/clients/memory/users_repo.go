package memory

import (
	"context"
	"sync"

	"note-sync/internal/services/auth"
)

// UsersRepo implements auth.UsersRepo in memory.
type UsersRepo struct {
	mu      sync.RWMutex
	byEmail map[string]auth.User
}

// NewUsersRepo creates an empty users repository.
func NewUsersRepo() *UsersRepo {
	return &UsersRepo{byEmail: make(map[string]auth.User)}
}

// Create stores user; emails are unique.
func (r *UsersRepo) Create(ctx context.Context, user *auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return auth.ErrDuplicate
	}
	r.byEmail[user.Email] = *user
	return nil
}

// FindByEmail finds a user by email address
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}
