// Package memory keeps users and the revocation ledger in process memory.
// It gives the same uniqueness guarantees as the PostgreSQL repositories and
// backs DatabaseDSN=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]models.User)}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("%w: email %s", common.ErrorConflict, user.Email)
	}
	r.byEmail[strings.Clone(user.Email)] = *user
	return user, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type BlacklistRepository struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewBlacklistRepository() *BlacklistRepository {
	return &BlacklistRepository{entries: make(map[string]time.Time)}
}

func (r *BlacklistRepository) Create(_ context.Context, token string, createdAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[token]; ok {
		return fmt.Errorf("%w: token already revoked", common.ErrorConflict)
	}
	r.entries[strings.Clone(token)] = createdAt
	return nil
}

func (r *BlacklistRepository) Exists(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[token]
	return ok, nil
}

func (r *BlacklistRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, createdAt := range r.entries {
		if createdAt.Before(cutoff) {
			delete(r.entries, token)
			n++
		}
	}
	return n, nil
}

func (r *BlacklistRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.entries)), nil
}
