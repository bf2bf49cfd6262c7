// Package memory provides a process-local UserStore used by tests and by
// deployments started with a memory:// database URL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in maps guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byUsername map[string]string
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{
		byID:       make(map[string]models.User),
		byUsername: make(map[string]string),
	}
}

// Close is a no-op.
func (s *Store) Close() {}

// CreateUser assigns an id and inserts the user unless the username is taken.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.byID[user.ID] = user
	s.byUsername[user.Username] = user.ID
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.byID[id], nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// SaveUser updates the stored token of an existing user.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[user.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.CurrentToken = user.CurrentToken
	s.byID[user.ID] = existing
	return nil
}
