package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/account-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by the auth flow.
// Implementations must enforce username uniqueness themselves so that
// concurrent CreateUser calls for the same username cannot both succeed.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// SaveUser persists the mutable fields of an existing user.
	SaveUser(ctx context.Context, user models.User) error
	Close()
}
