// Package users is the credential store adapter: it persists users and
// their avatar keys in PostgreSQL.
package users

import (
	"context"

	"github.com/mnln/accounts/internal/server/models"
)

// Repository is the users table seen by the services. Lookups of absent
// users return common.ErrorNotFound; a duplicate username on Create returns
// common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetPasswordHash(ctx context.Context, login string) (string, error)
	SetAvatarKey(ctx context.Context, userID int64, key string) error
	GetAvatarKey(ctx context.Context, userID int64) (*string, error)
	GetProfile(ctx context.Context, userID int64) (*models.ProfileRow, error)
}
