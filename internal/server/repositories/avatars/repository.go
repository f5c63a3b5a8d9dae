// Package avatars keeps the history of stored avatar objects.
package avatars

import (
	"context"

	"github.com/mnln/accounts/internal/server/models"
)

type Repository interface {
	Record(ctx context.Context, userID int64, objectKey string) (*models.AvatarUpload, error)
	ListByUser(ctx context.Context, userID int64) ([]models.AvatarUpload, error)
}
