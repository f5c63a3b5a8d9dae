package avatars

import (
	"context"
	"fmt"

	"github.com/mnln/accounts/internal/dbx"
	"github.com/mnln/accounts/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record stores that objectKey was uploaded for userID.
func (r *PostgresRepository) Record(ctx context.Context, userID int64, objectKey string) (*models.AvatarUpload, error) {
	query :=
		`INSERT INTO avatar_uploads (user_id, object_key)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	u := &models.AvatarUpload{UserID: userID, ObjectKey: objectKey}
	if err := r.db.QueryRowContext(ctx, query, userID, objectKey).Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// ListByUser returns every recorded upload of userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.AvatarUpload, error) {
	query :=
		`SELECT id, user_id, object_key, created_at
		 FROM avatar_uploads
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AvatarUpload
	for rows.Next() {
		var u models.AvatarUpload
		if err := rows.Scan(&u.ID, &u.UserID, &u.ObjectKey, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
