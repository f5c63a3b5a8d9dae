package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (server_url, username, user_id, token, saved_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(server_url) DO UPDATE SET
			username = excluded.username,
			user_id = excluded.user_id,
			token = excluded.token,
			saved_at = excluded.saved_at
	`, s.ServerURL, s.UserName, s.UserID, s.Token, s.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", s.ServerURL, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, serverURL string) (*Session, error) {
	s := Session{ServerURL: serverURL}
	err := r.db.QueryRowContext(ctx,
		`SELECT username, user_id, token, saved_at FROM sessions WHERE server_url = ?`, serverURL,
	).Scan(&s.UserName, &s.UserID, &s.Token, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", serverURL, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, serverURL string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE server_url = ?`, serverURL)
	if err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", serverURL, err)
	}
	return nil
}
