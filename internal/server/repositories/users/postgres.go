package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/dbx"
	"github.com/mnln/accounts/internal/server/models"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ClassifyInsertError maps an INSERT failure onto the closed set
// {common.ErrAlreadyExists, wrapped db error}.
func ClassifyInsertError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

// Create inserts user and fills in its id. An empty role defaults to
// models.RoleUser.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query :=
		`INSERT INTO users (username, password_hash, role, email, chess_dot_com_username, lichess_username)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.PasswordHash, string(user.Role),
		user.Email, user.ChessDotComUsername, user.LichessUsername,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, ClassifyInsertError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, role FROM users
		 WHERE username = $1`

	user := &models.User{}
	var role string
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.UserName, &user.PasswordHash, &role)
	if err != nil {
		return nil, notFoundOrDBError(err)
	}
	user.Role = models.Role(role)

	return user, nil
}

func (r *PostgresRepository) GetPasswordHash(ctx context.Context, userName string) (string, error) {
	query := `SELECT password_hash FROM users WHERE username = $1`

	var hash string
	if err := r.db.QueryRowContext(ctx, query, userName).Scan(&hash); err != nil {
		return "", notFoundOrDBError(err)
	}
	return hash, nil
}

// SetAvatarKey replaces the user's avatar key.
func (r *PostgresRepository) SetAvatarKey(ctx context.Context, userID int64, key string) error {
	query := `UPDATE users SET avatar_s3_key = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, key, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// GetAvatarKey returns nil without error for a user that has no avatar.
func (r *PostgresRepository) GetAvatarKey(ctx context.Context, userID int64) (*string, error) {
	query := `SELECT avatar_s3_key FROM users WHERE id = $1`

	var key sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&key); err != nil {
		return nil, notFoundOrDBError(err)
	}
	if !key.Valid {
		return nil, nil
	}
	return &key.String, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (*models.ProfileRow, error) {
	query :=
		`SELECT username, avatar_s3_key, email, chess_dot_com_username, lichess_username
		 FROM users
		 WHERE id = $1`

	var (
		p                             models.ProfileRow
		avatar, email, chess, lichess sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserName, &avatar, &email, &chess, &lichess)
	if err != nil {
		return nil, notFoundOrDBError(err)
	}

	p.AvatarKey = nullable(avatar)
	p.Email = nullable(email)
	p.ChessDotComUsername = nullable(chess)
	p.LichessUsername = nullable(lichess)

	return &p, nil
}

func notFoundOrDBError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
