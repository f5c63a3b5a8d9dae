// Package services holds the server's account logic. Every error a service
// returns is classified with svcerr: exposed errors carry the status and
// detail a client may see, opaque ones are logged here and surface as a
// generic 500.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/auth"
	"github.com/mnln/accounts/internal/server/models"
	"github.com/mnln/accounts/internal/server/passhash"
	"github.com/mnln/accounts/internal/server/repositories/repomanager"
	"github.com/mnln/accounts/internal/server/svcerr"
)

const invalidCredentialsDetail = "invalid username or password"

// UserService registers users, logs them in and serves password salts.
// Passwords arrive already hashed by the client; the service only stores and
// compares the PHC strings.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	log         logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		log:         log.With("module", "user_service"),
		now:         time.Now,
	}
}

// Register creates a user and returns its id. A taken username is an
// exposed 409.
func (s *UserService) Register(ctx context.Context, username, passwordHash string, profile models.UserProfile) (int64, error) {
	repo := s.repomanager.Users(s.db)

	u, err := repo.Create(ctx, &models.User{
		UserName:            username,
		PasswordHash:        passwordHash,
		Role:                models.RoleUser,
		Email:               profile.Email,
		ChessDotComUsername: profile.ChessDotComUsername,
		LichessUsername:     profile.LichessUsername,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return 0, svcerr.ToExposed(err, http.StatusConflict, "user already exists")
		}
		s.log.Error(ctx, "failed to create user", "username", username, "error", err)
		return 0, svcerr.ToOpaque(err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.ID, nil
}

// Login compares passwordHash with the stored hash and returns a signed
// session token. An unknown user and a wrong hash produce the same error.
func (s *UserService) Login(ctx context.Context, username, passwordHash string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", invalidCredentials()
		}
		s.log.Error(ctx, "failed to load user", "username", username, "error", err)
		return "", svcerr.ToOpaque(err)
	}

	if !checkPasswordHash(user.PasswordHash, passwordHash) {
		return "", invalidCredentials()
	}

	token, err := s.codec.Sign(auth.NewClaims(user.ID, user.Role, s.now()))
	if err != nil {
		s.log.Error(ctx, "failed to sign token", "user_id", user.ID, "error", err)
		return "", svcerr.ToOpaque(err)
	}

	return token, nil
}

// Salt returns the salt segment of the user's stored PHC hash, so the client
// can hash a login attempt the same way it hashed the registration.
func (s *UserService) Salt(ctx context.Context, username string) (string, error) {
	repo := s.repomanager.Users(s.db)

	stored, err := repo.GetPasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", svcerr.ToExposed(common.ErrUserNotFound, http.StatusNotFound, "user not found")
		}
		s.log.Error(ctx, "failed to load password hash", "username", username, "error", err)
		return "", svcerr.ToOpaque(err)
	}

	h, err := passhash.Parse(stored)
	if err != nil {
		s.log.Error(ctx, "stored password hash is not a valid PHC string", "username", username, "error", err)
		return "", svcerr.ToOpaque(err)
	}

	salt, err := h.SaltString()
	if err != nil {
		s.log.Error(ctx, "stored password hash has no salt", "username", username, "error", err)
		return "", svcerr.ToOpaque(err)
	}

	return salt, nil
}

func invalidCredentials() error {
	return svcerr.ToExposed(common.ErrInvalidCredentials, http.StatusUnauthorized, invalidCredentialsDetail)
}

func checkPasswordHash(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
