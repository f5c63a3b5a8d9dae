// Package services contains application services for the mnln CLI client.
// AuthService hashes passwords locally, talks to the server and keeps the
// session token in the local database.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mnln/accounts/internal/client/api"
	"github.com/mnln/accounts/internal/client/repositories/sessions"
	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/cryptox"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// API is the part of the server API the client uses.
type API interface {
	Register(ctx context.Context, req api.RegisterRequest) (int64, error)
	Salt(ctx context.Context, username string) (string, error)
	Login(ctx context.Context, username, passwordHash string) (string, error)
	UploadAvatar(ctx context.Context, token, path string) (string, error)
	PageData(ctx context.Context, userID int64) (*api.UserPageData, error)
	Ping(ctx context.Context) error
}

// Profile holds the optional registration fields.
type Profile struct {
	Email               *string
	ChessDotComUsername *string
	LichessUsername     *string
}

type AuthService struct {
	api       API
	sessions  sessions.Repository
	serverURL string
	params    cryptox.Params
	now       func() time.Time
}

func NewAuthService(client API, repo sessions.Repository, serverURL string, params cryptox.Params) *AuthService {
	return &AuthService{
		api:       client,
		sessions:  repo,
		serverURL: serverURL,
		params:    params,
		now:       time.Now,
	}
}

// Register creates an account with a fresh random salt.
func (s *AuthService) Register(ctx context.Context, username string, password []byte, p Profile) (int64, error) {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return 0, fmt.Errorf("generate salt: %w", err)
	}

	return s.api.Register(ctx, api.RegisterRequest{
		UserName:            username,
		PasswordHash:        cryptox.HashPassword(password, salt, s.params),
		Email:               p.Email,
		ChessDotComUsername: p.ChessDotComUsername,
		LichessUsername:     p.LichessUsername,
	})
}

// Login fetches the user's salt, re-derives the hash and stores the
// returned token.
func (s *AuthService) Login(ctx context.Context, username string, password []byte) (*sessions.Session, error) {
	encoded, err := s.api.Salt(ctx, username)
	if err != nil {
		return nil, err
	}
	salt, err := cryptox.DecodeSalt(encoded)
	if err != nil {
		return nil, err
	}

	token, err := s.api.Login(ctx, username, cryptox.HashPassword(password, salt, s.params))
	if err != nil {
		return nil, err
	}

	userID, err := tokenUserID(token)
	if err != nil {
		return nil, err
	}

	sess := sessions.Session{
		ServerURL: s.serverURL,
		UserName:  username,
		UserID:    userID,
		Token:     token,
		SavedAt:   s.now(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Current returns the stored session, or ErrNotLoggedIn.
func (s *AuthService) Current(ctx context.Context) (*sessions.Session, error) {
	sess, err := s.sessions.Get(ctx, s.serverURL)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotLoggedIn
	}
	return sess, err
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Delete(ctx, s.serverURL)
}

// UploadAvatar uploads the file at path for the logged-in user. A rejected
// token drops the stored session.
func (s *AuthService) UploadAvatar(ctx context.Context, path string) (string, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return "", err
	}

	url, err := s.api.UploadAvatar(ctx, sess.Token, path)
	if errors.Is(err, api.ErrUnauthorized) {
		if derr := s.Logout(ctx); derr != nil {
			return "", derr
		}
		return "", ErrSessionExpired
	}
	return url, err
}

// Profile returns the page data of the logged-in user.
func (s *AuthService) Profile(ctx context.Context) (*api.UserPageData, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.PageData(ctx, sess.UserID)
}

func (s *AuthService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// tokenUserID reads the subject of a token the server just issued. The
// signature is the server's business; the client only needs the id.
func tokenUserID(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject %q is not a user id", claims.Subject)
	}
	return id, nil
}
