// Package sessions persists the logged-in session per server, so the CLI
// stays logged in between runs.
package sessions

import (
	"context"
	"time"
)

// Session is a stored login.
type Session struct {
	ServerURL string
	UserName  string
	UserID    int64
	Token     string
	SavedAt   time.Time
}

type Repository interface {
	Save(ctx context.Context, s Session) error
	// Get returns common.ErrorNotFound when no session is stored for serverURL.
	Get(ctx context.Context, serverURL string) (*Session, error)
	Delete(ctx context.Context, serverURL string) error
}
