package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/mnln/accounts/internal/client/api"
	"github.com/mnln/accounts/internal/client/config"
	"github.com/mnln/accounts/internal/client/localdb"
	"github.com/mnln/accounts/internal/client/repositories/sessions"
	"github.com/mnln/accounts/internal/client/services"
)

// authService is what the commands need from services.AuthService.
type authService interface {
	Register(ctx context.Context, username string, password []byte, p services.Profile) (int64, error)
	Login(ctx context.Context, username string, password []byte) (*sessions.Session, error)
	Current(ctx context.Context) (*sessions.Session, error)
	Logout(ctx context.Context) error
	UploadAvatar(ctx context.Context, path string) (string, error)
	Profile(ctx context.Context) (*api.UserPageData, error)
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	db       *sql.DB
	auth     authService
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	client := api.New(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(client, sessions.NewSQLiteRepository(db), c.ServerURL, c.Argon)

	return &App{
		config: c,
		db:     db,
		auth:   as,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run restores a stored session, then serves the REPL until exit.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}

	if sess, err := a.auth.Current(ctx); err == nil {
		a.userName = sess.UserName
	}
	if err := a.auth.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}

	fmt.Fprintln(a.out, "mnln CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}
