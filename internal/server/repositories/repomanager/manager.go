package repomanager

import (
	"context"
	"database/sql"

	"github.com/mnln/accounts/internal/dbx"
	"github.com/mnln/accounts/internal/server/repositories/avatars"
	"github.com/mnln/accounts/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a *sql.DB or *sql.Tx,
// so services can choose per call whether to run in a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Avatars(db dbx.DBTX) avatars.Repository
}
