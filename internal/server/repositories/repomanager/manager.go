package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkovalev/chatvault/internal/dbx"
	"github.com/mkovalev/chatvault/internal/server/repositories/apikeys"
	"github.com/mkovalev/chatvault/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a concrete handle, which
// may be a *sql.DB or a transaction from dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	APIKeys(db dbx.DBTX) apikeys.Repository
}
