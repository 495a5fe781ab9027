package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX handle, which is
// either the pool returned by a Transactor's Conn or a transaction handed to
// a TxFunc.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
