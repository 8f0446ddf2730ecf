package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/zkpauth/internal/dbx"
	"github.com/dmitrijs2005/zkpauth/internal/server/repositories/registrations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Registrations(db dbx.DBTX) registrations.Repository
}
