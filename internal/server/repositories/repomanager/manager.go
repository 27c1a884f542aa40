package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/images"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/slots"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Slots(db dbx.DBTX) slots.Repository
	Images(db dbx.DBTX) images.Repository
}
