// Package transaction provides the units of work used by the write paths.
//
// PostgreSQL-backed adapters run inside a go-transaction-manager transaction and
// resolve the active *gorm.DB through DB. In-memory adapters join an InMemory
// transaction and register undo steps with OnRollback.
package transaction

import (
	"context"
	"errors"

	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"gorm.io/gorm"
)

// Manager runs fn inside a single unit of work. A non-nil error from fn rolls
// back every change made through ctx.
type Manager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewGorm builds a transaction manager over the given connection.
func NewGorm(db *gorm.DB) (*manager.Manager, error) {
	if db == nil {
		return nil, errors.New("gorm transaction manager requires a database handle")
	}
	return manager.New(trmgorm.NewDefaultFactory(db))
}

// DB returns the transaction bound to ctx, or db when ctx carries none.
func DB(ctx context.Context, db *gorm.DB) *gorm.DB {
	return trmgorm.DefaultCtxGetter.DefaultTrOrDB(ctx, db).WithContext(ctx)
}

var _ Manager = (*manager.Manager)(nil)
