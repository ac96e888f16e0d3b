package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager implements shared.TransactionManager. The opened
// transaction rides on the context; repositories constructed over the same
// *gorm.DB join it through dbFrom, so a service's unit of work commits or
// rolls back as one.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Execute runs fn inside one database transaction
func (m *GormTransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	// nested Execute joins the outer transaction instead of opening another
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// dbFrom returns the context's transaction when one is open, the base
// handle otherwise. Every repository query goes through it.
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return base.WithContext(ctx)
}
