// Package db carries the transaction plumbing shared by repositories
// and use cases.
package db

import (
	"context"

	"gorm.io/gorm"
)

// txKey marks the active transaction in a context.
type txKey struct{}

// TransactionManager runs functions inside one gorm transaction. The
// metering path uses it to hold a row lock across the ledger
// read-modify-write.
type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// RunInTransaction runs fn inside a transaction and hands it a context
// carrying the tx handle, so repositories called through that context
// join the same transaction. fn returning an error rolls back,
// otherwise the transaction commits.
func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// GetTx returns the transaction bound to the context, or the base
// handle when no transaction is running.
func (tm *TransactionManager) GetTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return tm.db.WithContext(ctx)
}

// GetTxFromContext is the repository-side accessor: it picks up the
// transaction placed in the context by RunInTransaction, falling back
// to the given handle for calls made outside any transaction.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}
