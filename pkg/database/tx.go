package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// Default transaction bounds. Acquisition waits on the connection pool,
// execution covers the full transaction body.
const (
	DefaultAcquireTimeout = 10 * time.Second
	DefaultExecTimeout    = 30 * time.Second
)

// WithTx returns a context carrying an open transaction handle.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom extracts the transaction handle from the context, falling back to
// the base connection. Repositories resolve their session through this so
// that every read and write issued inside TxManager.Do shares one
// transaction.
func TxFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// TxManager runs a function inside a single database transaction with a
// bounded execution timeout. Nested calls join the transaction already
// carried by the context instead of opening a savepoint.
type TxManager struct {
	db          *gorm.DB
	execTimeout time.Duration
}

// NewTxManager creates a transaction manager over the given connection.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db, execTimeout: DefaultExecTimeout}
}

// Do executes fn atomically: every write performed through the context's
// transaction handle commits together or not at all.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		// Already inside a transaction scope; join it.
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, m.execTimeout)
	defer cancel()

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
