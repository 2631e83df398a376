package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Session returns the transaction carried by ctx, or a fresh session on the pool.
// Every repository call goes through it so that work started inside Transaction
// stays on the same connection.
func (d *DB) Session(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.Conn.WithContext(ctx)
}

// Transaction runs fn inside one transaction. The transaction commits when fn returns nil
// and rolls back on error or panic. A call made while a transaction is already in ctx joins it.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}
	return d.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
