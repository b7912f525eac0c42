// Package tx passes a SQL transaction through context so audit outbox writes
// can join the caller's transaction instead of opening their own.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx attaches the transaction to the context. A nil transaction leaves
// the context untouched, so callers can pass through unconditionally.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From returns the attached transaction, if any. Stores that find none fall
// back to their own connection.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
