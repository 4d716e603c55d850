// Package store implements the two record stores over a SQLite
// database: the inventory table and the salesman ledger. Stores are
// built over a DBTX so the reconciliation engine can bind them to a
// transaction for the duration of one command.
package store

import (
	"context"
	"database/sql"
)

// sqliteTimeLayout is how the driver hands back DATETIME columns
// populated by CURRENT_TIMESTAMP.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
