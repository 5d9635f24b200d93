// Package store implements the relational storage engine: a transactional
// SQL engine with prepared statements, parameter binding, single-row
// plucking, recursive CTE support, temp tables, and an in-transaction flag.
// It is the Mirror's only point of contact with SQLite: open once, hold the
// *sql.DB, scope every write in a transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// Store owns a single SQLite connection for the lifetime of a Mirror. The
// connection is exclusively owned: no other writer may touch the database
// concurrently.
type Store struct {
	db *sql.DB

	// inTx tracks whether a transaction opened by WithTx is currently live.
	// database/sql gives no native introspection for this, and reentrant
	// use of WithTx must fail fast rather than deadlock or nest silently.
	inTx atomic.Bool
}

// Open opens a SQLite database at path using the pure-Go modernc.org/sqlite
// driver (no CGo required).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// A single connection: SQLite's write-serialization means a pool buys
	// nothing here and would only invite concurrent-writer contention.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for read-only queries outside of a
// transaction (e.g. the planner's outdated-entity search).
func (s *Store) DB() *sql.DB { return s.db }

// Exec runs a statement outside of any transaction context.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// QueryRow runs a single-row query outside of any transaction context.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// Query runs a multi-row query outside of any transaction context.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// InTransaction reports whether a WithTx call is currently active.
func (s *Store) InTransaction() bool {
	return s.inTx.Load()
}
