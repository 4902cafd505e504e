// Package storage is the SQLite persistence layer: connection handling, transactions and queries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DefaultBusyTimeout is how long a statement waits on a locked database before failing.
const DefaultBusyTimeout = 5 * time.Second

// DB owns the single connection to the store.
type DB struct {
	conn    *sql.DB
	queries *Queries
	path    string
}

// DSN builds a modernc.org/sqlite data source name with foreign keys enforced on every connection.
func DSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	return path + "?" + q.Encode()
}

// Open connects to the database file at path. It does not migrate; see migrations.MigrateUp.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*DB, error) {
	conn, err := sql.Open("sqlite", DSN(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One handle, one logical operation at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{conn: conn, queries: New(conn), path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying handle for schema migrations.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path is the database file this handle was opened on.
func (db *DB) Path() string {
	return db.path
}

// Queries runs statements outside of any transaction.
func (db *DB) Queries() *Queries {
	return db.queries
}

// InTx runs fn inside a transaction. The transaction commits when fn returns nil and rolls
// back otherwise, so a failing step never leaves partial state behind.
func (db *DB) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(db.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
