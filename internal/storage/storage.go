// Package storage provides the SQLite-backed keyed store for the pipeline's
// persisted collections: executed decisions and impact updates, each with
// its own monotonic id counter.
//
// The store follows a single-writer model: every write runs under one
// process-wide mutex, and a counter increment plus its insert are one
// transaction so concurrent callers can never observe duplicate ids.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle plus the single-writer lock.
type DB struct {
	db     *sql.DB
	logger *slog.Logger

	// writeMu serializes all mutations. SQLite tolerates one writer at a
	// time; the collections here are small enough that a coarse lock is
	// simpler than busy-retry handling.
	writeMu sync.Mutex
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" only in single-connection tests.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY between the pool's conns.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	db := &DB{db: conn, logger: logger}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS executed_decisions (
	id                INTEGER PRIMARY KEY,
	decision_id       TEXT NOT NULL,
	story_id          TEXT NOT NULL DEFAULT '',
	user_id           TEXT NOT NULL,
	role              TEXT NOT NULL,
	executed_at       TEXT NOT NULL,
	selected_strategy TEXT NOT NULL DEFAULT '',
	expected_outcome  TEXT NOT NULL DEFAULT '{}',
	agent_id          TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'executed',
	category          TEXT NOT NULL DEFAULT '',
	title             TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_executed_decisions_user_role
	ON executed_decisions (user_id, role);

CREATE TABLE IF NOT EXISTS impact_updates (
	id                    INTEGER PRIMARY KEY,
	decision_id           TEXT NOT NULL,
	executed_decision_id  INTEGER NOT NULL UNIQUE,
	generated_at          TEXT NOT NULL,
	days_elapsed          INTEGER NOT NULL,
	expected_outcome      TEXT NOT NULL DEFAULT '{}',
	actual_outcome        TEXT NOT NULL DEFAULT '{}',
	comparison            TEXT NOT NULL DEFAULT '{}',
	read                  INTEGER NOT NULL DEFAULT 0,
	user_id               TEXT NOT NULL,
	role                  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_impact_updates_user_role
	ON impact_updates (user_id, role);
`

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// nextID increments and returns the named counter inside tx.
func nextID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`, name); err != nil {
		return 0, fmt.Errorf("storage: bump counter %s: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("storage: read counter %s: %w", name, err)
	}
	return id, nil
}
