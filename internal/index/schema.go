// Package index provides the SQLite-backed selection cache and keeps it in
// step with the job documents of the inbox.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS selections (
	key        TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	variables  INTEGER NOT NULL DEFAULT 0,
	arcs       INTEGER NOT NULL DEFAULT 0,
	roots      INTEGER NOT NULL DEFAULT 0,
	selected   INTEGER NOT NULL DEFAULT 0,
	payload    BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sources (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL,
	key        TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_selections_created ON selections(created_at);
CREATE INDEX IF NOT EXISTS idx_sources_key ON sources(key);
`

// DB wraps a sql.DB with cache-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks the database connection.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
