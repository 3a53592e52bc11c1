// Package index provides the SQLite mirror of content item frontmatter,
// with optional FTS5 full-text search. The index is derived from the
// library files and can be rebuilt from them at any time.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	content_type  TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	author        TEXT NOT NULL DEFAULT '',
	client        TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	created_date  TEXT NOT NULL DEFAULT '',
	updated_date  TEXT NOT NULL DEFAULT '',
	publish_date  TEXT NOT NULL DEFAULT '',
	categories    TEXT NOT NULL DEFAULT '[]',
	tags          TEXT NOT NULL DEFAULT '[]',
	custom_fields TEXT NOT NULL DEFAULT '{}',
	body          TEXT NOT NULL DEFAULT '',
	checksum      TEXT NOT NULL DEFAULT '',
	indexed_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_content_type ON items(content_type);
CREATE INDEX IF NOT EXISTS idx_items_status       ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_client       ON items(client);
CREATE INDEX IF NOT EXISTS idx_items_created_date ON items(created_date);
CREATE INDEX IF NOT EXISTS idx_items_publish_date ON items(publish_date);
`

// DB wraps a sql.DB with index-specific operations.
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
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
