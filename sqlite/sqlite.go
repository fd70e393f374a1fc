// Package sqlite provides SQLite-based storage implementations for kaveri
// services: the location hierarchy store, the append-only result store,
// and crawl metadata.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// A full crawl writes tens of thousands of rows; WAL keeps the store
	// readable while the crawler is writing.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS districts (
			district_code INTEGER PRIMARY KEY,
			name_en TEXT NOT NULL,
			name_kn TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS talukas (
			taluk_code INTEGER PRIMARY KEY,
			name_en TEXT NOT NULL,
			name_kn TEXT NOT NULL DEFAULT '',
			district_code INTEGER NOT NULL REFERENCES districts(district_code)
		);

		CREATE TABLE IF NOT EXISTS hoblis (
			hobli_code INTEGER PRIMARY KEY,
			name_en TEXT NOT NULL,
			name_kn TEXT NOT NULL DEFAULT '',
			taluk_code INTEGER NOT NULL REFERENCES talukas(taluk_code)
		);

		CREATE TABLE IF NOT EXISTS villages (
			village_code INTEGER NOT NULL,
			name_en TEXT NOT NULL,
			name_kn TEXT NOT NULL DEFAULT '',
			hobli_code INTEGER NOT NULL REFERENCES hoblis(hobli_code),
			is_urban INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (village_code, hobli_code)
		);

		CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			village_code INTEGER NOT NULL,
			village_name TEXT NOT NULL DEFAULT '',
			party_name TEXT NOT NULL DEFAULT '',
			from_date TEXT NOT NULL DEFAULT '',
			to_date TEXT NOT NULL DEFAULT '',
			fields TEXT NOT NULL DEFAULT '[]',
			position INTEGER NOT NULL DEFAULT 0,
			fields_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_talukas_district ON talukas(district_code);
		CREATE INDEX IF NOT EXISTS idx_hoblis_taluk ON hoblis(taluk_code);
		CREATE INDEX IF NOT EXISTS idx_villages_hobli ON villages(hobli_code);
		CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
