package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; index+1 is the schema version
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE rsvps (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    attending BOOLEAN NOT NULL,
    num_guests INTEGER NOT NULL DEFAULT 0,
    guests TEXT,
    menu TEXT NOT NULL DEFAULT '',
    allergies TEXT NOT NULL DEFAULT '',
    has_children BOOLEAN NOT NULL DEFAULT 0,
    num_children INTEGER NOT NULL DEFAULT 0,
    special_needs TEXT NOT NULL DEFAULT '',
    comments TEXT NOT NULL DEFAULT '',
    edit_token TEXT NOT NULL UNIQUE,
    token_expires_at DATETIME NOT NULL,
    ip_hash TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    deleted_at DATETIME
)`,
		`CREATE INDEX idx_rsvps_email ON rsvps(email)`,
		`CREATE INDEX idx_rsvps_created_at ON rsvps(created_at)`,
		`CREATE TABLE guestbook_entries (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    message TEXT NOT NULL,
    approved BOOLEAN NOT NULL DEFAULT 0,
    approved_at DATETIME,
    approved_by TEXT,
    ip_hash TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    deleted_at DATETIME
)`,
		`CREATE INDEX idx_guestbook_approved ON guestbook_entries(approved, created_at)`,
		`CREATE TABLE faqs (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    deleted_at DATETIME
)`,
		`CREATE TABLE settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL
)`,
		`CREATE TABLE users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'admin',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,
	},
}

// SchemaVersion is the version a fully migrated database reports
func SchemaVersion() int {
	return len(migrations)
}

// Migrate brings the schema up to date. Each pending version runs in its own
// transaction together with its schema_version row.
func Migrate(ctx context.Context, db *DB) error {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migrations[i] {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", version, err)
				}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// CurrentVersion returns the applied schema version, 0 for an empty database
func CurrentVersion(ctx context.Context, db *DB) (int, error) {
	var tableExists bool
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if !tableExists {
		return 0, nil
	}

	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return int(version.Int64), nil
}

// Open opens path and migrates it
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
