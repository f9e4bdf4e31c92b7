// Package sqlite implements the document store on an embedded SQLite
// database (pure Go driver). It backs single-node deployments, the
// archivectl tool, and repository tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    doc_type   TEXT NOT NULL DEFAULT '',
    title      TEXT NOT NULL DEFAULT '',
    doc_date   TEXT NOT NULL DEFAULT '',
    source_ref TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id);

CREATE TABLE IF NOT EXISTS document_codes (
    document_id TEXT    NOT NULL,
    tenant_id   TEXT    NOT NULL,
    position    INTEGER NOT NULL,
    code_value  TEXT    NOT NULL,
    code_key    TEXT    NOT NULL,
    PRIMARY KEY (document_id, position),
    UNIQUE (document_id, code_key),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_document_codes_key ON document_codes(tenant_id, code_key);
CREATE INDEX IF NOT EXISTS idx_document_codes_value ON document_codes(tenant_id, code_value);
`

const dropSchema = `
DROP TABLE IF EXISTS document_codes;
DROP TABLE IF EXISTS documents;
`

// Reset drops the archive tables and creates them again empty
func Reset(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropSchema); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the database at dsn and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite has a single writer, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}
