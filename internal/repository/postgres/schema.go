package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTemplate is applied with the table prefix as %[1]s.
// document_codes.position keeps the extraction order of a document's codes.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]sdocuments (
    id          UUID PRIMARY KEY,
    tenant_id   VARCHAR(64)  NOT NULL,
    doc_type    TEXT         NOT NULL DEFAULT '',
    title       VARCHAR(255) NOT NULL DEFAULT '',
    doc_date    TEXT         NOT NULL DEFAULT '',
    source_ref  TEXT,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_%[1]sdocuments_tenant
    ON %[1]sdocuments (tenant_id, created_at, id);

CREATE TABLE IF NOT EXISTS %[1]sdocument_codes (
    document_id UUID         NOT NULL REFERENCES %[1]sdocuments (id) ON DELETE CASCADE,
    tenant_id   VARCHAR(64)  NOT NULL,
    position    INT          NOT NULL,
    code_value  VARCHAR(128) NOT NULL,
    code_key    VARCHAR(128) NOT NULL,
    PRIMARY KEY (document_id, position),
    UNIQUE (document_id, code_key)
);

CREATE INDEX IF NOT EXISTS idx_%[1]sdocument_codes_key
    ON %[1]sdocument_codes (tenant_id, code_key);

CREATE INDEX IF NOT EXISTS idx_%[1]sdocument_codes_value
    ON %[1]sdocument_codes (tenant_id, code_value text_pattern_ops);
`

// ApplySchema creates the archive tables if they do not exist
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, tablePrefix string) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(schemaTemplate, tablePrefix)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const dropTemplate = `
DROP TABLE IF EXISTS %[1]sdocument_codes CASCADE;
DROP TABLE IF EXISTS %[1]sdocuments CASCADE;
`

// DropSchema removes the archive tables with the given prefix and all their data
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tablePrefix string) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(dropTemplate, tablePrefix)); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
