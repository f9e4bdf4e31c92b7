package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
	archiveRepo "codearchive/internal/domain/repositories/archive"
)

var _ archiveRepo.DocumentStore = (*DocumentRepository)(nil)

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// DocumentRepository implements archive.DocumentStore on SQLite
type DocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a repository on an opened database
func NewDocumentRepository(db *sql.DB, logger *slog.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// selectWithCodes mirrors the Postgres query. Documents come back in
// insertion order (rowid survives upserts), codes in extraction order.
const selectWithCodes = `
	SELECT d.id, d.tenant_id, d.doc_type, d.title, d.doc_date, d.source_ref,
	       c.code_value, c.code_key
	FROM documents d
	JOIN document_codes c ON c.document_id = d.id
	WHERE d.tenant_id = ?
	  AND d.id IN (
	      SELECT document_id FROM document_codes
	      WHERE tenant_id = ? AND %s
	  )
	ORDER BY d.rowid, c.position
`

// FetchCandidates returns documents owning any of keys
func (r *DocumentRepository) FetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error) {
	if len(keys) == 0 {
		return []models.Document{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := fmt.Sprintf(selectWithCodes, "code_key IN ("+placeholders+")")

	args := make([]interface{}, 0, len(keys)+2)
	args = append(args, tenantID, tenantID)
	for _, k := range keys {
		args = append(args, k)
	}

	docs, err := r.queryDocuments(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	return docs, nil
}

// FindByKey returns documents owning a code with the given matching key
func (r *DocumentRepository) FindByKey(ctx context.Context, tenantID, key string) ([]models.Document, error) {
	query := fmt.Sprintf(selectWithCodes, "code_key = ?")
	docs, err := r.queryDocuments(ctx, query, tenantID, tenantID, key)
	if err != nil {
		return nil, fmt.Errorf("find by code: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var doc models.Document
		var code models.Code
		if err := rows.Scan(
			&doc.ID,
			&doc.TenantID,
			&doc.Type,
			&doc.Title,
			&doc.Date,
			&doc.SourceRef,
			&code.Value,
			&code.Key,
		); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = models.AppendCodeRow(docs, doc, &code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// DistinctCodes returns distinct code values with a case-sensitive prefix.
// LIKE is case-insensitive in SQLite, so the prefix is compared with substr.
func (r *DocumentRepository) DistinctCodes(ctx context.Context, tenantID, prefix string, limit int) ([]string, error) {
	const query = `
		SELECT DISTINCT code_value
		FROM document_codes
		WHERE tenant_id = ? AND substr(code_value, 1, length(?)) = ?
		ORDER BY code_value
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, prefix, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("distinct codes: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct codes: %w", err)
	}
	return codes, nil
}

// Save upserts the document and replaces its codes in one transaction
func (r *DocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.saveWithQuerier(ctx, tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Debug("document saved",
		"id", doc.ID,
		"tenant_id", doc.TenantID,
		"codes", len(doc.Codes),
	)
	return nil
}

func (r *DocumentRepository) saveWithQuerier(ctx context.Context, q querier, doc *models.Document) error {
	now := time.Now().UTC()

	// The WHERE on the update stops a tenant from overwriting another
	// tenant's document; that case changes no rows.
	result, err := q.ExecContext(ctx, `
		INSERT INTO documents (id, tenant_id, doc_type, title, doc_date, source_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE
		SET doc_type = excluded.doc_type,
		    title = excluded.title,
		    doc_date = excluded.doc_date,
		    source_ref = excluded.source_ref,
		    updated_at = excluded.updated_at
		WHERE documents.tenant_id = excluded.tenant_id
	`, doc.ID, doc.TenantID, doc.Type, doc.Title, doc.Date, doc.SourceRef, now, now)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM document_codes WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("delete codes: %w", err)
	}

	for i, c := range doc.Codes {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO document_codes (document_id, tenant_id, position, code_value, code_key)
			VALUES (?, ?, ?, ?, ?)
		`, doc.ID, doc.TenantID, i, c.Value, c.Key); err != nil {
			return fmt.Errorf("insert code %q: %w", c.Value, err)
		}
	}

	return nil
}

// Delete removes a document and its codes
func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
