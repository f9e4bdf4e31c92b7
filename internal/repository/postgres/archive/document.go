package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
	"codearchive/internal/domain/repositories"
	archiveRepo "codearchive/internal/domain/repositories/archive"
	"codearchive/internal/repository/postgres"
)

// PostgresDocumentRepository implements archive.DocumentStore on PostgreSQL
type PostgresDocumentRepository struct {
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) archiveRepo.DocumentStore {
	return &PostgresDocumentRepository{
		pool:      config.Pool,
		tables:    config.Tables,
		txManager: postgres.NewTransactionManager(config.Pool, config.Logger),
		logger:    config.Logger,
	}
}

// selectWithCodes returns documents joined with their codes. The WHERE
// clause restricting which documents qualify is appended by the caller via
// the %s placeholder; $1 is always the tenant.
func (r *PostgresDocumentRepository) selectWithCodes(docFilter string) string {
	return fmt.Sprintf(`
		SELECT d.id, d.tenant_id, d.doc_type, d.title, d.doc_date, d.source_ref,
		       c.code_value, c.code_key
		FROM %[1]s d
		JOIN %[2]s c ON c.document_id = d.id
		WHERE d.tenant_id = $1
		  AND d.id IN (
		      SELECT document_id FROM %[2]s
		      WHERE tenant_id = $1 AND %[3]s
		  )
		ORDER BY d.created_at, d.id, c.position
	`, r.tables.Documents, r.tables.DocumentCodes, docFilter)
}

// FetchCandidates returns documents owning any of keys, in upload order
func (r *PostgresDocumentRepository) FetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error) {
	if len(keys) == 0 {
		return []models.Document{}, nil
	}
	docs, err := r.queryDocuments(ctx, r.selectWithCodes("code_key = ANY($2)"), tenantID, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	return docs, nil
}

// FindByKey returns documents owning a code with the given matching key
func (r *PostgresDocumentRepository) FindByKey(ctx context.Context, tenantID, key string) ([]models.Document, error) {
	docs, err := r.queryDocuments(ctx, r.selectWithCodes("code_key = $2"), tenantID, key)
	if err != nil {
		return nil, fmt.Errorf("find by code: %w", err)
	}
	return docs, nil
}

func (r *PostgresDocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
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

// DistinctCodes returns distinct code values with a case-sensitive prefix
func (r *PostgresDocumentRepository) DistinctCodes(ctx context.Context, tenantID, prefix string, limit int) ([]string, error) {
	// COLLATE "C" gives byte order, matching sort.Strings on the Go side
	query := fmt.Sprintf(`
		SELECT DISTINCT code_value COLLATE "C" AS code_value
		FROM %s
		WHERE tenant_id = $1 AND code_value LIKE $2 ESCAPE '\'
		ORDER BY code_value
		LIMIT $3
	`, r.tables.DocumentCodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID, escapeLike(prefix)+"%", limit)
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
func (r *PostgresDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)
		now := time.Now()

		// The WHERE on the update keeps a tenant from overwriting another
		// tenant's document; that case returns no row.
		upsert := fmt.Sprintf(`
			INSERT INTO %[1]s (id, tenant_id, doc_type, title, doc_date, source_ref, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			ON CONFLICT (id) DO UPDATE
			SET doc_type = EXCLUDED.doc_type,
			    title = EXCLUDED.title,
			    doc_date = EXCLUDED.doc_date,
			    source_ref = EXCLUDED.source_ref,
			    updated_at = EXCLUDED.updated_at
			WHERE %[1]s.tenant_id = EXCLUDED.tenant_id
			RETURNING id
		`, r.tables.Documents)

		var id string
		err := executor.QueryRow(txCtx, upsert,
			doc.ID, doc.TenantID, doc.Type, doc.Title, doc.Date, doc.SourceRef, now,
		).Scan(&id)
		if err != nil {
			if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
				return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
			}
			return fmt.Errorf("upsert document: %w", err)
		}

		deleteCodes := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.DocumentCodes)
		if _, err := executor.Exec(txCtx, deleteCodes, doc.ID); err != nil {
			return fmt.Errorf("delete codes: %w", err)
		}

		if len(doc.Codes) == 0 {
			return nil
		}

		positions := make([]int32, len(doc.Codes))
		values := make([]string, len(doc.Codes))
		keys := make([]string, len(doc.Codes))
		for i, c := range doc.Codes {
			positions[i] = int32(i)
			values[i] = c.Value
			keys[i] = c.Key
		}

		insertCodes := fmt.Sprintf(`
			INSERT INTO %s (document_id, tenant_id, position, code_value, code_key)
			SELECT $1, $2, t.position, t.code_value, t.code_key
			FROM unnest($3::int[], $4::text[], $5::text[]) AS t(position, code_value, code_key)
		`, r.tables.DocumentCodes)
		if _, err := executor.Exec(txCtx, insertCodes, doc.ID, doc.TenantID, positions, values, keys); err != nil {
			return fmt.Errorf("insert codes: %w", err)
		}

		r.logger.Debug("document saved",
			"id", doc.ID,
			"tenant_id", doc.TenantID,
			"codes", len(doc.Codes),
		)
		return nil
	})
}

// Delete removes a document; codes go with it via ON DELETE CASCADE
func (r *PostgresDocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND tenant_id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike escapes LIKE wildcards so prefix matches literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
