package archive

import (
	"context"

	models "codearchive/internal/domain/models/archive"
)

// DocumentRepository is the read side used by code search. Every method is
// tenant-scoped and safe for concurrent use.
type DocumentRepository interface {
	// FetchCandidates returns every document owning at least one code whose
	// matching key is in keys. Each document carries its full code list.
	// Documents come back in upload order, which is the order greedy
	// tie-breaks fall back to.
	FetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error)

	// FindByKey returns every document owning a code with this matching key.
	FindByKey(ctx context.Context, tenantID, key string) ([]models.Document, error)

	// DistinctCodes returns distinct code values starting with prefix
	// (case-sensitive), ascending, at most limit.
	DistinctCodes(ctx context.Context, tenantID, prefix string, limit int) ([]string, error)
}

// DocumentWriter persists documents and their codes.
type DocumentWriter interface {
	// Save upserts the document row and replaces its code list
	// (delete-then-reinsert). Assigns doc.ID when empty.
	Save(ctx context.Context, doc *models.Document) error

	// Delete removes a document and its codes.
	// Returns domain.ErrNotFound if the document does not exist.
	Delete(ctx context.Context, tenantID, id string) error
}

// DocumentStore combines the read and write sides.
type DocumentStore interface {
	DocumentRepository
	DocumentWriter
}
