package archive

import (
	"context"

	models "codearchive/internal/domain/models/archive"
)

// CodeSearchService is the search boundary of the archive.
type CodeSearchService interface {
	// Search picks documents greedily so that together they cover as many of
	// codes as possible. Blank input yields an empty result, not an error.
	// Only repository failures are returned (as *domain.RepositoryError),
	// besides context cancellation.
	Search(ctx context.Context, tenantID string, codes []string) (*models.SearchResult, error)

	// SearchText extracts codes from pasted text (first column of each line)
	// and runs Search on them.
	SearchText(ctx context.Context, tenantID, raw string) (*models.SearchResult, error)

	// FindByCode returns every document owning code, newest first.
	FindByCode(ctx context.Context, tenantID, code string) ([]models.CodeMatch, error)

	// Suggest returns up to limit distinct codes starting with prefix.
	Suggest(ctx context.Context, tenantID, prefix string, limit int) ([]string, error)

	// InvalidateTenant drops cached results for the tenant. Called whenever a
	// document of the tenant is saved or removed.
	InvalidateTenant(ctx context.Context, tenantID string) error
}

// SearchRequest is the HTTP/CLI body for a coverage search. Exactly one of
// Codes or Text is normally set; when both are, Codes wins.
type SearchRequest struct {
	Codes []string `json:"codes,omitempty"`
	Text  string   `json:"text,omitempty"` // Raw multi-line paste
}
