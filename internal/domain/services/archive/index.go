package archive

import (
	"context"

	models "codearchive/internal/domain/models/archive"
)

// IndexService writes extracted documents into the archive and keeps the
// search cache coherent with those writes.
type IndexService interface {
	// SaveDocument creates or replaces a document and its full code list.
	SaveDocument(ctx context.Context, req *SaveDocumentRequest) (*models.Document, error)

	// RemoveDocument deletes a document and its codes
	RemoveDocument(ctx context.Context, tenantID, documentID string) error
}

// SaveDocumentRequest mirrors the output of text extraction for one file.
type SaveDocumentRequest struct {
	TenantID  string   `json:"-"`            // Set by handler from auth context
	ID        string   `json:"id,omitempty"` // Empty on create
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	SourceRef *string  `json:"source_ref,omitempty"`
	Codes     []string `json:"codes"`
}
