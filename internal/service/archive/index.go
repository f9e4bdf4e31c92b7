package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codearchive/internal/config"
	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
	archiveRepo "codearchive/internal/domain/repositories/archive"
	archiveSvc "codearchive/internal/domain/services/archive"
)

// TenantInvalidator drops a tenant's cached results
type TenantInvalidator interface {
	InvalidateTenant(ctx context.Context, tenantID string) error
}

// indexService implements the IndexService interface
type indexService struct {
	writer      archiveRepo.DocumentWriter
	invalidator TenantInvalidator
	logger      *slog.Logger
}

// NewIndexService creates a new index service
func NewIndexService(
	writer archiveRepo.DocumentWriter,
	invalidator TenantInvalidator,
	logger *slog.Logger,
) archiveSvc.IndexService {
	return &indexService{
		writer:      writer,
		invalidator: invalidator,
		logger:      logger,
	}
}

// SaveDocument creates or replaces a document and its codes
func (s *indexService) SaveDocument(ctx context.Context, req *archiveSvc.SaveDocumentRequest) (*models.Document, error) {
	if err := s.validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := &models.Document{
		ID:        strings.TrimSpace(req.ID),
		TenantID:  req.TenantID,
		Type:      strings.TrimSpace(req.Type),
		Title:     strings.TrimSpace(req.Title),
		Date:      strings.TrimSpace(req.Date),
		SourceRef: req.SourceRef,
		Codes:     models.DedupeCodes(req.Codes),
	}

	if err := s.writer.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.invalidate(ctx, doc.TenantID)

	s.logger.Info("document indexed",
		"id", doc.ID,
		"tenant_id", doc.TenantID,
		"codes", len(doc.Codes),
	)

	return doc, nil
}

// RemoveDocument deletes a document and its codes
func (s *indexService) RemoveDocument(ctx context.Context, tenantID, documentID string) error {
	if err := validateTenant(tenantID); err != nil {
		return err
	}
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}

	if err := s.writer.Delete(ctx, tenantID, documentID); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)

	s.logger.Info("document removed",
		"id", documentID,
		"tenant_id", tenantID,
	)

	return nil
}

// invalidate busts the tenant cache after a write. The write already
// succeeded, so a failure here only leaves stale entries until their TTL.
func (s *indexService) invalidate(ctx context.Context, tenantID string) {
	if err := s.invalidator.InvalidateTenant(ctx, tenantID); err != nil {
		s.logger.Error("cache invalidation failed",
			"tenant_id", tenantID,
			"error", err,
		)
	}
}

// validateSaveRequest validates a document save request
func (s *indexService) validateSaveRequest(req *archiveSvc.SaveDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.TenantID,
			validation.Required,
			validation.Length(1, config.MaxTenantIDLength),
		),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxDocumentTitleLength),
		),
		validation.Field(&req.Codes,
			validation.Length(0, config.MaxRequestedCodes),
			validation.Each(validation.Length(0, config.MaxCodeLength)),
		),
	)
}
