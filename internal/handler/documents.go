package handler

import (
	"log/slog"
	"net/http"

	archiveSvc "codearchive/internal/domain/services/archive"
	"codearchive/internal/httputil"
)

// maxDocumentBodyBytes bounds a single document payload
const maxDocumentBodyBytes = 1 << 20

// DocumentHandler handles document indexing HTTP requests
type DocumentHandler struct {
	indexService archiveSvc.IndexService
	logger       *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(indexService archiveSvc.IndexService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		indexService: indexService,
		logger:       logger,
	}
}

// CreateDocument indexes a new document with a generated id
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

// SaveDocument creates or replaces the document with the given id
// PUT /api/documents/{id}
func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}
	h.save(w, r, id, http.StatusOK)
}

func (h *DocumentHandler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req archiveSvc.SaveDocumentRequest
	if err := httputil.ParseJSON(w, r, &req, maxDocumentBodyBytes); err != nil {
		httputil.RespondParseError(w, err)
		return
	}
	// Path and auth context win over the body
	req.TenantID = tenantID
	req.ID = id

	doc, err := h.indexService.SaveDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, status, doc)
}

// DeleteDocument removes a document and its codes
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	if err := h.indexService.RemoveDocument(r.Context(), tenantID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
