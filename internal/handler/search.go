package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"codearchive/internal/config"
	models "codearchive/internal/domain/models/archive"
	archiveSvc "codearchive/internal/domain/services/archive"
	"codearchive/internal/httputil"
)

// SearchHandler handles code search HTTP requests
type SearchHandler struct {
	searchService archiveSvc.CodeSearchService
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService archiveSvc.CodeSearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search runs a coverage search over a code list or pasted text
// POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req archiveSvc.SearchRequest
	if err := httputil.ParseJSON(w, r, &req, config.MaxPasteBytes); err != nil {
		httputil.RespondParseError(w, err)
		return
	}

	start := time.Now()
	var result *models.SearchResult
	var err error
	if len(req.Codes) > 0 {
		result, err = h.searchService.Search(r.Context(), tenantID, req.Codes)
	} else {
		result, err = h.searchService.SearchText(r.Context(), tenantID, req.Text)
	}
	if err != nil {
		h.logger.Warn("search failed",
			"tenant_id", tenantID,
			"request_id", httputil.GetRequestID(r),
			"error", err,
		)
		handleError(w, err)
		return
	}

	h.logger.Debug("search served",
		"tenant_id", tenantID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.RespondJSON(w, http.StatusOK, result)
}

// FindByCode lists the documents owning one code
// GET /api/codes/{code}/documents
func (h *SearchHandler) FindByCode(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	matches, err := h.searchService.FindByCode(r.Context(), tenantID, r.PathValue("code"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, matches)
}

// Suggest autocompletes code prefixes
// GET /api/codes/suggest?prefix=AB&limit=10
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	codes, err := h.searchService.Suggest(r.Context(), tenantID, query.Get("prefix"), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, codes)
}

// InvalidateCache drops the caller's cached search results
// POST /api/cache/invalidate
func (h *SearchHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	if err := h.searchService.InvalidateTenant(r.Context(), tenantID); err != nil {
		h.logger.Error("cache invalidation failed", "tenant_id", tenantID, "error", err)
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
