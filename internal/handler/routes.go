package handler

import "net/http"

// RegisterRoutes mounts the archive API on mux (Go 1.22+ patterns)
func RegisterRoutes(mux *http.ServeMux, search *SearchHandler, documents *DocumentHandler) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Search routes
	mux.HandleFunc("POST /api/search", search.Search)
	mux.HandleFunc("GET /api/codes/suggest", search.Suggest) // Must stay distinct from {code} routes
	mux.HandleFunc("GET /api/codes/{code}/documents", search.FindByCode)
	mux.HandleFunc("POST /api/cache/invalidate", search.InvalidateCache)

	// Document routes
	mux.HandleFunc("POST /api/documents", documents.CreateDocument)
	mux.HandleFunc("PUT /api/documents/{id}", documents.SaveDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", documents.DeleteDocument)
}
