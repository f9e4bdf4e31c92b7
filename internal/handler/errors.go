package handler

import (
	"errors"
	"net/http"

	"codearchive/internal/domain"
	"codearchive/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrRepository):
		// Repository details stay in the logs
		httputil.RespondUnavailable(w, "search failed, try again")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireTenant returns the tenant set by the auth middleware, or writes a
// 401 and returns false.
func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := httputil.GetTenantID(r)
	if tenantID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "tenant not found in request context")
		return "", false
	}
	return tenantID, true
}
