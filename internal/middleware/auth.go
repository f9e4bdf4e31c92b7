package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"codearchive/internal/auth"
	"codearchive/internal/config"
	"codearchive/internal/httputil"
)

// publicPaths skip authentication
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware validates the bearer token and puts the caller's user and
// tenant into the request context.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// CORS pre-flight and health checks carry no token
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithTenantID(r, claims.GetTenantID())
			next.ServeHTTP(w, r)
		})
	}
}

// DevTenantMiddleware takes the tenant from the X-Tenant-ID header. It is
// only installed when no JWKS URL is configured outside production.
func DevTenantMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	logger.Warn("DEV MODE: tenant taken from X-Tenant-ID header, JWT auth disabled")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
			if tenantID == "" || len(tenantID) > config.MaxTenantIDLength {
				httputil.RespondError(w, http.StatusUnauthorized, "X-Tenant-ID header required")
				return
			}

			next.ServeHTTP(w, httputil.WithTenantID(r, tenantID))
		})
	}
}
