package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"codearchive/internal/config"
	"codearchive/internal/domain"
	"codearchive/internal/domain/models"
)

// TenantJWTVerifier implements JWTVerifier using keys from a JWKS endpoint.
type TenantJWTVerifier struct {
	keyFunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// keyfunc caches the keys and refreshes them based on HTTP cache headers.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return NewJWTVerifierWithKeyfunc(jwks.Keyfunc, logger), nil
}

// NewJWTVerifierWithKeyfunc creates a verifier with a caller-supplied key
// lookup, e.g. a static public key.
func NewJWTVerifierWithKeyfunc(keyFunc jwt.Keyfunc, logger *slog.Logger) *TenantJWTVerifier {
	return &TenantJWTVerifier{
		keyFunc: keyFunc,
		logger:  logger,
	}
}

// VerifyToken validates a JWT token and extracts tenant claims.
func (v *TenantJWTVerifier) VerifyToken(tokenString string) (*models.TenantClaims, error) {
	// Prevent algorithm confusion attacks - allow only RS256 or ES256
	token, err := jwt.ParseWithClaims(tokenString, &models.TenantClaims{}, v.keyFunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		v.logger.Debug("token invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.TenantClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous tokens
	if claims.Role != "authenticated" {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	tenantID := claims.GetTenantID()
	if tenantID == "" || len(tenantID) > config.MaxTenantIDLength {
		v.logger.Warn("token has no usable tenant", "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the JWT verifier.
// keyfunc v3 manages its own refresh goroutine, so this is a no-op kept for
// graceful shutdown symmetry.
func (v *TenantJWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
