package auth

import "codearchive/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only needs claims; how keys are fetched stays here.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, has an
	// invalid signature, or carries no tenant.
	VerifyToken(tokenString string) (*models.TenantClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
