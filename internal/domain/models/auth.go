package models

import "github.com/golang-jwt/jwt/v5"

// TenantClaims is the JWT claim set issued by the identity provider.
// The tenant is carried in app_metadata so end users cannot edit it.
type TenantClaims struct {
	jwt.RegisteredClaims                        // sub, iss, aud, exp, iat, ...
	Email                string                 `json:"email"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	AppMetadata          map[string]interface{} `json:"app_metadata"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *TenantClaims) GetUserID() string {
	return c.Subject
}

// GetTenantID returns app_metadata.tenant_id, or "" when absent.
func (c *TenantClaims) GetTenantID() string {
	if c.AppMetadata == nil {
		return ""
	}
	tenant, _ := c.AppMetadata["tenant_id"].(string)
	return tenant
}
