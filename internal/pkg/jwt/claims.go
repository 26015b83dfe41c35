// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by panel sessions.
type Claims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role"` // seller | super_admin
	jwt.RegisteredClaims
}

// IsSuperAdmin checks if the session belongs to a super admin.
func (c *Claims) IsSuperAdmin() bool {
	return c.Role == "super_admin"
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
