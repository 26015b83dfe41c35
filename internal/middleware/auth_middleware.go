// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"checkout-service/internal/domain/admin"
	"checkout-service/internal/pkg/jwt"
	"checkout-service/internal/pkg/response"
	"checkout-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer token and puts the claims on the context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireSuperAdmin gates platform-wide routes. MUST be used after Auth().
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSuperAdmin(c) {
			response.Error(c, http.StatusForbidden, "insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// SuperAdminOnly returns the Auth + RequireSuperAdmin chain.
func (m *AuthMiddleware) SuperAdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireSuperAdmin(),
	}
}

// extractToken extracts the Bearer token from the Authorization header, with
// a query-param fallback for websocket upgrades where headers can't be set.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// GetAdminID gets the authenticated account id from context.
func GetAdminID(c *gin.Context) (int64, bool) {
	adminID, exists := c.Get("admin_id")
	if !exists {
		return 0, false
	}

	id, ok := adminID.(int64)
	return id, ok
}

// GetClaims gets the full token claims from context.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		return nil, false
	}

	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// IsSuperAdmin checks the authenticated role.
func IsSuperAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	if !exists {
		return false
	}

	r, ok := role.(string)
	return ok && r == string(admin.RoleSuperAdmin)
}
