// internal/middleware/cron_middleware.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"checkout-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CronAuth guards the scheduled-job endpoints with a shared secret sent in
// the X-Cron-Secret header. Comparison is constant-time.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.Error(c, http.StatusServiceUnavailable, "cron endpoints are disabled", nil)
			return
		}

		provided := c.GetHeader("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			response.Error(c, http.StatusUnauthorized, "invalid cron secret", nil)
			return
		}

		c.Next()
	}
}
