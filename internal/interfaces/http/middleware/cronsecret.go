// Package middleware contains gin middleware.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diglink-inc/diglink/internal/shared/utils"
)

// cronSecretHeader carries the shared secret for scheduler-triggered routes.
const cronSecretHeader = "X-Cron-Secret"

// CronSecret guards scheduler routes with a shared secret header. An empty
// configured secret disables the routes entirely rather than leaving them
// open.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "cron endpoints are disabled")
			c.Abort()
			return
		}
		provided := c.GetHeader(cronSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid cron secret")
			c.Abort()
			return
		}
		c.Next()
	}
}
