// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/db"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

// CodeRateLimited is the error code of a throttled request.
const CodeRateLimited = "ServerBusy"

// RateLimiter throttles each client IP to limit requests per window.
func RateLimiter(limiter *db.RateLimiter, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, limit, per)
		if err != nil {
			util.RespondWithError(c, http.StatusInternalServerError, "InternalError", "Rate limiting failed", err)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			util.RespondWithError(c, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
