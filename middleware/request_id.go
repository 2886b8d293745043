// middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/blobsas/util"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-ms-request-id"

// RequestID reuses the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(util.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
