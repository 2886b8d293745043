// util/http_util.go
package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/blobsas/logging"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondWithError aborts with an ErrorResponse. Server failures are logged
// at error level, client errors such as denials and misses at warn.
func RespondWithError(c *gin.Context, status int, code, message string, err error) {
	log := logger.Warn
	if status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log(message,
		zap.Error(err),
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("requestID", GetRequestID(c)))
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(c),
	})
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
