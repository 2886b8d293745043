// controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

// DefaultAuditWindow is searched when the query names no from time.
const DefaultAuditWindow = time.Hour

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", ac.QueryLogs)
}

// QueryLogs searches audit records in [from, to], both RFC3339, optionally
// narrowed by principal and resource.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	to := time.Now().UTC()
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "to must be an RFC3339 time", err)
			return
		}
		to = parsed
	}
	from := to.Add(-DefaultAuditWindow)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "from must be an RFC3339 time", err)
			return
		}
		from = parsed
	}
	if from.After(to) {
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "from must not be after to", nil)
		return
	}

	logs, err := ac.auditService.QueryLogs(c.Request.Context(), from, to, c.Query("principal"), c.Query("resource"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, "Failed to query audit logs", err)
		return
	}
	if logs == nil {
		logs = []audit.AuditLog{}
	}
	c.JSON(http.StatusOK, logs)
}
