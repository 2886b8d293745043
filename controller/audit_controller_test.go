package controller_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/controller"
	audit_mock "github.com/dev-mohitbeniwal/blobsas/test/mock"
)

func setupAuditRouter(t *testing.T) (*gin.Engine, *audit_mock.MockAuditService) {
	gin.SetMode(gin.TestMode)
	auditService := &audit_mock.MockAuditService{}
	t.Cleanup(func() { auditService.AssertExpectations(t) })

	router := gin.New()
	controller.NewAuditController(auditService).RegisterRoutes(router.Group("/"))
	return router, auditService
}

func TestAuditController(t *testing.T) {
	t.Run("ExplicitWindow", func(t *testing.T) {
		router, auditService := setupAuditRouter(t)
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		auditService.On("QueryLogs", mock.Anything,
			mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal), "sas", "sascontainer").
			Return([]audit.AuditLog{{Principal: "sas", ResourceID: "sascontainer", Code: "AuthorizationPermissionMismatch"}}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit?from=2024-01-01T00:00:00Z&to=2024-01-02T00:00:00Z&principal=sas&resource=sascontainer", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var logs []audit.AuditLog
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
		require.Len(t, logs, 1)
		assert.Equal(t, "AuthorizationPermissionMismatch", logs[0].Code)
	})

	t.Run("DefaultWindow", func(t *testing.T) {
		router, auditService := setupAuditRouter(t)
		auditService.On("QueryLogs", mock.Anything,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "", "").
			Run(func(args mock.Arguments) {
				from, to := args.Get(1).(time.Time), args.Get(2).(time.Time)
				assert.Equal(t, controller.DefaultAuditWindow, to.Sub(from))
			}).
			Return([]audit.AuditLog(nil), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("InvalidTime", func(t *testing.T) {
		router, _ := setupAuditRouter(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit?from=yesterday", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, controller.CodeInvalidQueryParameter, decodeError(t, w).Code)
	})

	t.Run("InvertedWindow", func(t *testing.T) {
		router, _ := setupAuditRouter(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit?from=2024-01-02T00:00:00Z&to=2024-01-01T00:00:00Z", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RepositoryFailure", func(t *testing.T) {
		router, auditService := setupAuditRouter(t)
		auditService.On("QueryLogs", mock.Anything, mock.Anything, mock.Anything, "", "").
			Return([]audit.AuditLog(nil), errors.New("index unavailable"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, controller.CodeInternalError, decodeError(t, w).Code)
	})
}
