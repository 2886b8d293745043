package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dev-mohitbeniwal/blobsas/controller"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/middleware"
	pdp_model "github.com/dev-mohitbeniwal/blobsas/pdp/model"
	"github.com/dev-mohitbeniwal/blobsas/router"
	audit_mock "github.com/dev-mohitbeniwal/blobsas/test/mock"
	mock_service "github.com/dev-mohitbeniwal/blobsas/test/service_mock"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	access := mock_service.NewMockIAccessService(ctrl)
	blobs := mock_service.NewMockIBlobService(ctrl)

	access.EXPECT().
		Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *pdp_model.AccessRequest) (*pdp_model.AccessDecision, error) {
			assert.NotEmpty(t, req.RequestID)
			return &pdp_model.AccessDecision{Effect: pdp_model.EffectDeny, Code: pdp_model.CodeAuthenticationFailed}, nil
		})

	r := router.SetupRouter(&controller.Controllers{Blob: controller.NewBlobController(blobs, access)}, router.Options{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/sascontainer/blob.txt", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestSetupAdminRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prom := metrics.NewProm("blobsas")
	prom.IncDecision("read", "allow", "")

	healthy := router.SetupAdminRouter(prom.Handler(), map[string]router.HealthCheck{
		"redis": func(context.Context) error { return nil },
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	healthy.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blobsas_access_decisions_total")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/healthz", nil)
	healthy.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	unhealthy := router.SetupAdminRouter(prom.Handler(), map[string]router.HealthCheck{
		"neo4j": func(context.Context) error { return errors.New("connection refused") },
	}, nil)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/healthz", nil)
	unhealthy.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/audit", nil)
	healthy.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	withAudit := router.SetupAdminRouter(prom.Handler(), nil, controller.NewAuditController(&audit_mock.MockAuditService{}))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/audit?from=yesterday", nil)
	withAudit.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
