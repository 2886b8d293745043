package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = Noop{}
	m.IncDecision("read", "deny", "AuthorizationPermissionMismatch")
	m.ObserveRequest("GET", "/:container", "200", 0.01)
}

func TestPromMetrics(t *testing.T) {
	p := NewProm("blobsas")
	p.IncDecision("read", "deny", "AuthorizationPermissionMismatch")
	p.IncDecision("read", "deny", "AuthorizationPermissionMismatch")
	p.IncDecision("list", "allow", "")
	p.ObserveRequest("GET", "/:container", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.decisions.WithLabelValues("read", "deny", "AuthorizationPermissionMismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.decisions.WithLabelValues("list", "allow", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("GET", "/:container", "200")))

	second := NewProm("blobsas")
	assert.Equal(t, 0.0, testutil.ToFloat64(second.decisions.WithLabelValues("list", "allow", "")))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "blobsas_access_decisions_total")
	assert.Contains(t, string(body), "blobsas_http_request_duration_seconds")
}
