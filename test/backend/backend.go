// Package backend runs the storage API in-process on miniredis for tests of
// the client, issuer and consumer.
package backend

import (
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/config"
	"github.com/dev-mohitbeniwal/blobsas/controller"
	"github.com/dev-mohitbeniwal/blobsas/dao"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/router"
	"github.com/dev-mohitbeniwal/blobsas/sas"
	"github.com/dev-mohitbeniwal/blobsas/service"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

type Backend struct {
	Server     *httptest.Server
	Redis      *miniredis.Miniredis
	Config     *config.Configuration
	Credential *sas.SharedKeyCredential
	Metrics    *metrics.Prom
}

// Start serves a fresh backend until the test ends. Options adjust the
// default configuration before services are built.
func Start(t testing.TB, options ...func(*config.Configuration)) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	for _, option := range options {
		option(cfg)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := util.NewEventBus()
	prom := metrics.NewProm("blobsas")
	services, err := service.InitializeServices(cfg, client, dao.NewRedisPolicyStore(client), audit.NewService(audit.NoopRepository{}), prom, bus)
	if err != nil {
		t.Fatalf("initialize services: %v", err)
	}

	server := httptest.NewServer(router.SetupRouter(controller.InitializeControllers(services), router.Options{Metrics: prom}))
	t.Cleanup(func() {
		server.Close()
		bus.Wait()
	})

	cfg.Storage.Endpoint = server.URL
	cred, err := sas.NewSharedKeyCredential(cfg.Storage.AccountName, cfg.Storage.AccountKey)
	if err != nil {
		t.Fatalf("credential: %v", err)
	}
	return &Backend{Server: server, Redis: mr, Config: cfg, Credential: cred, Metrics: prom}
}

// WithDeleteRequires sets the permission a SAS needs to delete a blob.
func WithDeleteRequires(letters string) func(*config.Configuration) {
	return func(cfg *config.Configuration) {
		cfg.Storage.DeleteRequires = letters
	}
}
