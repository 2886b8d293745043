// router/router.go

package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/blobsas/config"
	"github.com/dev-mohitbeniwal/blobsas/controller"
	"github.com/dev-mohitbeniwal/blobsas/db"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/middleware"
)

// Options configures the storage API router. A nil Limiter disables rate
// limiting.
type Options struct {
	Limiter   *db.RateLimiter
	RateLimit config.RateLimitConfig
	Metrics   metrics.Metrics
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(opts.Metrics))
	if opts.Limiter != nil && opts.RateLimit.Requests > 0 {
		router.Use(middleware.RateLimiter(opts.Limiter, opts.RateLimit.Requests, opts.RateLimit.Window))
	}

	controllers.Blob.RegisterRoutes(router.Group("/"))

	return router
}

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// SetupAdminRouter serves /metrics, /healthz and, when auditController is
// set, /audit on the admin port.
func SetupAdminRouter(handler http.Handler, checks map[string]HealthCheck, auditController *controller.AuditController) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	router.GET("/metrics", gin.WrapH(handler))
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, results)
	})

	if auditController != nil {
		auditController.RegisterRoutes(router.Group("/"))
	}

	return router
}
