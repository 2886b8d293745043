// cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/config"
	"github.com/dev-mohitbeniwal/blobsas/controller"
	"github.com/dev-mohitbeniwal/blobsas/dao"
	"github.com/dev-mohitbeniwal/blobsas/db"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/router"
	"github.com/dev-mohitbeniwal/blobsas/service"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storage backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Configuration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := db.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer db.CloseRedis(redisClient)

	checks := map[string]router.HealthCheck{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	var policyStore dao.PolicyStore
	switch cfg.Storage.PolicyStore {
	case config.PolicyStoreNeo4j:
		driver, err := db.NewNeo4jDriver(ctx, cfg.Neo4j)
		if err != nil {
			return err
		}
		defer db.CloseNeo4j(driver)

		store, err := dao.NewNeo4jPolicyStore(ctx, driver)
		if err != nil {
			return err
		}
		policyStore = store
		checks["neo4j"] = driver.VerifyConnectivity
	default:
		policyStore = dao.NewRedisPolicyStore(redisClient)
	}

	var auditRepository audit.Repository = audit.NoopRepository{}
	if cfg.Elasticsearch.URL != "" {
		repo, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index, nil)
		if err != nil {
			return fmt.Errorf("failed to create audit repository: %w", err)
		}
		auditRepository = repo
	}
	auditService := audit.NewService(auditRepository)

	prom := metrics.NewProm("blobsas")

	eventBus := util.NewEventBus()
	eventBus.Start(ctx)

	services, err := service.InitializeServices(cfg, redisClient, policyStore, auditService, prom, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	controllers := controller.InitializeControllers(services)
	api := router.SetupRouter(controllers, router.Options{
		Limiter:   db.NewRateLimiter(redisClient),
		RateLimit: cfg.Server.RateLimit,
		Metrics:   prom,
	})
	admin := router.SetupAdminRouter(prom.Handler(), checks, controllers.Audit)

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%s", cfg.Server.Port), Handler: api},
		{Addr: fmt.Sprintf(":%s", cfg.Server.AdminPort), Handler: admin},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, server := range servers {
		server := server
		g.Go(func() error {
			logger.Info("Starting server", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", server.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", server.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	eventBus.Wait()
	logger.Info("Server exiting")
	return err
}
