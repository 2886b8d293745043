// db/db.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/config"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
)

// NewNeo4jDriver connects to Neo4j and verifies connectivity.
func NewNeo4jDriver(ctx context.Context, cfg config.DatabaseConfiguration) (neo4j.DriverWithContext, error) {
	logger.Info("Connecting to Neo4j at URI", zap.String("uri", cfg.URI))
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.MaxConnectionPoolSize = 50
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	logger.Info("Successfully connected to Neo4j")
	return driver, nil
}

func CloseNeo4j(driver neo4j.DriverWithContext) {
	if driver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Close(ctx); err != nil {
		logger.Error("Error closing Neo4j connection", zap.Error(err))
	} else {
		logger.Info("Neo4j connection closed successfully")
	}
}
