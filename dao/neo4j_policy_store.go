// dao/neo4j_policy_store.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	sas_neo4j "github.com/dev-mohitbeniwal/blobsas/model/neo4j"
)

// Neo4jPolicyStore keeps stored access policies as ACCESS_POLICY nodes hanging
// off a CONTAINER node. The ACL ETag is a property of the container node.
type Neo4jPolicyStore struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jPolicyStore(ctx context.Context, driver neo4j.DriverWithContext) (*Neo4jPolicyStore, error) {
	store := &Neo4jPolicyStore{Driver: driver}
	if err := store.EnsureUniqueConstraint(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// EnsureUniqueConstraint ensures container names are unique
func (s *Neo4jPolicyStore) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on container name")
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
        CREATE CONSTRAINT unique_container_name IF NOT EXISTS
        FOR (c:%s) REQUIRE c.%s IS UNIQUE
        `, sas_neo4j.LabelContainer, sas_neo4j.PropName)
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on container name", zap.Error(err))
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (s *Neo4jPolicyStore) GetACL(ctx context.Context, container string) (*model.ContainerACL, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return readNeo4jACL(ctx, tx, container)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	return result.(*model.ContainerACL), nil
}

func readNeo4jACL(ctx context.Context, tx neo4j.ManagedTransaction, container string) (*model.ContainerACL, error) {
	query := fmt.Sprintf(`
    MATCH (c:%[1]s {%[3]s: $name})
    OPTIONAL MATCH (c)-[:%[2]s]->(p)
    RETURN coalesce(c.%[4]s, $initial) AS etag, collect(p {.*}) AS policies
    `, sas_neo4j.LabelContainer, sas_neo4j.RelHasPolicy, sas_neo4j.PropName, sas_neo4j.PropACLETag)

	res, err := tx.Run(ctx, query, map[string]any{"name": container, "initial": model.InitialACLETag})
	if err != nil {
		return nil, err
	}
	acl := &model.ContainerACL{SignedIdentifiers: []model.SignedIdentifier{}, ETag: model.InitialACLETag}
	if !res.Next(ctx) {
		return acl, res.Err()
	}
	record := res.Record()

	if etag, ok := record.Get("etag"); ok {
		acl.ETag, _ = etag.(string)
	}
	raw, _ := record.Get("policies")
	items, _ := raw.([]any)
	for _, item := range items {
		props, ok := item.(map[string]any)
		if !ok {
			continue
		}
		identifier, err := identifierFromProps(props)
		if err != nil {
			return nil, err
		}
		acl.SignedIdentifiers = append(acl.SignedIdentifiers, identifier)
	}
	return acl, nil
}

func identifierFromProps(props map[string]any) (model.SignedIdentifier, error) {
	id, _ := props[sas_neo4j.PropID].(string)
	perm, _ := props[sas_neo4j.PropPermission].(string)
	startStr, _ := props[sas_neo4j.PropStart].(string)
	expiryStr, _ := props[sas_neo4j.PropExpiry].(string)

	permissions, err := model.ParsePermissions(perm)
	if err != nil {
		return model.SignedIdentifier{}, fmt.Errorf("stored policy %q: %w", id, err)
	}
	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return model.SignedIdentifier{}, fmt.Errorf("stored policy %q expiry: %w", id, err)
	}
	var start *time.Time
	if startStr != "" {
		t, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return model.SignedIdentifier{}, fmt.Errorf("stored policy %q start: %w", id, err)
		}
		start = &t
	}
	return model.SignedIdentifier{ID: id, AccessPolicy: model.NewAccessPolicy(permissions, start, expiry)}, nil
}

func (s *Neo4jPolicyStore) SetACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error) {
	start := time.Now()
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	etag := uuid.NewString()
	policies := make([]any, 0, len(acl.SignedIdentifiers))
	for _, si := range acl.SignedIdentifiers {
		startStr := ""
		if si.AccessPolicy.Start != nil {
			startStr = si.AccessPolicy.Start.UTC().Format(time.RFC3339)
		}
		policies = append(policies, map[string]any{
			sas_neo4j.PropID:         si.ID,
			sas_neo4j.PropPermission: si.AccessPolicy.Permissions.String(),
			sas_neo4j.PropStart:      startStr,
			sas_neo4j.PropExpiry:     si.AccessPolicy.Expiry.UTC().Format(time.RFC3339),
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// SET takes the node write lock before the etag is compared.
		lockQuery := fmt.Sprintf(`
        MERGE (c:%[1]s {%[2]s: $name})
        WITH c, coalesce(c.%[3]s, $initial) AS current
        SET c.%[3]s = current
        RETURN current
        `, sas_neo4j.LabelContainer, sas_neo4j.PropName, sas_neo4j.PropACLETag)
		res, err := tx.Run(ctx, lockQuery, map[string]any{"name": container, "initial": model.InitialACLETag})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		current, _ := record.Values[0].(string)
		if ifMatch != "" && ifMatch != current {
			return nil, sas_errors.ErrACLConflict
		}

		clearQuery := fmt.Sprintf(`
        MATCH (c:%[1]s {%[3]s: $name})-[:%[2]s]->(p:%[4]s)
        DETACH DELETE p
        `, sas_neo4j.LabelContainer, sas_neo4j.RelHasPolicy, sas_neo4j.PropName, sas_neo4j.LabelAccessPolicy)
		if _, err := tx.Run(ctx, clearQuery, map[string]any{"name": container}); err != nil {
			return nil, err
		}

		writeQuery := fmt.Sprintf(`
        MATCH (c:%[1]s {%[3]s: $name})
        SET c.%[5]s = $etag
        WITH c
        UNWIND $policies AS policy
        CREATE (c)-[:%[2]s]->(p:%[4]s)
        SET p = policy
        `, sas_neo4j.LabelContainer, sas_neo4j.RelHasPolicy, sas_neo4j.PropName, sas_neo4j.LabelAccessPolicy, sas_neo4j.PropACLETag)
		_, err = tx.Run(ctx, writeQuery, map[string]any{
			"name":     container,
			"etag":     etag,
			"policies": policies,
		})
		return nil, err
	})
	if err != nil {
		if errors.Is(err, sas_errors.ErrACLConflict) {
			return nil, err
		}
		logger.Error("Failed to set container ACL", zap.Error(err), zap.String("container", container))
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	logger.Info("Container ACL updated",
		zap.String("container", container),
		zap.Int("policies", len(policies)),
		zap.Duration("duration", time.Since(start)))

	written := model.ContainerACL{SignedIdentifiers: acl.SignedIdentifiers, ETag: etag}
	if written.SignedIdentifiers == nil {
		written.SignedIdentifiers = []model.SignedIdentifier{}
	}
	return &written, nil
}

func (s *Neo4jPolicyStore) DeleteACL(ctx context.Context, container string) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
        MATCH (c:%[1]s {%[3]s: $name})
        OPTIONAL MATCH (c)-[:%[2]s]->(p)
        DETACH DELETE p, c
        `, sas_neo4j.LabelContainer, sas_neo4j.RelHasPolicy, sas_neo4j.PropName)
		_, err := tx.Run(ctx, query, map[string]any{"name": container})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	return nil
}
