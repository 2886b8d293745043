// dao/policy_store.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

// PolicyStore persists the stored access policies of each container.
//
// GetACL of a container that never had policies returns an empty ACL with
// ETag model.InitialACLETag. SetACL replaces the whole set; a non-empty
// ifMatch must equal the current ETag or the write fails with ErrACLConflict. Implementations
// never cache, so a removed policy stops authorizing on the next request.
type PolicyStore interface {
	GetACL(ctx context.Context, container string) (*model.ContainerACL, error)
	SetACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error)
	DeleteACL(ctx context.Context, container string) error
}

type RedisPolicyStore struct {
	Client redis.UniversalClient
}

func NewRedisPolicyStore(client redis.UniversalClient) *RedisPolicyStore {
	return &RedisPolicyStore{Client: client}
}

type aclGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readACL(ctx context.Context, c aclGetter, container string) (*model.ContainerACL, error) {
	data, err := c.Get(ctx, aclKey(container)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &model.ContainerACL{SignedIdentifiers: []model.SignedIdentifier{}, ETag: model.InitialACLETag}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	var acl model.ContainerACL
	if err := json.Unmarshal(data, &acl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal container ACL: %w", err)
	}
	return &acl, nil
}

func (s *RedisPolicyStore) GetACL(ctx context.Context, container string) (*model.ContainerACL, error) {
	return readACL(ctx, s.Client, container)
}

func (s *RedisPolicyStore) SetACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error) {
	key := aclKey(container)
	var written model.ContainerACL

	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readACL(ctx, tx, container)
		if err != nil {
			return err
		}
		if ifMatch != "" && ifMatch != current.ETag {
			return sas_errors.ErrACLConflict
		}

		written = model.ContainerACL{
			SignedIdentifiers: acl.SignedIdentifiers,
			ETag:              uuid.NewString(),
		}
		if written.SignedIdentifiers == nil {
			written.SignedIdentifiers = []model.SignedIdentifier{}
		}
		data, err := json.Marshal(written)
		if err != nil {
			return fmt.Errorf("failed to marshal container ACL: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		return nil, sas_errors.ErrACLConflict
	case errors.Is(err, sas_errors.ErrACLConflict):
		return nil, err
	default:
		logger.Error("Failed to set container ACL", zap.Error(err), zap.String("container", container))
		return nil, err
	}

	logger.Info("Container ACL updated",
		zap.String("container", container),
		zap.Int("policies", len(written.SignedIdentifiers)),
		zap.String("etag", written.ETag))
	return &written, nil
}

func (s *RedisPolicyStore) DeleteACL(ctx context.Context, container string) error {
	if err := s.Client.Del(ctx, aclKey(container)).Err(); err != nil {
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	return nil
}
