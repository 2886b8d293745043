// dao/container_dao.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

func containerKey(name string) string       { return fmt.Sprintf("container:%s", name) }
func blobIndexKey(container string) string  { return fmt.Sprintf("blobs:%s", container) }
func blobKey(container, name string) string { return fmt.Sprintf("blob:%s:%s", container, name) }
func aclKey(container string) string        { return fmt.Sprintf("acl:%s", container) }

type ContainerDAO struct {
	Client redis.UniversalClient
}

func NewContainerDAO(client redis.UniversalClient) *ContainerDAO {
	return &ContainerDAO{Client: client}
}

// CreateContainer stores a new container. It fails with ErrContainerExists
// when the name is taken.
func (dao *ContainerDAO) CreateContainer(ctx context.Context, name string) (*model.Container, error) {
	start := time.Now()
	logger.Info("Creating container", zap.String("container", name))

	container := model.Container{
		Name:      name,
		ETag:      uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(container)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal container: %w", err)
	}

	created, err := dao.Client.SetNX(ctx, containerKey(name), data, 0).Result()
	if err != nil {
		logger.Error("Failed to create container", zap.Error(err), zap.String("container", name))
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	if !created {
		return nil, sas_errors.ErrContainerExists
	}

	logger.Info("Container created",
		zap.String("container", name),
		zap.Duration("duration", time.Since(start)))
	return &container, nil
}

func (dao *ContainerDAO) GetContainer(ctx context.Context, name string) (*model.Container, error) {
	data, err := dao.Client.Get(ctx, containerKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sas_errors.ErrContainerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	var container model.Container
	if err := json.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("failed to unmarshal container: %w", err)
	}
	return &container, nil
}

// EnsureExists returns ErrContainerNotFound when the container is absent.
func (dao *ContainerDAO) EnsureExists(ctx context.Context, name string) error {
	n, err := dao.Client.Exists(ctx, containerKey(name)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	if n == 0 {
		return sas_errors.ErrContainerNotFound
	}
	return nil
}

// DeleteContainer removes the container with all of its blobs and its ACL.
func (dao *ContainerDAO) DeleteContainer(ctx context.Context, name string) error {
	start := time.Now()
	logger.Info("Deleting container", zap.String("container", name))

	if err := dao.EnsureExists(ctx, name); err != nil {
		return err
	}
	blobs, err := dao.Client.ZRange(ctx, blobIndexKey(name), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	keys := []string{containerKey(name), blobIndexKey(name), aclKey(name)}
	for _, b := range blobs {
		keys = append(keys, blobKey(name, b))
	}
	_, err = dao.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete container", zap.Error(err), zap.String("container", name))
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	logger.Info("Container deleted",
		zap.String("container", name),
		zap.Int("blobs", len(blobs)),
		zap.Duration("duration", time.Since(start)))
	return nil
}
