// dao/blob_dao.go
package dao

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/db"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

const (
	fieldData         = "data"
	fieldSize         = "size"
	fieldContentType  = "contentType"
	fieldETag         = "etag"
	fieldLastModified = "lastModified"
)

// BlobDAO keeps each blob in a hash and the names of a container's blobs in a
// sorted set with equal scores, so listings come back in lexicographic order.
type BlobDAO struct {
	Client     redis.UniversalClient
	Containers *ContainerDAO
	cipher     *db.Cipher
}

// NewBlobDAO creates the DAO. A nil cipher stores blob bodies in the clear.
func NewBlobDAO(client redis.UniversalClient, containers *ContainerDAO, cipher *db.Cipher) *BlobDAO {
	return &BlobDAO{Client: client, Containers: containers, cipher: cipher}
}

// PutBlob creates or overwrites a blob.
func (dao *BlobDAO) PutBlob(ctx context.Context, container, name string, data []byte, contentType string) (*model.BlobItem, error) {
	start := time.Now()
	if err := dao.Containers.EnsureExists(ctx, container); err != nil {
		return nil, err
	}

	stored := data
	if dao.cipher != nil {
		sealed, err := dao.cipher.Encrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt blob: %w", err)
		}
		stored = sealed
	}

	item := model.BlobItem{
		Name:         name,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         uuid.NewString(),
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
	_, err := dao.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, blobKey(container, name),
			fieldData, stored,
			fieldSize, item.Size,
			fieldContentType, item.ContentType,
			fieldETag, item.ETag,
			fieldLastModified, item.LastModified.Format(time.RFC3339),
		)
		pipe.ZAdd(ctx, blobIndexKey(container), redis.Z{Score: 0, Member: name})
		return nil
	})
	if err != nil {
		logger.Error("Failed to put blob", zap.Error(err), zap.String("container", container), zap.String("blob", name))
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	logger.Debug("Blob stored",
		zap.String("container", container),
		zap.String("blob", name),
		zap.Int64("size", item.Size),
		zap.Duration("duration", time.Since(start)))
	return &item, nil
}

func (dao *BlobDAO) GetBlob(ctx context.Context, container, name string) (*model.BlobContent, error) {
	if err := dao.Containers.EnsureExists(ctx, container); err != nil {
		return nil, err
	}
	fields, err := dao.Client.HGetAll(ctx, blobKey(container, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	if len(fields) == 0 {
		return nil, sas_errors.ErrBlobNotFound
	}

	data := []byte(fields[fieldData])
	if dao.cipher != nil {
		opened, err := dao.cipher.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt blob: %w", err)
		}
		data = opened
	}

	return &model.BlobContent{
		BlobItem: itemFromFields(name, fields),
		Data:     data,
	}, nil
}

// ListBlobs returns the blobs whose names start with prefix, in
// lexicographic order.
func (dao *BlobDAO) ListBlobs(ctx context.Context, container, prefix string) ([]model.BlobItem, error) {
	if err := dao.Containers.EnsureExists(ctx, container); err != nil {
		return nil, err
	}

	rng := &redis.ZRangeBy{Min: "-", Max: "+"}
	if prefix != "" {
		rng = &redis.ZRangeBy{Min: "[" + prefix, Max: "[" + prefix + "\xff"}
	}
	names, err := dao.Client.ZRangeByLex(ctx, blobIndexKey(container), rng).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	if len(names) == 0 {
		return []model.BlobItem{}, nil
	}

	cmds := make([]*redis.SliceCmd, len(names))
	_, err = dao.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			cmds[i] = pipe.HMGet(ctx, blobKey(container, name), fieldSize, fieldContentType, fieldETag, fieldLastModified)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	items := make([]model.BlobItem, 0, len(names))
	for i, name := range names {
		vals := cmds[i].Val()
		if len(vals) != 4 || vals[2] == nil {
			// deleted between the range and the lookup
			continue
		}
		items = append(items, itemFromFields(name, map[string]string{
			fieldSize:         toString(vals[0]),
			fieldContentType:  toString(vals[1]),
			fieldETag:         toString(vals[2]),
			fieldLastModified: toString(vals[3]),
		}))
	}
	return items, nil
}

func (dao *BlobDAO) DeleteBlob(ctx context.Context, container, name string) error {
	if err := dao.Containers.EnsureExists(ctx, container); err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err := dao.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, blobKey(container, name))
		pipe.ZRem(ctx, blobIndexKey(container), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}
	if del.Val() == 0 {
		return sas_errors.ErrBlobNotFound
	}

	logger.Debug("Blob deleted", zap.String("container", container), zap.String("blob", name))
	return nil
}

func itemFromFields(name string, fields map[string]string) model.BlobItem {
	size, _ := strconv.ParseInt(fields[fieldSize], 10, 64)
	modified, _ := time.Parse(time.RFC3339, fields[fieldLastModified])
	return model.BlobItem{
		Name:         name,
		Size:         size,
		ContentType:  fields[fieldContentType],
		ETag:         fields[fieldETag],
		LastModified: modified,
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
