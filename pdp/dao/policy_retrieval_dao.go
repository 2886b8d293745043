package dao

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/dao"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

// PolicyRetrievalDAO resolves the stored access policy a token names. Every
// call reads the store so that a removed policy is honoured immediately.
type PolicyRetrievalDAO struct {
	Store dao.PolicyStore
}

func NewPolicyRetrievalDAO(store dao.PolicyStore) *PolicyRetrievalDAO {
	return &PolicyRetrievalDAO{Store: store}
}

func (d *PolicyRetrievalDAO) RetrieveStoredPolicy(ctx context.Context, container, identifier string) (*model.AccessPolicy, error) {
	start := time.Now()
	acl, err := d.Store.GetACL(ctx, container)
	if err != nil {
		logger.Error("Failed to retrieve stored policies",
			zap.Error(err),
			zap.String("container", container))
		return nil, err
	}

	found, ok := acl.Find(identifier)
	if !ok {
		logger.Debug("Stored policy not found",
			zap.String("container", container),
			zap.String("identifier", identifier))
		return nil, sas_errors.ErrStoredPolicyNotFound
	}

	logger.Debug("Stored policy retrieved",
		zap.String("container", container),
		zap.String("identifier", identifier),
		zap.Duration("duration", time.Since(start)))
	policy := found.AccessPolicy
	return &policy, nil
}
