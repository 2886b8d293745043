package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/metrics"
	"github.com/dev-mohitbeniwal/blobsas/pdp/engine"
	pdp_model "github.com/dev-mohitbeniwal/blobsas/pdp/model"
)

type IAccessService interface {
	Authorize(ctx context.Context, request *pdp_model.AccessRequest) (*pdp_model.AccessDecision, error)
}

// AccessService evaluates, audits and counts every authorization decision.
type AccessService struct {
	evaluator    *engine.Evaluator
	auditService audit.Service
	metrics      metrics.Metrics
}

func NewAccessService(evaluator *engine.Evaluator, auditService audit.Service, m metrics.Metrics) *AccessService {
	return &AccessService{evaluator: evaluator, auditService: auditService, metrics: m}
}

func (s *AccessService) Authorize(ctx context.Context, request *pdp_model.AccessRequest) (*pdp_model.AccessDecision, error) {
	decision, err := s.evaluator.Evaluate(ctx, request)
	if err != nil {
		s.metrics.IncDecision(string(request.Operation), "error", "")
		logger.Error("Failed to evaluate access request",
			zap.Error(err),
			zap.String("operation", string(request.Operation)),
			zap.String("resource", request.Resource.String()))
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrDatabaseOperation, err)
	}

	s.metrics.IncDecision(string(request.Operation), decision.Effect, decision.Code)

	entry := audit.AuditLog{
		Timestamp:     request.Timestamp,
		RequestID:     request.RequestID,
		Principal:     decision.Principal,
		Action:        string(request.Operation),
		ResourceID:    request.Resource.String(),
		AccessGranted: decision.Allowed(),
		PolicyID:      decision.PolicyID,
		Code:          decision.Code,
		Reason:        decision.Reason,
		ClientIP:      request.ClientIP,
	}
	if err := s.auditService.LogAccess(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log", zap.Error(err), zap.String("requestID", request.RequestID))
	}

	if !decision.Allowed() {
		logger.Info("Access denied",
			zap.String("operation", string(request.Operation)),
			zap.String("resource", request.Resource.String()),
			zap.String("code", decision.Code),
			zap.String("reason", decision.Reason),
			zap.String("requestID", request.RequestID))
	}
	return decision, nil
}
