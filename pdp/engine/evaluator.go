package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	pdp_model "github.com/dev-mohitbeniwal/blobsas/pdp/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

// StoredPolicyRetriever looks up a named stored access policy on a container.
type StoredPolicyRetriever interface {
	RetrieveStoredPolicy(ctx context.Context, container, identifier string) (*model.AccessPolicy, error)
}

// Evaluator decides whether a request's credential authorizes its operation.
type Evaluator struct {
	cred     *sas.SharedKeyCredential
	mapping  model.OperationPermissions
	policies StoredPolicyRetriever
}

func NewEvaluator(cred *sas.SharedKeyCredential, mapping model.OperationPermissions, policies StoredPolicyRetriever) *Evaluator {
	return &Evaluator{cred: cred, mapping: mapping, policies: policies}
}

// Evaluate returns a decision for every well-formed request. The error is
// reserved for failures reading stored policies.
func (e *Evaluator) Evaluate(ctx context.Context, request *pdp_model.AccessRequest) (*pdp_model.AccessDecision, error) {
	if request.Timestamp.IsZero() {
		request.Timestamp = time.Now()
	}

	var decision *pdp_model.AccessDecision
	var err error
	switch {
	case request.SAS != nil:
		decision, err = e.evaluateSAS(ctx, request)
	case request.BearerToken != "":
		decision = e.evaluateBearer(request)
	default:
		decision = deny(pdp_model.PrincipalAnonymous, pdp_model.CodeAuthenticationFailed,
			"no credentials supplied", sas_errors.ErrMissingCredentials)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("Access decision",
		zap.String("operation", string(request.Operation)),
		zap.String("resource", request.Resource.String()),
		zap.String("principal", decision.Principal),
		zap.String("effect", decision.Effect),
		zap.String("code", decision.Code),
		zap.String("reason", decision.Reason))
	return decision, nil
}

func (e *Evaluator) evaluateBearer(request *pdp_model.AccessRequest) *pdp_model.AccessDecision {
	if _, err := e.cred.VerifyBearerToken(request.BearerToken); err != nil {
		return deny(pdp_model.PrincipalAccount, pdp_model.CodeAuthenticationFailed, err.Error(), err)
	}
	return &pdp_model.AccessDecision{
		Effect:    pdp_model.EffectAllow,
		Principal: pdp_model.PrincipalAccount,
		Reason:    "account credential",
		Scope:     model.ContainerRef(request.Resource.Container),
	}
}

func (e *Evaluator) evaluateSAS(ctx context.Context, request *pdp_model.AccessRequest) (*pdp_model.AccessDecision, error) {
	token := request.SAS

	if token.Version != sas.Version {
		return denySAS(pdp_model.CodeAuthenticationFailed, "unsupported signed version "+token.Version, sas_errors.ErrUnsupportedVersion), nil
	}

	scope, ok := signedScope(request)
	if !ok {
		return denySAS(pdp_model.CodeAuthorizationResourceTypeMismatch,
			"signed resource type does not cover the requested resource", sas_errors.ErrMalformedToken), nil
	}

	policy, decision, err := e.effectivePolicy(ctx, request)
	if err != nil || decision != nil {
		return decision, err
	}

	if !sas.Verify(e.cred, scope, *token) {
		return denySAS(pdp_model.CodeAuthenticationFailed, "signature did not match", sas_errors.ErrInvalidSignature), nil
	}

	now := request.Timestamp
	if policy.Start != nil && now.Before(*policy.Start) {
		return denySAS(pdp_model.CodeAuthenticationFailed, "signature not yet valid", sas_errors.ErrTokenNotYetValid), nil
	}
	if !now.Before(policy.Expiry) {
		return denySAS(pdp_model.CodeAuthenticationFailed, "signature expired", sas_errors.ErrTokenExpired), nil
	}

	required, ok := e.mapping.Required(request.Operation)
	if !ok {
		return denySAS(pdp_model.CodeAuthorizationFailure,
			"operation requires the account credential", sas_errors.ErrAuthorizationDenied), nil
	}
	if !policy.Permissions.Has(required) {
		return denySAS(pdp_model.CodeAuthorizationPermissionMismatch,
			"signature grants "+policy.Permissions.String()+", operation requires "+required.String(),
			sas_errors.ErrInvalidPermissions), nil
	}

	return &pdp_model.AccessDecision{
		Effect:    pdp_model.EffectAllow,
		Principal: pdp_model.PrincipalSAS,
		Reason:    "granted " + policy.Permissions.String(),
		PolicyID:  token.Identifier,
		Scope:     scope,
	}, nil
}

// signedScope is the resource the token must have been signed for. A
// container token covers the container and every blob in it. A blob token
// covers that blob, and a listing whose prefix is exactly that blob.
func signedScope(request *pdp_model.AccessRequest) (model.ResourceRef, bool) {
	switch request.SAS.Resource {
	case model.ResourceContainer:
		return model.ContainerRef(request.Resource.Container), true
	case model.ResourceBlob:
		if request.Resource.IsBlob() {
			return request.Resource, true
		}
		if request.Operation == model.OperationList && request.Prefix != "" {
			return model.BlobRef(request.Resource.Container, request.Prefix), true
		}
	}
	return model.ResourceRef{}, false
}

// effectivePolicy merges the token's inline fields with the stored policy it
// names. A field may come from one side only.
func (e *Evaluator) effectivePolicy(ctx context.Context, request *pdp_model.AccessRequest) (*model.AccessPolicy, *pdp_model.AccessDecision, error) {
	token := request.SAS
	policy := model.AccessPolicy{Expiry: token.Expiry}
	if !token.Start.IsZero() {
		start := token.Start
		policy.Start = &start
	}
	if token.Permissions != "" {
		perms, err := model.ParsePermissions(token.Permissions)
		if err != nil {
			return nil, denySAS(pdp_model.CodeAuthenticationFailed, err.Error(), sas_errors.ErrMalformedToken), nil
		}
		policy.Permissions = perms
	}

	if token.Identifier != "" {
		stored, err := e.policies.RetrieveStoredPolicy(ctx, request.Resource.Container, token.Identifier)
		if errors.Is(err, sas_errors.ErrStoredPolicyNotFound) {
			return nil, denySAS(pdp_model.CodeAuthenticationFailed,
				"stored policy "+token.Identifier+" not found", err), nil
		}
		if err != nil {
			return nil, nil, err
		}
		if (stored.Start != nil && policy.Start != nil) ||
			(!stored.Expiry.IsZero() && !policy.Expiry.IsZero()) ||
			(!stored.Permissions.IsEmpty() && !policy.Permissions.IsEmpty()) {
			return nil, denySAS(pdp_model.CodeAuthenticationFailed,
				"field specified by both the token and stored policy "+token.Identifier, sas_errors.ErrInvalidStoredPolicy), nil
		}
		if stored.Start != nil {
			policy.Start = stored.Start
		}
		if !stored.Expiry.IsZero() {
			policy.Expiry = stored.Expiry
		}
		if !stored.Permissions.IsEmpty() {
			policy.Permissions = stored.Permissions
		}
	}

	if policy.Expiry.IsZero() {
		return nil, denySAS(pdp_model.CodeAuthenticationFailed, "signed expiry missing", sas_errors.ErrMalformedToken), nil
	}
	return &policy, nil, nil
}

func denySAS(code, reason string, cause error) *pdp_model.AccessDecision {
	return deny(pdp_model.PrincipalSAS, code, reason, cause)
}

func deny(principal, code, reason string, cause error) *pdp_model.AccessDecision {
	return &pdp_model.AccessDecision{
		Effect:    pdp_model.EffectDeny,
		Principal: principal,
		Code:      code,
		Reason:    reason,
		Cause:     cause,
	}
}
