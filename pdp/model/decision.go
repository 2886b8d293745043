package model

import (
	"fmt"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

const (
	EffectAllow = "allow"
	EffectDeny  = "deny"
)

// Principals.
const (
	PrincipalAccount   = "account"
	PrincipalSAS       = "sas"
	PrincipalAnonymous = "anonymous"
)

// Error codes returned to clients on a denied request.
const (
	CodeAuthenticationFailed              = "AuthenticationFailed"
	CodeAuthorizationFailure              = "AuthorizationFailure"
	CodeAuthorizationPermissionMismatch   = "AuthorizationPermissionMismatch"
	CodeAuthorizationResourceTypeMismatch = "AuthorizationResourceTypeMismatch"
)

type AccessDecision struct {
	Effect    string `json:"effect"`
	Principal string `json:"principal"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
	PolicyID  string `json:"policy_id,omitempty"`
	// Scope is the resource the credential was signed for.
	Scope model.ResourceRef `json:"scope"`
	Cause error             `json:"-"`
}

func (d *AccessDecision) Allowed() bool {
	return d.Effect == EffectAllow
}

// Err is nil for an allow, otherwise ErrAuthorizationDenied wrapping the cause.
func (d *AccessDecision) Err() error {
	if d.Allowed() {
		return nil
	}
	if d.Cause == nil {
		return fmt.Errorf("%w: %s", sas_errors.ErrAuthorizationDenied, d.Reason)
	}
	return fmt.Errorf("%w: %w", sas_errors.ErrAuthorizationDenied, d.Cause)
}
