// errors/policy_errors.go
package errors

import "errors"

var (
	ErrInvalidPolicyWindow    = errors.New("policy expiry must be after its start")
	ErrInvalidPermissions     = errors.New("invalid permission set")
	ErrPermissionUpdateFailed = errors.New("stored access policy update failed")
	ErrACLConflict            = errors.New("container access policy was modified concurrently")
	ErrTooManyStoredPolicies  = errors.New("too many stored access policies")
	ErrInvalidStoredPolicy    = errors.New("invalid stored access policy")
	ErrStoredPolicyNotFound   = errors.New("stored access policy not found")
)
