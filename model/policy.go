// model/policy.go
package model

import (
	"fmt"
	"time"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
)

// MaxSignedIdentifierLength bounds the name of a stored access policy.
const MaxSignedIdentifierLength = 64

// AccessPolicy is a permission set plus the window during which it is valid.
// A nil Start means the policy is effective immediately.
type AccessPolicy struct {
	Permissions Permissions `json:"permission"`
	Start       *time.Time  `json:"start,omitempty"`
	Expiry      time.Time   `json:"expiry"`
}

// NewAccessPolicy builds a policy with times truncated to whole seconds in UTC,
// which is the precision carried by a signed URI.
func NewAccessPolicy(permissions Permissions, start *time.Time, expiry time.Time) AccessPolicy {
	policy := AccessPolicy{
		Permissions: permissions,
		Expiry:      expiry.UTC().Truncate(time.Second),
	}
	if start != nil {
		s := start.UTC().Truncate(time.Second)
		policy.Start = &s
	}
	return policy
}

// ValidateWindow checks the time window only.
func (p AccessPolicy) ValidateWindow() error {
	if p.Expiry.IsZero() {
		return fmt.Errorf("expiry is required: %w", sas_errors.ErrInvalidPolicyWindow)
	}
	if p.Start != nil && !p.Expiry.After(*p.Start) {
		return fmt.Errorf("expiry %s is not after start %s: %w",
			p.Expiry.Format(time.RFC3339), p.Start.Format(time.RFC3339), sas_errors.ErrInvalidPolicyWindow)
	}
	return nil
}

// Validate checks the window and requires at least one permission.
func (p AccessPolicy) Validate() error {
	if err := p.ValidateWindow(); err != nil {
		return err
	}
	if p.Permissions.IsEmpty() {
		return sas_errors.ErrInvalidPermissions
	}
	return nil
}

// ActiveAt reports whether t falls inside [Start, Expiry).
func (p AccessPolicy) ActiveAt(t time.Time) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	return t.Before(p.Expiry)
}

// SignedIdentifier is a stored access policy registered on a container under ID.
type SignedIdentifier struct {
	ID           string       `json:"id"`
	AccessPolicy AccessPolicy `json:"accessPolicy"`
}

func (s SignedIdentifier) Validate() error {
	if s.ID == "" || len(s.ID) > MaxSignedIdentifierLength {
		return fmt.Errorf("identifier %q must be 1-%d characters: %w", s.ID, MaxSignedIdentifierLength, sas_errors.ErrInvalidStoredPolicy)
	}
	if err := s.AccessPolicy.Validate(); err != nil {
		return fmt.Errorf("identifier %q: %w", s.ID, err)
	}
	return nil
}

// InitialACLETag versions the ACL of a container whose policies were never
// written, so the first write can be made conditional too.
const InitialACLETag = "0"

// ContainerACL is the full set of stored access policies on a container.
type ContainerACL struct {
	SignedIdentifiers []SignedIdentifier `json:"signedIdentifiers"`
	ETag              string             `json:"etag,omitempty"`
}

// Find returns the stored policy named id.
func (a ContainerACL) Find(id string) (*SignedIdentifier, bool) {
	for i := range a.SignedIdentifiers {
		if a.SignedIdentifiers[i].ID == id {
			return &a.SignedIdentifiers[i], true
		}
	}
	return nil, false
}

// Upsert inserts or overwrites the policy with the same ID.
func (a *ContainerACL) Upsert(identifier SignedIdentifier) {
	for i := range a.SignedIdentifiers {
		if a.SignedIdentifiers[i].ID == identifier.ID {
			a.SignedIdentifiers[i] = identifier
			return
		}
	}
	a.SignedIdentifiers = append(a.SignedIdentifiers, identifier)
}

// Remove deletes the policy named id and reports whether it existed.
func (a *ContainerACL) Remove(id string) bool {
	for i := range a.SignedIdentifiers {
		if a.SignedIdentifiers[i].ID == id {
			a.SignedIdentifiers = append(a.SignedIdentifiers[:i], a.SignedIdentifiers[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks every identifier, uniqueness and the per-container limit.
func (a ContainerACL) Validate(maxPolicies int) error {
	if maxPolicies > 0 && len(a.SignedIdentifiers) > maxPolicies {
		return fmt.Errorf("%d policies exceeds limit of %d: %w", len(a.SignedIdentifiers), maxPolicies, sas_errors.ErrTooManyStoredPolicies)
	}
	seen := make(map[string]bool, len(a.SignedIdentifiers))
	for _, si := range a.SignedIdentifiers {
		if err := si.Validate(); err != nil {
			return err
		}
		if seen[si.ID] {
			return fmt.Errorf("duplicate identifier %q: %w", si.ID, sas_errors.ErrInvalidStoredPolicy)
		}
		seen[si.ID] = true
	}
	return nil
}
