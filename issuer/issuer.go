// issuer/issuer.go
package issuer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/client"
	"github.com/dev-mohitbeniwal/blobsas/config"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

// Issuer signs tokens with the account key and manages the stored access
// policies they may reference. It keeps no record of issued tokens.
type Issuer struct {
	endpoint   string
	credential *sas.SharedKeyCredential
	client     *client.Client
}

// New builds an issuer for the configured account. c must be authenticated
// with the same account; it is only used for setup and policy calls.
func New(cfg config.StorageConfig, c *client.Client) (*Issuer, error) {
	cred, err := sas.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}
	return &Issuer{endpoint: cfg.Endpoint, credential: cred, client: c}, nil
}

// IssueContainerToken seals the policy into a token for every blob in the
// container.
func (i *Issuer) IssueContainerToken(container string, permissions model.Permissions, start *time.Time, expiry time.Time) (string, error) {
	return i.issue(model.ContainerRef(container), permissions, start, expiry)
}

// IssueBlobToken seals the policy into a token for a single blob.
func (i *Issuer) IssueBlobToken(blob model.ResourceRef, permissions model.Permissions, start *time.Time, expiry time.Time) (string, error) {
	if !blob.IsBlob() {
		return "", fmt.Errorf("blob name is required: %w", sas_errors.ErrInvalidResource)
	}
	return i.issue(blob, permissions, start, expiry)
}

func (i *Issuer) issue(ref model.ResourceRef, permissions model.Permissions, start *time.Time, expiry time.Time) (string, error) {
	policy := model.NewAccessPolicy(permissions, start, expiry)
	token, err := sas.SignatureValues{Resource: ref, Policy: &policy}.Sign(i.credential)
	if err != nil {
		return "", err
	}
	logger.Info("Issued shared access signature",
		zap.String("resource", ref.String()),
		zap.String("permissions", policy.Permissions.String()),
		zap.Time("expiry", policy.Expiry))
	return sas.SignedURI(i.endpoint, ref, token), nil
}

// IssueTokenFromPolicy issues a token carrying only the stored policy name.
// Its window and permissions are looked up by the backend on every use.
func (i *Issuer) IssueTokenFromPolicy(resource model.ResourceRef, policyName string) (string, error) {
	if policyName == "" {
		return "", fmt.Errorf("policy name is required: %w", sas_errors.ErrInvalidStoredPolicy)
	}
	token, err := sas.SignatureValues{Resource: resource, Identifier: policyName}.Sign(i.credential)
	if err != nil {
		return "", err
	}
	logger.Info("Issued shared access signature for stored policy",
		zap.String("resource", resource.String()),
		zap.String("policy", policyName))
	return sas.SignedURI(i.endpoint, resource, token), nil
}

// EnsureContainer creates the container when it does not exist yet.
func (i *Issuer) EnsureContainer(ctx context.Context, container string) error {
	created, err := i.client.CreateContainerIfNotExists(ctx, container)
	if err != nil {
		return fmt.Errorf("failed to ensure container %q: %w", container, err)
	}
	if created {
		logger.Info("Container created", zap.String("container", container))
	}
	return nil
}

// SeedBlob overwrites the blob with content.
func (i *Issuer) SeedBlob(ctx context.Context, blob model.ResourceRef, content []byte) error {
	if _, err := i.client.UploadBlob(ctx, blob, content, "text/plain"); err != nil {
		return fmt.Errorf("failed to seed blob %q: %w", blob, err)
	}
	return nil
}

// RegisterPolicy stores policy on the container under name, replacing an
// existing policy of that name. With clearExisting every other stored policy
// is removed in the same write. A concurrent modification is not retried.
func (i *Issuer) RegisterPolicy(ctx context.Context, container, name string, policy model.AccessPolicy, clearExisting bool) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	return i.updatePolicies(ctx, container, func(acl *model.ContainerACL) {
		if clearExisting {
			acl.SignedIdentifiers = nil
		}
		acl.Upsert(model.SignedIdentifier{ID: name, AccessPolicy: policy})
	})
}

// RevokePolicy removes the named stored policy, which invalidates every token
// referencing it on its next use.
func (i *Issuer) RevokePolicy(ctx context.Context, container, name string) error {
	return i.updatePolicies(ctx, container, func(acl *model.ContainerACL) {
		if !acl.Remove(name) {
			logger.Warn("Stored access policy not present", zap.String("container", container), zap.String("policy", name))
		}
	})
}

func (i *Issuer) updatePolicies(ctx context.Context, container string, mutate func(*model.ContainerACL)) error {
	acl, err := i.client.GetContainerACL(ctx, container)
	if err != nil {
		return fmt.Errorf("%w: read policies of %q: %w", sas_errors.ErrPermissionUpdateFailed, container, err)
	}
	if acl.ETag == "" {
		return fmt.Errorf("%w: policies of %q carry no ETag", sas_errors.ErrPermissionUpdateFailed, container)
	}
	mutate(acl)

	written, err := i.client.SetContainerACL(ctx, container, *acl, acl.ETag)
	if err != nil {
		return fmt.Errorf("%w: write policies of %q: %w", sas_errors.ErrPermissionUpdateFailed, container, err)
	}
	logger.Info("Stored access policies updated",
		zap.String("container", container),
		zap.Int("policies", len(written.SignedIdentifiers)),
		zap.String("etag", written.ETag))
	return nil
}
