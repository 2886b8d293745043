package issuer

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/blobsas/config"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

// Token labels of the generate workflow.
const (
	LabelContainer       = "Container SAS URI"
	LabelBlob            = "Blob SAS URI"
	LabelContainerPolicy = "Container SAS URI using stored access policy"
	LabelBlobPolicy      = "Blob SAS URI using stored access policy"
)

// SeedContent is written to the blobs that blob-scoped tokens are issued for.
const (
	SeedContent       = "This blob will be accessible to clients via a shared access signature (SAS)."
	PolicySeedContent = "This blob will be accessible to clients via a shared access signature. A stored access policy defines the constraints for the signature."
)

// ClockSkew backdates the start of blob tokens so a consumer with a slightly
// different clock can use them immediately.
const ClockSkew = 5 * time.Minute

// IssuedToken is one signed URI produced by the generate workflow.
type IssuedToken struct {
	Label string
	URI   string
}

// Generate prepares the container and issues the four demonstration tokens:
// inline container {w,l}, inline blob {r,w} with a start time, and a
// container and a blob token bound to a freshly registered stored policy.
func (i *Issuer) Generate(ctx context.Context, cfg config.IssuerConfig, now time.Time) ([]IssuedToken, error) {
	expiry := now.Add(cfg.TokenTTL)

	if err := i.EnsureContainer(ctx, cfg.Container); err != nil {
		return nil, err
	}

	containerURI, err := i.IssueContainerToken(cfg.Container, model.PermissionWrite|model.PermissionList, nil, expiry)
	if err != nil {
		return nil, err
	}

	blob := model.BlobRef(cfg.Container, cfg.Blob)
	if err := i.SeedBlob(ctx, blob, []byte(SeedContent)); err != nil {
		return nil, err
	}
	start := now.Add(-ClockSkew)
	blobURI, err := i.IssueBlobToken(blob, model.PermissionRead|model.PermissionWrite, &start, expiry)
	if err != nil {
		return nil, err
	}

	policy := model.NewAccessPolicy(model.PermissionRead|model.PermissionWrite|model.PermissionList, nil, expiry)
	if err := i.RegisterPolicy(ctx, cfg.Container, cfg.PolicyName, policy, true); err != nil {
		return nil, err
	}
	containerPolicyURI, err := i.IssueTokenFromPolicy(model.ContainerRef(cfg.Container), cfg.PolicyName)
	if err != nil {
		return nil, err
	}

	policyBlob := model.BlobRef(cfg.Container, cfg.PolicyBlob)
	if err := i.SeedBlob(ctx, policyBlob, []byte(PolicySeedContent)); err != nil {
		return nil, err
	}
	blobPolicyURI, err := i.IssueTokenFromPolicy(policyBlob, cfg.PolicyName)
	if err != nil {
		return nil, err
	}

	return []IssuedToken{
		{Label: LabelContainer, URI: containerURI},
		{Label: LabelBlob, URI: blobURI},
		{Label: LabelContainerPolicy, URI: containerPolicyURI},
		{Label: LabelBlobPolicy, URI: blobPolicyURI},
	}, nil
}
