// sas/signature.go
package sas

import (
	"crypto/subtle"
	"strings"
	"time"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

// SignatureValues are the inputs of a service SAS. Either Policy is set
// (inline token) or Identifier names a stored access policy on the container.
type SignatureValues struct {
	Resource   model.ResourceRef
	Policy     *model.AccessPolicy
	Identifier string
}

// Sign validates the values and produces the signed token.
func (v SignatureValues) Sign(cred *SharedKeyCredential) (QueryParameters, error) {
	p := QueryParameters{
		Version:    Version,
		Resource:   v.Resource.Type(),
		Identifier: v.Identifier,
	}
	if v.Policy != nil {
		if err := v.Policy.Validate(); err != nil {
			return QueryParameters{}, err
		}
		if v.Policy.Start != nil {
			p.Start = v.Policy.Start.UTC().Truncate(time.Second)
		}
		p.Expiry = v.Policy.Expiry.UTC().Truncate(time.Second)
		p.Permissions = v.Policy.Permissions.String()
	} else if v.Identifier == "" {
		return QueryParameters{}, sas_errors.ErrInvalidStoredPolicy
	}
	p.Signature = cred.ComputeHMACSHA256(StringToSign(cred.AccountName(), v.Resource, p))
	return p, nil
}

// CanonicalResource is the signed resource path, e.g. /blob/account/container/blob.
func CanonicalResource(account string, ref model.ResourceRef) string {
	var b strings.Builder
	b.WriteString("/blob/")
	b.WriteString(account)
	b.WriteByte('/')
	b.WriteString(ref.Container)
	if ref.Blob != "" {
		b.WriteByte('/')
		b.WriteString(ref.Blob)
	}
	return b.String()
}

// StringToSign follows the 2016-05-31 service SAS layout. Signed IP, protocol
// and response header overrides are never issued and stay empty.
func StringToSign(account string, ref model.ResourceRef, p QueryParameters) string {
	return strings.Join([]string{
		p.Permissions,
		formatTime(p.Start),
		formatTime(p.Expiry),
		CanonicalResource(account, ref),
		p.Identifier,
		"", // sip
		"", // spr
		p.Version,
		"", // rscc
		"", // rscd
		"", // rsce
		"", // rscl
		"", // rsct
	}, "\n")
}

// Verify recomputes the signature of p for ref and compares in constant time.
func Verify(cred *SharedKeyCredential, ref model.ResourceRef, p QueryParameters) bool {
	expected := cred.ComputeHMACSHA256(StringToSign(cred.AccountName(), ref, p))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(p.Signature)) == 1
}
