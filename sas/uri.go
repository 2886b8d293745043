// sas/uri.go
package sas

import (
	"fmt"
	"net/url"
	"strings"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

// ResourceURI joins the service endpoint and the resource path.
func ResourceURI(endpoint string, ref model.ResourceRef) string {
	return strings.TrimRight(endpoint, "/") + (&url.URL{Path: ref.Path()}).EscapedPath()
}

// SignedURI appends the encoded token to the resource URI.
func SignedURI(endpoint string, ref model.ResourceRef, p QueryParameters) string {
	return ResourceURI(endpoint, ref) + "?" + p.Encode()
}

// ParsedURI is a signed URI split into its parts.
type ParsedURI struct {
	Endpoint string
	Resource model.ResourceRef
	Token    QueryParameters
}

// ParseSignedURI splits a signed URI whose path is /{container}[/{blob...}]
// directly under the endpoint.
func ParseSignedURI(raw string) (*ParsedURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrMalformedToken, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URI", sas_errors.ErrMalformedToken, raw)
	}
	token, err := ParseQueryParameters(u.Query())
	if err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("%w: no container in %q", sas_errors.ErrMalformedToken, raw)
	}
	ref := model.ResourceRef{Container: path}
	if i := strings.IndexByte(path, '/'); i >= 0 {
		ref = model.ResourceRef{Container: path[:i], Blob: path[i+1:]}
	}
	return &ParsedURI{
		Endpoint: u.Scheme + "://" + u.Host,
		Resource: ref,
		Token:    token,
	}, nil
}
