// sas/query.go
package sas

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

const (
	// Version is the only signed version (sv) issued and accepted.
	Version = "2016-05-31"

	// TimeFormat is the ISO-8601 form used for st and se.
	TimeFormat = "2006-01-02T15:04:05Z"
)

// Query parameter names.
const (
	paramVersion     = "sv"
	paramResource    = "sr"
	paramStart       = "st"
	paramExpiry      = "se"
	paramPermissions = "sp"
	paramIdentifier  = "si"
	paramSignature   = "sig"
)

var signedParams = []string{paramVersion, paramResource, paramStart, paramExpiry, paramPermissions, paramIdentifier, paramSignature}

// QueryParameters is a signed token as it travels in a URI query string.
// Zero times and empty strings mean the parameter is absent.
type QueryParameters struct {
	Version     string
	Resource    model.ResourceType
	Start       time.Time
	Expiry      time.Time
	Permissions string
	Identifier  string
	Signature   string
}

// HasSignature reports whether the query carries SAS fields at all.
func HasSignature(query url.Values) bool {
	return query.Get(paramSignature) != ""
}

// ParseQueryParameters extracts a token from a request query.
func ParseQueryParameters(query url.Values) (QueryParameters, error) {
	p := QueryParameters{
		Version:     query.Get(paramVersion),
		Resource:    model.ResourceType(query.Get(paramResource)),
		Permissions: query.Get(paramPermissions),
		Identifier:  query.Get(paramIdentifier),
		Signature:   query.Get(paramSignature),
	}
	if p.Signature == "" {
		return p, fmt.Errorf("%w: missing %s", sas_errors.ErrMalformedToken, paramSignature)
	}
	var err error
	if p.Start, err = parseTime(query.Get(paramStart)); err != nil {
		return p, fmt.Errorf("%w: %s: %v", sas_errors.ErrMalformedToken, paramStart, err)
	}
	if p.Expiry, err = parseTime(query.Get(paramExpiry)); err != nil {
		return p, fmt.Errorf("%w: %s: %v", sas_errors.ErrMalformedToken, paramExpiry, err)
	}
	return p, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeFormat, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// Encode renders the token in the conventional parameter order. Empty
// parameters are omitted.
func (p QueryParameters) Encode() string {
	var b strings.Builder
	add := func(key, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	add(paramVersion, p.Version)
	add(paramResource, string(p.Resource))
	add(paramStart, formatTime(p.Start))
	add(paramExpiry, formatTime(p.Expiry))
	add(paramPermissions, p.Permissions)
	add(paramIdentifier, p.Identifier)
	add(paramSignature, p.Signature)
	return b.String()
}

// StripQueryParameters removes SAS fields from query and returns the rest,
// so request-specific parameters (restype, comp, prefix) survive.
func StripQueryParameters(query url.Values) url.Values {
	rest := url.Values{}
	for k, v := range query {
		rest[k] = v
	}
	for _, k := range signedParams {
		rest.Del(k)
	}
	return rest
}
