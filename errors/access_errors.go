package errors

import "errors"

var (
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrInvalidSignature    = errors.New("signature did not match")
	ErrTokenExpired        = errors.New("shared access signature expired")
	ErrTokenNotYetValid    = errors.New("shared access signature not yet valid")
	ErrMissingCredentials  = errors.New("no credentials supplied")
	ErrInvalidBearerToken  = errors.New("invalid account bearer token")
	ErrUnsupportedVersion  = errors.New("unsupported signed version")
	ErrMalformedToken      = errors.New("malformed shared access signature")
)
