// client/errors.go
package client

import (
	"fmt"
	"net/http"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
)

// StorageError is a non-2xx response from the storage service.
type StorageError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *StorageError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("storage request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("storage request failed with status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the response onto the sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *StorageError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return sas_errors.ErrAuthorizationDenied
	case http.StatusNotFound:
		switch e.Code {
		case "ContainerNotFound":
			return sas_errors.ErrContainerNotFound
		case "BlobNotFound":
			return sas_errors.ErrBlobNotFound
		}
		return sas_errors.ErrResourceNotFound
	case http.StatusConflict:
		return sas_errors.ErrContainerExists
	case http.StatusPreconditionFailed:
		return sas_errors.ErrACLConflict
	case http.StatusBadRequest:
		return sas_errors.ErrInvalidResource
	}
	if e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests {
		return sas_errors.ErrInternalServer
	}
	return nil
}
