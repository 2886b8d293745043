// errors/resource_errors.go

package errors

import (
	"errors"
	"fmt"
)

var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTransport          = errors.New("transport error")

	ErrContainerNotFound = fmt.Errorf("container not found: %w", ErrResourceNotFound)
	ErrBlobNotFound      = fmt.Errorf("blob not found: %w", ErrResourceNotFound)
	ErrContainerExists   = errors.New("container already exists")
	ErrInvalidResource   = errors.New("invalid resource name")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
)
