// consumer/result.go
package consumer

import (
	"errors"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

type Operation string

const (
	OperationWrite  Operation = "Write"
	OperationList   Operation = "List"
	OperationRead   Operation = "Read"
	OperationDelete Operation = "Delete"
)

// FailureReason classifies a failed operation.
type FailureReason string

const (
	ReasonAuthorizationDenied FailureReason = "AuthorizationDenied"
	ReasonResourceNotFound    FailureReason = "ResourceNotFound"
	ReasonPreconditionFailed  FailureReason = "PreconditionFailed"
	ReasonTransportError      FailureReason = "TransportError"
)

// OperationResult is the outcome of one step. Reason and Message are empty on
// success; Bytes is set by Read, Entries by List.
type OperationResult struct {
	Operation Operation     `json:"operation"`
	Succeeded bool          `json:"succeeded"`
	Reason    FailureReason `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	Target    string        `json:"target,omitempty"`
	Bytes     int64         `json:"bytes,omitempty"`
	Entries   int           `json:"entries,omitempty"`
}

// Report collects the results of exercising one signed URI. Err is set only
// when the URI could not be used at all.
type Report struct {
	URI      string            `json:"uri"`
	Resource model.ResourceRef `json:"resource"`
	Results  []OperationResult `json:"results"`
	Err      error             `json:"-"`
}

// Result returns the outcome of op.
func (r Report) Result(op Operation) (OperationResult, bool) {
	for _, result := range r.Results {
		if result.Operation == op {
			return result, true
		}
	}
	return OperationResult{}, false
}

func succeeded(op Operation, target string) OperationResult {
	return OperationResult{Operation: op, Succeeded: true, Target: target}
}

func failed(op Operation, target string, err error) OperationResult {
	return OperationResult{Operation: op, Target: target, Reason: Classify(err), Message: err.Error()}
}

func preconditionFailed(op Operation, message string) OperationResult {
	return OperationResult{Operation: op, Reason: ReasonPreconditionFailed, Message: message}
}

// Classify maps a client error onto a failure reason. Anything unrecognised
// is a transport or backend failure.
func Classify(err error) FailureReason {
	switch {
	case errors.Is(err, sas_errors.ErrAuthorizationDenied):
		return ReasonAuthorizationDenied
	case errors.Is(err, sas_errors.ErrResourceNotFound):
		return ReasonResourceNotFound
	case errors.Is(err, sas_errors.ErrPreconditionFailed), errors.Is(err, sas_errors.ErrACLConflict):
		return ReasonPreconditionFailed
	default:
		return ReasonTransportError
	}
}
