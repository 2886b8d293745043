// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Actions recorded besides per-request access decisions.
const (
	ActionContainerCreated = "container.created"
	ActionContainerDeleted = "container.deleted"
	ActionACLUpdated       = "acl.updated"
)

// AuditLog is one indexed record: an authorization decision on a storage
// request, or a change to a container or its stored policies.
type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	RequestID     string          `json:"request_id,omitempty"`
	Principal     string          `json:"principal"`
	Action        string          `json:"action"`
	ResourceID    string          `json:"resource_id"`
	AccessGranted bool            `json:"access_granted"`
	PolicyID      string          `json:"policy_id,omitempty"`
	Code          string          `json:"code,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	ClientIP      string          `json:"client_ip,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
