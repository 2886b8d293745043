package model

import (
	"time"

	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

// AccessRequest is one storage request as seen by the decision point.
type AccessRequest struct {
	Operation model.Operation   `json:"operation"`
	Resource  model.ResourceRef `json:"resource"`
	// Prefix is the listing prefix; a blob-scoped token may only list its own blob.
	Prefix      string               `json:"prefix,omitempty"`
	SAS         *sas.QueryParameters `json:"-"`
	BearerToken string               `json:"-"`
	RequestID   string               `json:"request_id,omitempty"`
	ClientIP    string               `json:"client_ip,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}
