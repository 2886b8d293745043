// model/resource.go
package model

import (
	"fmt"
	"strings"
	"time"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
)

// ResourceType is the signed resource (sr) of a shared access signature.
type ResourceType string

const (
	ResourceContainer ResourceType = "c"
	ResourceBlob      ResourceType = "b"
)

// ResourceRef identifies a container, or a blob inside it when Blob is set.
type ResourceRef struct {
	Container string `json:"container"`
	Blob      string `json:"blob,omitempty"`
}

func ContainerRef(container string) ResourceRef {
	return ResourceRef{Container: container}
}

func BlobRef(container, blob string) ResourceRef {
	return ResourceRef{Container: container, Blob: blob}
}

func (r ResourceRef) Type() ResourceType {
	if r.Blob == "" {
		return ResourceContainer
	}
	return ResourceBlob
}

func (r ResourceRef) IsBlob() bool {
	return r.Blob != ""
}

// Path is the URL path of the resource relative to the service endpoint.
func (r ResourceRef) Path() string {
	if r.Blob == "" {
		return "/" + r.Container
	}
	return "/" + r.Container + "/" + r.Blob
}

func (r ResourceRef) String() string {
	return strings.TrimPrefix(r.Path(), "/")
}

// Validate applies the container naming rules: 3-63 characters of lowercase
// letters, digits and single hyphens, starting and ending alphanumeric.
func (r ResourceRef) Validate() error {
	name := r.Container
	if len(name) < 3 || len(name) > 63 {
		return fmt.Errorf("container name %q must be 3-63 characters: %w", name, sas_errors.ErrInvalidResource)
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		case ch == '-':
			if i == 0 || i == len(name)-1 || name[i-1] == '-' {
				return fmt.Errorf("container name %q has a misplaced hyphen: %w", name, sas_errors.ErrInvalidResource)
			}
		default:
			return fmt.Errorf("container name %q has invalid character %q: %w", name, ch, sas_errors.ErrInvalidResource)
		}
	}
	if len(r.Blob) > 1024 {
		return fmt.Errorf("blob name exceeds 1024 characters: %w", sas_errors.ErrInvalidResource)
	}
	return nil
}

// Container is a named collection of blobs.
type Container struct {
	Name      string    `json:"name"`
	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlobItem is one entry of a container listing.
type BlobItem struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"lastModified"`
}

// BlobContent is a downloaded blob.
type BlobContent struct {
	BlobItem
	Data []byte `json:"-"`
}

// BlobList is the listing response body.
type BlobList struct {
	Container string     `json:"container"`
	Prefix    string     `json:"prefix,omitempty"`
	Blobs     []BlobItem `json:"blobs"`
}
