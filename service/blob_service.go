package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/audit"
	"github.com/dev-mohitbeniwal/blobsas/dao"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

// IBlobService is the storage surface behind the HTTP API. Authorization
// happens before any of these calls.
type IBlobService interface {
	CreateContainer(ctx context.Context, name string) (*model.Container, error)
	GetContainer(ctx context.Context, name string) (*model.Container, error)
	DeleteContainer(ctx context.Context, name string) error
	GetContainerACL(ctx context.Context, container string) (*model.ContainerACL, error)
	SetContainerACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error)
	ListBlobs(ctx context.Context, container, prefix string) (*model.BlobList, error)
	PutBlob(ctx context.Context, container, name string, data []byte, contentType string) (*model.BlobItem, error)
	GetBlob(ctx context.Context, container, name string) (*model.BlobContent, error)
	DeleteBlob(ctx context.Context, container, name string) error
}

// ChangeEvent is the payload of container and ACL events.
type ChangeEvent struct {
	Container string              `json:"container"`
	ACL       *model.ContainerACL `json:"acl,omitempty"`
}

type BlobService struct {
	containers   *dao.ContainerDAO
	blobs        *dao.BlobDAO
	policies     dao.PolicyStore
	maxPolicies  int
	auditService audit.Service
	eventBus     *util.EventBus
}

func NewBlobService(containers *dao.ContainerDAO, blobs *dao.BlobDAO, policies dao.PolicyStore, maxPolicies int, auditService audit.Service, eventBus *util.EventBus) *BlobService {
	s := &BlobService{
		containers:   containers,
		blobs:        blobs,
		policies:     policies,
		maxPolicies:  maxPolicies,
		auditService: auditService,
		eventBus:     eventBus,
	}

	eventBus.Subscribe(audit.ActionContainerCreated, s.auditChange)
	eventBus.Subscribe(audit.ActionContainerDeleted, s.auditChange)
	eventBus.Subscribe(audit.ActionACLUpdated, s.auditChange)
	return s
}

func (s *BlobService) auditChange(ctx context.Context, event util.Event) error {
	change, ok := event.Payload.(ChangeEvent)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	details, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return s.auditService.LogAccess(ctx, audit.AuditLog{
		Principal:     "account",
		Action:        event.Type,
		ResourceID:    change.Container,
		AccessGranted: true,
		ChangeDetails: details,
	})
}

func (s *BlobService) CreateContainer(ctx context.Context, name string) (*model.Container, error) {
	if err := model.ContainerRef(name).Validate(); err != nil {
		return nil, err
	}
	container, err := s.containers.CreateContainer(ctx, name)
	if err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, audit.ActionContainerCreated, ChangeEvent{Container: name})
	return container, nil
}

func (s *BlobService) GetContainer(ctx context.Context, name string) (*model.Container, error) {
	if err := model.ContainerRef(name).Validate(); err != nil {
		return nil, err
	}
	return s.containers.GetContainer(ctx, name)
}

func (s *BlobService) DeleteContainer(ctx context.Context, name string) error {
	if err := s.containers.DeleteContainer(ctx, name); err != nil {
		return err
	}
	if err := s.policies.DeleteACL(ctx, name); err != nil {
		logger.Warn("Failed to delete stored policies of removed container", zap.Error(err), zap.String("container", name))
	}
	s.eventBus.Publish(ctx, audit.ActionContainerDeleted, ChangeEvent{Container: name})
	return nil
}

func (s *BlobService) GetContainerACL(ctx context.Context, container string) (*model.ContainerACL, error) {
	if err := s.containers.EnsureExists(ctx, container); err != nil {
		return nil, err
	}
	return s.policies.GetACL(ctx, container)
}

func (s *BlobService) SetContainerACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error) {
	if err := s.containers.EnsureExists(ctx, container); err != nil {
		return nil, err
	}
	if err := acl.Validate(s.maxPolicies); err != nil {
		return nil, err
	}
	written, err := s.policies.SetACL(ctx, container, acl, ifMatch)
	if err != nil {
		return nil, err
	}
	s.eventBus.Publish(ctx, audit.ActionACLUpdated, ChangeEvent{Container: container, ACL: written})
	return written, nil
}

func (s *BlobService) ListBlobs(ctx context.Context, container, prefix string) (*model.BlobList, error) {
	items, err := s.blobs.ListBlobs(ctx, container, prefix)
	if err != nil {
		return nil, err
	}
	return &model.BlobList{Container: container, Prefix: prefix, Blobs: items}, nil
}

func (s *BlobService) PutBlob(ctx context.Context, container, name string, data []byte, contentType string) (*model.BlobItem, error) {
	if err := validateBlobName(container, name); err != nil {
		return nil, err
	}
	return s.blobs.PutBlob(ctx, container, name, data, contentType)
}

func (s *BlobService) GetBlob(ctx context.Context, container, name string) (*model.BlobContent, error) {
	if err := validateBlobName(container, name); err != nil {
		return nil, err
	}
	return s.blobs.GetBlob(ctx, container, name)
}

func (s *BlobService) DeleteBlob(ctx context.Context, container, name string) error {
	if err := validateBlobName(container, name); err != nil {
		return err
	}
	return s.blobs.DeleteBlob(ctx, container, name)
}

func validateBlobName(container, name string) error {
	if name == "" {
		return fmt.Errorf("blob name is required: %w", sas_errors.ErrInvalidResource)
	}
	return model.BlobRef(container, name).Validate()
}
