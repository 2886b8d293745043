// controller/blob_controller.go
package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
	pdp_model "github.com/dev-mohitbeniwal/blobsas/pdp/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
	"github.com/dev-mohitbeniwal/blobsas/service"
	"github.com/dev-mohitbeniwal/blobsas/util"
)

// Error codes written in the JSON body of failed requests, besides the
// authorization codes of the decision point.
const (
	CodeContainerNotFound      = "ContainerNotFound"
	CodeBlobNotFound           = "BlobNotFound"
	CodeContainerAlreadyExists = "ContainerAlreadyExists"
	CodeConditionNotMet        = "ConditionNotMet"
	CodeInvalidInput           = "InvalidInput"
	CodeInvalidQueryParameter  = "InvalidQueryParameterValue"
	CodeRequestBodyTooLarge    = "RequestBodyTooLarge"
	CodeInternalError          = "InternalError"
)

// MaxBlobSize bounds an upload body.
const MaxBlobSize = 64 << 20

type BlobController struct {
	blobService   service.IBlobService
	accessService service.IAccessService
}

func NewBlobController(blobService service.IBlobService, accessService service.IAccessService) *BlobController {
	return &BlobController{
		blobService:   blobService,
		accessService: accessService,
	}
}

// RegisterRoutes registers the path-style storage API. Container requests
// are dispatched on the restype and comp query parameters.
func (bc *BlobController) RegisterRoutes(r *gin.RouterGroup) {
	r.PUT("/:container", bc.PutContainer)
	r.GET("/:container", bc.GetContainer)
	r.DELETE("/:container", bc.DeleteContainer)

	r.PUT("/:container/*blob", bc.PutBlob)
	r.GET("/:container/*blob", bc.GetBlob)
	r.DELETE("/:container/*blob", bc.DeleteBlob)
}

// PutContainer creates a container or replaces its stored access policies.
func (bc *BlobController) PutContainer(c *gin.Context) {
	container := c.Param("container")
	if c.Query("restype") != "container" {
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "restype=container is required", nil)
		return
	}
	if c.Query("comp") == "acl" {
		bc.setContainerACL(c, container)
		return
	}
	if _, ok := bc.authorize(c, model.OperationCreateContainer, model.ContainerRef(container), ""); !ok {
		return
	}

	created, err := bc.blobService.CreateContainer(c.Request.Context(), container)
	if err != nil {
		respondWithServiceError(c, err, "Failed to create container")
		return
	}
	c.Header("ETag", created.ETag)
	c.JSON(http.StatusCreated, created)
}

// GetContainer lists blobs, returns the stored access policies, or with
// restype=container alone returns the container properties.
func (bc *BlobController) GetContainer(c *gin.Context) {
	container := c.Param("container")
	switch c.Query("comp") {
	case "list":
		bc.listBlobs(c, container)
	case "acl":
		bc.getContainerACL(c, container)
	case "":
		if c.Query("restype") != "container" {
			util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "restype=container is required", nil)
			return
		}
		bc.getContainerProperties(c, container)
	default:
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "comp must be list or acl", nil)
	}
}

func (bc *BlobController) getContainerProperties(c *gin.Context, container string) {
	if _, ok := bc.authorize(c, model.OperationGetContainer, model.ContainerRef(container), ""); !ok {
		return
	}
	props, err := bc.blobService.GetContainer(c.Request.Context(), container)
	if err != nil {
		respondWithServiceError(c, err, "Failed to get container properties")
		return
	}
	c.Header("ETag", props.ETag)
	c.JSON(http.StatusOK, props)
}

func (bc *BlobController) DeleteContainer(c *gin.Context) {
	container := c.Param("container")
	if c.Query("restype") != "container" {
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidQueryParameter, "restype=container is required", nil)
		return
	}
	if _, ok := bc.authorize(c, model.OperationDeleteContainer, model.ContainerRef(container), ""); !ok {
		return
	}

	if err := bc.blobService.DeleteContainer(c.Request.Context(), container); err != nil {
		respondWithServiceError(c, err, "Failed to delete container")
		return
	}
	c.Status(http.StatusAccepted)
}

func (bc *BlobController) listBlobs(c *gin.Context, container string) {
	prefix := c.Query("prefix")
	decision, ok := bc.authorize(c, model.OperationList, model.ContainerRef(container), prefix)
	if !ok {
		return
	}

	list, err := bc.blobService.ListBlobs(c.Request.Context(), container, prefix)
	if err != nil {
		respondWithServiceError(c, err, "Failed to list blobs")
		return
	}
	c.JSON(http.StatusOK, restrictToScope(list, decision.Scope))
}

// restrictToScope keeps only the signed blob when a blob-scoped token lists.
func restrictToScope(list *model.BlobList, scope model.ResourceRef) *model.BlobList {
	if !scope.IsBlob() {
		return list
	}
	kept := make([]model.BlobItem, 0, 1)
	for _, item := range list.Blobs {
		if item.Name == scope.Blob {
			kept = append(kept, item)
		}
	}
	list.Blobs = kept
	return list
}

func (bc *BlobController) getContainerACL(c *gin.Context, container string) {
	if _, ok := bc.authorize(c, model.OperationGetACL, model.ContainerRef(container), ""); !ok {
		return
	}
	acl, err := bc.blobService.GetContainerACL(c.Request.Context(), container)
	if err != nil {
		respondWithServiceError(c, err, "Failed to get container ACL")
		return
	}
	c.Header("ETag", acl.ETag)
	c.JSON(http.StatusOK, acl)
}

func (bc *BlobController) setContainerACL(c *gin.Context, container string) {
	if _, ok := bc.authorize(c, model.OperationSetACL, model.ContainerRef(container), ""); !ok {
		return
	}
	var acl model.ContainerACL
	if err := c.ShouldBindJSON(&acl); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Invalid access policy data", err)
		return
	}

	written, err := bc.blobService.SetContainerACL(c.Request.Context(), container, acl, c.GetHeader("If-Match"))
	if err != nil {
		respondWithServiceError(c, err, "Failed to set container ACL")
		return
	}
	c.Header("ETag", written.ETag)
	c.JSON(http.StatusOK, written)
}

func (bc *BlobController) PutBlob(c *gin.Context) {
	ref := blobRef(c)
	if _, ok := bc.authorize(c, model.OperationWrite, ref, ""); !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBlobSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.RespondWithError(c, http.StatusRequestEntityTooLarge, CodeRequestBodyTooLarge, "Blob exceeds maximum size", err)
			return
		}
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, "Failed to read blob body", err)
		return
	}

	item, err := bc.blobService.PutBlob(c.Request.Context(), ref.Container, ref.Blob, data, c.GetHeader("Content-Type"))
	if err != nil {
		respondWithServiceError(c, err, "Failed to upload blob")
		return
	}
	c.Header("ETag", item.ETag)
	c.JSON(http.StatusCreated, item)
}

func (bc *BlobController) GetBlob(c *gin.Context) {
	ref := blobRef(c)
	if _, ok := bc.authorize(c, model.OperationRead, ref, ""); !ok {
		return
	}

	content, err := bc.blobService.GetBlob(c.Request.Context(), ref.Container, ref.Blob)
	if err != nil {
		respondWithServiceError(c, err, "Failed to download blob")
		return
	}
	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("ETag", content.ETag)
	c.Header("Last-Modified", content.LastModified.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, contentType, content.Data)
}

func (bc *BlobController) DeleteBlob(c *gin.Context) {
	ref := blobRef(c)
	if _, ok := bc.authorize(c, model.OperationDelete, ref, ""); !ok {
		return
	}

	if err := bc.blobService.DeleteBlob(c.Request.Context(), ref.Container, ref.Blob); err != nil {
		respondWithServiceError(c, err, "Failed to delete blob")
		return
	}
	c.Status(http.StatusAccepted)
}

func blobRef(c *gin.Context) model.ResourceRef {
	return model.BlobRef(c.Param("container"), strings.TrimPrefix(c.Param("blob"), "/"))
}

// authorize runs the decision point and writes the 403 itself on a deny.
func (bc *BlobController) authorize(c *gin.Context, op model.Operation, ref model.ResourceRef, prefix string) (*pdp_model.AccessDecision, bool) {
	request := &pdp_model.AccessRequest{
		Operation: op,
		Resource:  ref,
		Prefix:    prefix,
		RequestID: util.GetRequestID(c),
		ClientIP:  c.ClientIP(),
		Timestamp: time.Now(),
	}

	query := c.Request.URL.Query()
	if sas.HasSignature(query) {
		token, err := sas.ParseQueryParameters(query)
		if err != nil {
			util.RespondWithError(c, http.StatusForbidden, pdp_model.CodeAuthenticationFailed, "Malformed shared access signature", err)
			return nil, false
		}
		request.SAS = &token
	} else if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		request.BearerToken = strings.TrimPrefix(auth, "Bearer ")
	}

	decision, err := bc.accessService.Authorize(c.Request.Context(), request)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, "Failed to authorize request", err)
		return nil, false
	}
	if !decision.Allowed() {
		util.RespondWithError(c, http.StatusForbidden, decision.Code, decision.Reason, decision.Err())
		return nil, false
	}
	return decision, true
}

func respondWithServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, sas_errors.ErrContainerNotFound):
		util.RespondWithError(c, http.StatusNotFound, CodeContainerNotFound, "The specified container does not exist", err)
	case errors.Is(err, sas_errors.ErrBlobNotFound):
		util.RespondWithError(c, http.StatusNotFound, CodeBlobNotFound, "The specified blob does not exist", err)
	case errors.Is(err, sas_errors.ErrContainerExists):
		util.RespondWithError(c, http.StatusConflict, CodeContainerAlreadyExists, "The specified container already exists", err)
	case errors.Is(err, sas_errors.ErrACLConflict):
		util.RespondWithError(c, http.StatusPreconditionFailed, CodeConditionNotMet, "The condition specified using HTTP conditional header(s) is not met", err)
	case errors.Is(err, sas_errors.ErrInvalidResource),
		errors.Is(err, sas_errors.ErrInvalidPolicyWindow),
		errors.Is(err, sas_errors.ErrInvalidPermissions),
		errors.Is(err, sas_errors.ErrInvalidStoredPolicy),
		errors.Is(err, sas_errors.ErrTooManyStoredPolicies):
		util.RespondWithError(c, http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, CodeInternalError, message, err)
	}
}
