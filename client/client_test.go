package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/blobsas/client"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
	"github.com/dev-mohitbeniwal/blobsas/test/backend"
)

func TestAccountClient(t *testing.T) {
	b := backend.Start(t)
	ctx := context.Background()
	c := client.NewWithAccount(b.Server.URL, b.Credential, b.Server.Client())

	created, err := c.CreateContainerIfNotExists(ctx, "sascontainer")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = c.CreateContainerIfNotExists(ctx, "sascontainer")
	require.NoError(t, err)
	assert.False(t, created)

	props, err := c.GetContainerProperties(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, "sascontainer", props.Name)
	assert.NotEmpty(t, props.ETag)
	assert.False(t, props.CreatedAt.IsZero())
	_, err = c.GetContainerProperties(ctx, "missing")
	assert.ErrorIs(t, err, sas_errors.ErrContainerNotFound)

	blob := model.BlobRef("sascontainer", "folder/sasblob.txt")
	item, err := c.UploadBlob(ctx, blob, []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Size)

	content, err := c.DownloadBlob(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content.Data))
	assert.Equal(t, "text/plain", content.ContentType)
	assert.False(t, content.LastModified.IsZero())

	items, err := c.ListBlobs(ctx, "sascontainer", "folder/")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "folder/sasblob.txt", items[0].Name)

	acl, err := c.GetContainerACL(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, model.InitialACLETag, acl.ETag)
	acl.Upsert(model.SignedIdentifier{ID: "tutorialpolicy", AccessPolicy: model.NewAccessPolicy(model.PermissionRead, nil, time.Now().Add(time.Hour))})
	written, err := c.SetContainerACL(ctx, "sascontainer", *acl, acl.ETag)
	require.NoError(t, err)
	require.NotEmpty(t, written.ETag)

	current, err := c.GetContainerACL(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, written.ETag, current.ETag)
	require.Len(t, current.SignedIdentifiers, 1)

	_, err = c.SetContainerACL(ctx, "sascontainer", *current, current.ETag)
	require.NoError(t, err)
	_, err = c.SetContainerACL(ctx, "sascontainer", *current, current.ETag)
	assert.ErrorIs(t, err, sas_errors.ErrACLConflict)

	require.NoError(t, c.DeleteBlob(ctx, blob))
	err = c.DeleteBlob(ctx, blob)
	assert.ErrorIs(t, err, sas_errors.ErrBlobNotFound)
	assert.ErrorIs(t, err, sas_errors.ErrResourceNotFound)

	require.NoError(t, c.DeleteContainer(ctx, "sascontainer"))
	_, err = c.ListBlobs(ctx, "sascontainer", "")
	assert.ErrorIs(t, err, sas_errors.ErrContainerNotFound)
}

func TestSASClient(t *testing.T) {
	b := backend.Start(t)
	ctx := context.Background()
	account := client.NewWithAccount(b.Server.URL, b.Credential, b.Server.Client())
	_, err := account.CreateContainer(ctx, "sascontainer")
	require.NoError(t, err)

	policy := model.NewAccessPolicy(model.PermissionWrite|model.PermissionList, nil, time.Now().Add(time.Hour))
	token, err := sas.SignatureValues{Resource: model.ContainerRef("sascontainer"), Policy: &policy}.Sign(b.Credential)
	require.NoError(t, err)

	c, ref, err := client.NewFromSignedURI(sas.SignedURI(b.Server.URL, model.ContainerRef("sascontainer"), token), b.Server.Client())
	require.NoError(t, err)
	assert.Equal(t, model.ContainerRef("sascontainer"), ref)

	_, err = c.UploadBlob(ctx, model.BlobRef("sascontainer", "a.txt"), []byte("x"), "")
	require.NoError(t, err)

	items, err := c.ListBlobs(ctx, "sascontainer", "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = c.DownloadBlob(ctx, model.BlobRef("sascontainer", "a.txt"))
	assert.ErrorIs(t, err, sas_errors.ErrAuthorizationDenied)
	var storageErr *client.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, http.StatusForbidden, storageErr.StatusCode)
	assert.Equal(t, "AuthorizationPermissionMismatch", storageErr.Code)
	assert.NotEmpty(t, storageErr.RequestID)

	_, err = c.GetContainerACL(ctx, "sascontainer")
	assert.ErrorIs(t, err, sas_errors.ErrAuthorizationDenied)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	c := client.NewWithAccount(endpoint, mustCredential(t), nil)
	_, err := c.ListBlobs(context.Background(), "sascontainer", "")
	assert.ErrorIs(t, err, sas_errors.ErrTransport)
}

func TestStorageErrorWithoutJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := client.NewWithAccount(server.URL, mustCredential(t), server.Client())
	_, err := c.ListBlobs(context.Background(), "sascontainer", "")
	assert.ErrorIs(t, err, sas_errors.ErrInternalServer)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func mustCredential(t *testing.T) *sas.SharedKeyCredential {
	t.Helper()
	cred, err := sas.NewSharedKeyCredential("devstoreaccount1", "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==")
	require.NoError(t, err)
	return cred
}
