package dao

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/blobsas/db"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/model"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestContainerDAO(t *testing.T) {
	_, client := newTestClient(t)
	containers := NewContainerDAO(client)
	ctx := context.Background()

	created, err := containers.CreateContainer(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, "sascontainer", created.Name)
	assert.NotEmpty(t, created.ETag)

	_, err = containers.CreateContainer(ctx, "sascontainer")
	assert.ErrorIs(t, err, sas_errors.ErrContainerExists)

	got, err := containers.GetContainer(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, created.ETag, got.ETag)

	_, err = containers.GetContainer(ctx, "missing")
	assert.ErrorIs(t, err, sas_errors.ErrResourceNotFound)
	assert.ErrorIs(t, containers.EnsureExists(ctx, "missing"), sas_errors.ErrContainerNotFound)
	assert.ErrorIs(t, containers.DeleteContainer(ctx, "missing"), sas_errors.ErrContainerNotFound)
}

func TestBlobDAO(t *testing.T) {
	_, client := newTestClient(t)
	containers := NewContainerDAO(client)
	blobs := NewBlobDAO(client, containers, nil)
	ctx := context.Background()

	_, err := blobs.PutBlob(ctx, "sascontainer", "a.txt", []byte("X"), "text/plain")
	assert.ErrorIs(t, err, sas_errors.ErrContainerNotFound)

	_, err = containers.CreateContainer(ctx, "sascontainer")
	require.NoError(t, err)

	for _, name := range []string{"b.txt", "a.txt", "ab/c.txt"} {
		_, err := blobs.PutBlob(ctx, "sascontainer", name, []byte(name), "text/plain")
		require.NoError(t, err)
	}

	t.Run("ListIsLexicographic", func(t *testing.T) {
		items, err := blobs.ListBlobs(ctx, "sascontainer", "")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "a.txt", items[0].Name)
		assert.Equal(t, "ab/c.txt", items[1].Name)
		assert.Equal(t, "b.txt", items[2].Name)
		assert.Equal(t, int64(len("ab/c.txt")), items[1].Size)
	})

	t.Run("ListWithPrefix", func(t *testing.T) {
		items, err := blobs.ListBlobs(ctx, "sascontainer", "ab")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "ab/c.txt", items[0].Name)
	})

	t.Run("OverwriteKeepsOneEntry", func(t *testing.T) {
		first, err := blobs.GetBlob(ctx, "sascontainer", "a.txt")
		require.NoError(t, err)

		_, err = blobs.PutBlob(ctx, "sascontainer", "a.txt", []byte("replaced"), "text/plain")
		require.NoError(t, err)

		got, err := blobs.GetBlob(ctx, "sascontainer", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("replaced"), got.Data)
		assert.Equal(t, int64(8), got.Size)
		assert.NotEqual(t, first.ETag, got.ETag)

		items, err := blobs.ListBlobs(ctx, "sascontainer", "a.txt")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, blobs.DeleteBlob(ctx, "sascontainer", "b.txt"))
		assert.ErrorIs(t, blobs.DeleteBlob(ctx, "sascontainer", "b.txt"), sas_errors.ErrBlobNotFound)

		_, err := blobs.GetBlob(ctx, "sascontainer", "b.txt")
		assert.ErrorIs(t, err, sas_errors.ErrResourceNotFound)
	})

	t.Run("DeleteContainerRemovesBlobs", func(t *testing.T) {
		require.NoError(t, containers.DeleteContainer(ctx, "sascontainer"))
		_, err := containers.CreateContainer(ctx, "sascontainer")
		require.NoError(t, err)

		items, err := blobs.ListBlobs(ctx, "sascontainer", "")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestBlobDAOEncrypted(t *testing.T) {
	mr, client := newTestClient(t)
	cipher, err := db.NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	containers := NewContainerDAO(client)
	blobs := NewBlobDAO(client, containers, cipher)
	ctx := context.Background()

	_, err = containers.CreateContainer(ctx, "sascontainer")
	require.NoError(t, err)
	_, err = blobs.PutBlob(ctx, "sascontainer", "secret.txt", []byte("plaintext"), "")
	require.NoError(t, err)

	raw := mr.HGet(blobKey("sascontainer", "secret.txt"), fieldData)
	assert.NotContains(t, raw, "plaintext")

	got, err := blobs.GetBlob(ctx, "sascontainer", "secret.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), got.Data)
	assert.Equal(t, int64(9), got.Size)
}

func TestRedisPolicyStore(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRedisPolicyStore(client)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	acl, err := store.GetACL(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Empty(t, acl.SignedIdentifiers)
	assert.Equal(t, model.InitialACLETag, acl.ETag)

	acl.Upsert(model.SignedIdentifier{ID: "tutorialpolicy", AccessPolicy: model.NewAccessPolicy(model.PermissionRead|model.PermissionList, nil, expiry)})
	written, err := store.SetACL(ctx, "sascontainer", *acl, acl.ETag)
	require.NoError(t, err)
	assert.NotEmpty(t, written.ETag)

	got, err := store.GetACL(ctx, "sascontainer")
	require.NoError(t, err)
	assert.Equal(t, written.ETag, got.ETag)
	found, ok := got.Find("tutorialpolicy")
	require.True(t, ok)
	assert.Equal(t, "rl", found.AccessPolicy.Permissions.String())
	assert.True(t, found.AccessPolicy.Expiry.Equal(expiry.UTC().Truncate(time.Second)))

	t.Run("StaleETagConflicts", func(t *testing.T) {
		_, err := store.SetACL(ctx, "sascontainer", model.ContainerACL{}, "stale-etag")
		assert.ErrorIs(t, err, sas_errors.ErrACLConflict)
	})

	t.Run("EmptyIfMatchOverwrites", func(t *testing.T) {
		cleared, err := store.SetACL(ctx, "sascontainer", model.ContainerACL{}, "")
		require.NoError(t, err)
		assert.Empty(t, cleared.SignedIdentifiers)
		assert.NotEqual(t, written.ETag, cleared.ETag)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteACL(ctx, "sascontainer"))
		got, err := store.GetACL(ctx, "sascontainer")
		require.NoError(t, err)
		assert.Equal(t, model.InitialACLETag, got.ETag)
	})
}

func TestRedisPolicyStoreFirstWriteIsConditional(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRedisPolicyStore(client)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	first, err := store.GetACL(ctx, "sascontainer")
	require.NoError(t, err)
	second, err := store.GetACL(ctx, "sascontainer")
	require.NoError(t, err)

	first.Upsert(model.SignedIdentifier{ID: "p1", AccessPolicy: model.NewAccessPolicy(model.PermissionRead, nil, expiry)})
	_, err = store.SetACL(ctx, "sascontainer", *first, first.ETag)
	require.NoError(t, err)

	second.Upsert(model.SignedIdentifier{ID: "p2", AccessPolicy: model.NewAccessPolicy(model.PermissionList, nil, expiry)})
	_, err = store.SetACL(ctx, "sascontainer", *second, second.ETag)
	assert.ErrorIs(t, err, sas_errors.ErrACLConflict)

	got, err := store.GetACL(ctx, "sascontainer")
	require.NoError(t, err)
	_, ok := got.Find("p1")
	assert.True(t, ok)
}
