package consumer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/blobsas/client"
	"github.com/dev-mohitbeniwal/blobsas/config"
	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	"github.com/dev-mohitbeniwal/blobsas/issuer"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/test/backend"
)

type fixture struct {
	backend  *backend.Backend
	issuer   *issuer.Issuer
	account  *client.Client
	consumer *Consumer
}

func newFixture(t *testing.T, options ...func(*config.Configuration)) *fixture {
	t.Helper()
	b := backend.Start(t, options...)
	account := client.NewWithAccount(b.Server.URL, b.Credential, b.Server.Client())
	iss, err := issuer.New(b.Config.Storage, account)
	require.NoError(t, err)
	require.NoError(t, iss.EnsureContainer(context.Background(), "sascontainer"))
	return &fixture{
		backend:  b,
		issuer:   iss,
		account:  account,
		consumer: New(b.Config.Consumer, b.Server.Client()),
	}
}

func (f *fixture) containerToken(t *testing.T, permissions model.Permissions) string {
	t.Helper()
	uri, err := f.issuer.IssueContainerToken("sascontainer", permissions, nil, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return uri
}

func (f *fixture) seed(t *testing.T, name, content string) {
	t.Helper()
	_, err := f.account.UploadBlob(context.Background(), model.BlobRef("sascontainer", name), []byte(content), "text/plain")
	require.NoError(t, err)
}

func assertResult(t *testing.T, report Report, op Operation, succeeded bool, reason FailureReason) OperationResult {
	t.Helper()
	result, ok := report.Result(op)
	require.True(t, ok, "missing %s result", op)
	assert.Equal(t, succeeded, result.Succeeded, "%s: %s", op, result.Message)
	assert.Equal(t, reason, result.Reason, "%s: %s", op, result.Message)
	return result
}

func TestListOnlyToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "existing.txt", "seeded")

	report := f.consumer.ExerciseToken(context.Background(), f.containerToken(t, model.PermissionList))
	require.NoError(t, report.Err)

	assertResult(t, report, OperationWrite, false, ReasonAuthorizationDenied)
	list := assertResult(t, report, OperationList, true, "")
	assert.Equal(t, 1, list.Entries)
	assertResult(t, report, OperationRead, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationDelete, false, ReasonAuthorizationDenied)
}

func TestFullPermissionTokenOnEmptyContainer(t *testing.T) {
	f := newFixture(t)

	report := f.consumer.ExerciseToken(context.Background(),
		f.containerToken(t, model.PermissionRead|model.PermissionWrite|model.PermissionDelete|model.PermissionList))

	assertResult(t, report, OperationWrite, true, "")
	list := assertResult(t, report, OperationList, true, "")
	assert.Equal(t, 1, list.Entries)
	read := assertResult(t, report, OperationRead, true, "")
	assert.Equal(t, int64(len(f.backend.Config.Consumer.BlobContent)), read.Bytes)
	assertResult(t, report, OperationDelete, true, "")

	items, err := f.account.ListBlobs(context.Background(), "sascontainer", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWriteListTokenScenario(t *testing.T) {
	f := newFixture(t)

	report := f.consumer.ExerciseToken(context.Background(), f.containerToken(t, model.PermissionWrite|model.PermissionList))

	assertResult(t, report, OperationWrite, true, "")
	assertResult(t, report, OperationList, true, "")
	assertResult(t, report, OperationRead, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationDelete, false, ReasonAuthorizationDenied)
}

func TestDeleteWithWriteConvention(t *testing.T) {
	f := newFixture(t, backend.WithDeleteRequires("w"))

	report := f.consumer.ExerciseToken(context.Background(), f.containerToken(t, model.PermissionWrite|model.PermissionList))

	assertResult(t, report, OperationRead, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationDelete, true, "")
}

func TestEmptyContainerReadIsPreconditionFailure(t *testing.T) {
	f := newFixture(t)

	report := f.consumer.ExerciseToken(context.Background(), f.containerToken(t, model.PermissionRead|model.PermissionList|model.PermissionDelete))

	assertResult(t, report, OperationWrite, false, ReasonAuthorizationDenied)
	list := assertResult(t, report, OperationList, true, "")
	assert.Zero(t, list.Entries)
	assertResult(t, report, OperationRead, false, ReasonPreconditionFailed)
	assertResult(t, report, OperationDelete, false, ReasonPreconditionFailed)
}

func TestBlobTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blob := model.BlobRef("sascontainer", "sasblob.txt")

	uri, err := f.issuer.IssueBlobToken(blob, model.PermissionRead|model.PermissionWrite, nil, time.Now().Add(time.Hour))
	require.NoError(t, err)
	storage, ref, err := client.NewFromSignedURI(uri, f.backend.Server.Client())
	require.NoError(t, err)

	_, err = storage.UploadBlob(ctx, ref, []byte("X"), "")
	require.NoError(t, err)
	content, err := storage.DownloadBlob(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("X"), content.Data)
	assert.Equal(t, int64(len("X")), content.Size)

	_, err = storage.DownloadBlob(ctx, model.BlobRef("sascontainer", "other.txt"))
	assert.ErrorIs(t, err, sas_errors.ErrAuthorizationDenied)
}

func TestBlobTokenListsOnlyItsBlob(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "sasblob.txt", "seeded")
	f.seed(t, "sasblob.txt.bak", "neighbour")

	uri, err := f.issuer.IssueBlobToken(model.BlobRef("sascontainer", "sasblob.txt"),
		model.PermissionRead|model.PermissionWrite|model.PermissionList, nil, time.Now().Add(time.Hour))
	require.NoError(t, err)

	report := f.consumer.ExerciseToken(context.Background(), uri)

	write := assertResult(t, report, OperationWrite, true, "")
	assert.Equal(t, "sascontainer/sasblob.txt", write.Target)
	list := assertResult(t, report, OperationList, true, "")
	assert.Equal(t, 1, list.Entries)
	read := assertResult(t, report, OperationRead, true, "")
	assert.Equal(t, int64(len(f.backend.Config.Consumer.BlobContent)), read.Bytes)
	assertResult(t, report, OperationDelete, false, ReasonAuthorizationDenied)
}

func TestRevokedStoredPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "existing.txt", "seeded")

	policy := model.NewAccessPolicy(model.PermissionRead|model.PermissionWrite|model.PermissionList, nil, time.Now().Add(24*time.Hour))
	require.NoError(t, f.issuer.RegisterPolicy(ctx, "sascontainer", "tutorialpolicy", policy, true))
	uri, err := f.issuer.IssueTokenFromPolicy(model.ContainerRef("sascontainer"), "tutorialpolicy")
	require.NoError(t, err)

	report := f.consumer.ExerciseToken(ctx, uri)
	assertResult(t, report, OperationWrite, true, "")
	assertResult(t, report, OperationList, true, "")
	assertResult(t, report, OperationRead, true, "")

	require.NoError(t, f.issuer.RevokePolicy(ctx, "sascontainer", "tutorialpolicy"))

	report = f.consumer.ExerciseToken(ctx, uri)
	assertResult(t, report, OperationWrite, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationList, false, ReasonAuthorizationDenied)

	storage, _, err := client.NewFromSignedURI(uri, f.backend.Server.Client())
	require.NoError(t, err)
	_, err = storage.DownloadBlob(ctx, model.BlobRef("sascontainer", "existing.txt"))
	assert.ErrorIs(t, err, sas_errors.ErrAuthorizationDenied)
}

func TestExpiredToken(t *testing.T) {
	f := newFixture(t)
	start := time.Now().Add(-2 * time.Hour)
	uri, err := f.issuer.IssueContainerToken("sascontainer", model.PermissionWrite|model.PermissionList, &start, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	report := f.consumer.ExerciseToken(context.Background(), uri)

	assertResult(t, report, OperationWrite, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationList, false, ReasonAuthorizationDenied)
	assertResult(t, report, OperationRead, false, ReasonPreconditionFailed)
}

func TestStaleListEntryIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "racy.txt", "gone soon")

	uri := f.containerToken(t, model.PermissionRead|model.PermissionDelete|model.PermissionList)
	storage, ref, err := client.NewFromSignedURI(uri, f.backend.Server.Client())
	require.NoError(t, err)

	entries, list := f.consumer.list(ctx, storage, ref)
	require.True(t, list.Succeeded)
	require.NoError(t, f.account.DeleteBlob(ctx, model.BlobRef("sascontainer", "racy.txt")))

	read := f.consumer.read(ctx, storage, ref.Container, entries, list)
	assert.Equal(t, ReasonResourceNotFound, read.Reason)
	del := f.consumer.delete(ctx, storage, ref.Container, entries, list)
	assert.Equal(t, ReasonResourceNotFound, del.Reason)
}

func TestTransportFailure(t *testing.T) {
	f := newFixture(t)
	uri := f.containerToken(t, model.PermissionWrite|model.PermissionList)
	f.backend.Server.Close()

	report := f.consumer.ExerciseToken(context.Background(), uri)

	assertResult(t, report, OperationWrite, false, ReasonTransportError)
	assertResult(t, report, OperationList, false, ReasonTransportError)
	assertResult(t, report, OperationRead, false, ReasonPreconditionFailed)
	assertResult(t, report, OperationDelete, false, ReasonPreconditionFailed)
}

func TestPerCallTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	f := newFixture(t)
	uri := f.containerToken(t, model.PermissionWrite)
	parsedURI := slow.URL + uri[len(f.backend.Server.URL):]

	c := New(config.ConsumerConfig{RequestTimeout: 50 * time.Millisecond, BlobName: "a.txt", BlobContent: "a"}, slow.Client())
	start := time.Now()
	report := c.ExerciseToken(context.Background(), parsedURI)

	assertResult(t, report, OperationWrite, false, ReasonTransportError)
	assertResult(t, report, OperationList, false, ReasonTransportError)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMalformedURI(t *testing.T) {
	c := New(config.ConsumerConfig{RequestTimeout: time.Second}, nil)

	report := c.ExerciseToken(context.Background(), "not a uri")
	assert.ErrorIs(t, report.Err, sas_errors.ErrMalformedToken)
	assert.Empty(t, report.Results)

	report = c.ExerciseToken(context.Background(), "http://localhost/sascontainer?sv=2016-05-31")
	assert.Error(t, report.Err)
}

func TestExerciseAllRedactsSignatures(t *testing.T) {
	f := newFixture(t)
	uris := []string{
		f.containerToken(t, model.PermissionList),
		f.containerToken(t, model.PermissionWrite|model.PermissionList),
	}

	reports := f.consumer.ExerciseAll(context.Background(), uris)
	require.Len(t, reports, 2)
	for _, report := range reports {
		assert.Contains(t, report.URI, "sig=REDACTED")
		assert.Len(t, report.Results, 4)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ReasonAuthorizationDenied, Classify(&client.StorageError{StatusCode: http.StatusForbidden}))
	assert.Equal(t, ReasonResourceNotFound, Classify(&client.StorageError{StatusCode: http.StatusNotFound, Code: "BlobNotFound"}))
	assert.Equal(t, ReasonPreconditionFailed, Classify(sas_errors.ErrPreconditionFailed))
	assert.Equal(t, ReasonTransportError, Classify(&client.StorageError{StatusCode: http.StatusInternalServerError}))
	assert.Equal(t, ReasonTransportError, Classify(context.DeadlineExceeded))
}
