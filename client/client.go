// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

// BearerTTL is the lifetime of the account bearer token minted per request.
const BearerTTL = 5 * time.Minute

// Client talks to the storage service either with the account credential or
// with a single shared access signature. It never retries.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client

	credential *sas.SharedKeyCredential
	token      *sas.QueryParameters
}

// NewWithAccount returns a client that authenticates every call with an
// account bearer token.
func NewWithAccount(endpoint string, cred *sas.SharedKeyCredential, httpClient *http.Client) *Client {
	return &Client{Endpoint: endpoint, HTTPClient: httpClient, credential: cred}
}

// NewWithSAS returns a client that appends token to every call.
func NewWithSAS(endpoint string, token sas.QueryParameters, httpClient *http.Client) *Client {
	return &Client{Endpoint: endpoint, HTTPClient: httpClient, token: &token}
}

// NewFromSignedURI splits a signed URI into a SAS client and the resource the
// token was issued for.
func NewFromSignedURI(signedURI string, httpClient *http.Client) (*Client, model.ResourceRef, error) {
	parsed, err := sas.ParseSignedURI(signedURI)
	if err != nil {
		return nil, model.ResourceRef{}, err
	}
	return NewWithSAS(parsed.Endpoint, parsed.Token, httpClient), parsed.Resource, nil
}

type request struct {
	method      string
	resource    model.ResourceRef
	query       url.Values
	body        []byte
	contentType string
	headers     map[string]string
}

func (c *Client) url(ref model.ResourceRef, query url.Values) string {
	u := sas.ResourceURI(c.Endpoint, ref)
	encoded := query.Encode()
	if c.token != nil {
		if encoded != "" {
			encoded += "&"
		}
		encoded += c.token.Encode()
	}
	if encoded == "" {
		return u
	}
	return u + "?" + encoded
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.resource, r.query), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if c.credential != nil {
		bearer, err := c.credential.BearerToken(BearerTTL)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", sas_errors.ErrTransport, r.method, r.resource, err)
	}
	logger.Debug("Storage request completed",
		zap.String("method", r.method),
		zap.String("resource", r.resource.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, readStorageError(resp)
	}
	return resp, nil
}

func readStorageError(resp *http.Response) error {
	storageErr := &StorageError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("x-ms-request-id"),
	}
	data, _ := io.ReadAll(resp.Body)
	var body struct {
		Code    string `json:"code"`
		Message string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		storageErr.Code = body.Code
		storageErr.Message = body.Message
	}
	if storageErr.Message == "" {
		storageErr.Message = strings.TrimSpace(string(data))
	}
	if storageErr.Message == "" {
		storageErr.Message = resp.Status
	}
	return storageErr
}

func (c *Client) doJSON(ctx context.Context, r request, out any) (*http.Response, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if out == nil {
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", sas_errors.ErrTransport, err)
	}
	return resp, nil
}

func containerQuery(comp string) url.Values {
	q := url.Values{"restype": {"container"}}
	if comp != "" {
		q.Set("comp", comp)
	}
	return q
}

func (c *Client) CreateContainer(ctx context.Context, container string) (*model.Container, error) {
	var created model.Container
	_, err := c.doJSON(ctx, request{
		method:   http.MethodPut,
		resource: model.ContainerRef(container),
		query:    containerQuery(""),
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetContainerProperties returns the container's creation time and ETag.
func (c *Client) GetContainerProperties(ctx context.Context, container string) (*model.Container, error) {
	var props model.Container
	_, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		resource: model.ContainerRef(container),
		query:    containerQuery(""),
	}, &props)
	if err != nil {
		return nil, err
	}
	return &props, nil
}

// CreateContainerIfNotExists reports whether the container was created by
// this call.
func (c *Client) CreateContainerIfNotExists(ctx context.Context, container string) (bool, error) {
	_, err := c.CreateContainer(ctx, container)
	if errors.Is(err, sas_errors.ErrContainerExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) DeleteContainer(ctx context.Context, container string) error {
	_, err := c.doJSON(ctx, request{
		method:   http.MethodDelete,
		resource: model.ContainerRef(container),
		query:    containerQuery(""),
	}, nil)
	return err
}

// UploadBlob creates or overwrites a blob.
func (c *Client) UploadBlob(ctx context.Context, blob model.ResourceRef, data []byte, contentType string) (*model.BlobItem, error) {
	if data == nil {
		data = []byte{}
	}
	var item model.BlobItem
	_, err := c.doJSON(ctx, request{
		method:      http.MethodPut,
		resource:    blob,
		body:        data,
		contentType: contentType,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DownloadBlob(ctx context.Context, blob model.ResourceRef) (*model.BlobContent, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, resource: blob})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read blob body: %v", sas_errors.ErrTransport, err)
	}
	content := &model.BlobContent{
		BlobItem: model.BlobItem{
			Name:        blob.Blob,
			Size:        int64(len(data)),
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
		},
		Data: data,
	}
	if modified, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		content.LastModified = modified
	}
	return content, nil
}

// ListBlobs returns the container entries whose names start with prefix, in
// lexicographic order.
func (c *Client) ListBlobs(ctx context.Context, container, prefix string) ([]model.BlobItem, error) {
	query := containerQuery("list")
	if prefix != "" {
		query.Set("prefix", prefix)
	}
	var list model.BlobList
	_, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		resource: model.ContainerRef(container),
		query:    query,
	}, &list)
	if err != nil {
		return nil, err
	}
	return list.Blobs, nil
}

func (c *Client) DeleteBlob(ctx context.Context, blob model.ResourceRef) error {
	_, err := c.doJSON(ctx, request{method: http.MethodDelete, resource: blob}, nil)
	return err
}

// GetContainerACL returns the stored access policies with the ETag to pass
// back to SetContainerACL.
func (c *Client) GetContainerACL(ctx context.Context, container string) (*model.ContainerACL, error) {
	var acl model.ContainerACL
	resp, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		resource: model.ContainerRef(container),
		query:    containerQuery("acl"),
	}, &acl)
	if err != nil {
		return nil, err
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		acl.ETag = etag
	}
	return &acl, nil
}

// SetContainerACL replaces the stored access policies. A non-empty ifMatch
// makes the write fail with ErrACLConflict when the ACL changed since it was
// read.
func (c *Client) SetContainerACL(ctx context.Context, container string, acl model.ContainerACL, ifMatch string) (*model.ContainerACL, error) {
	body, err := json.Marshal(model.ContainerACL{SignedIdentifiers: acl.SignedIdentifiers})
	if err != nil {
		return nil, fmt.Errorf("encode acl: %w", err)
	}
	headers := map[string]string{}
	if ifMatch != "" {
		headers["If-Match"] = ifMatch
	}
	var written model.ContainerACL
	_, err = c.doJSON(ctx, request{
		method:      http.MethodPut,
		resource:    model.ContainerRef(container),
		query:       containerQuery("acl"),
		body:        body,
		contentType: "application/json",
		headers:     headers,
	}, &written)
	if err != nil {
		return nil, err
	}
	return &written, nil
}
