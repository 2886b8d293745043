// consumer/consumer.go
package consumer

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/blobsas/client"
	"github.com/dev-mohitbeniwal/blobsas/config"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
	"github.com/dev-mohitbeniwal/blobsas/model"
	"github.com/dev-mohitbeniwal/blobsas/sas"
)

// Consumer exercises signed URIs without any account credential.
type Consumer struct {
	cfg        config.ConsumerConfig
	httpClient *http.Client
}

func New(cfg config.ConsumerConfig, httpClient *http.Client) *Consumer {
	return &Consumer{cfg: cfg, httpClient: httpClient}
}

// ExerciseToken runs Write, List, Read and Delete in that order against the
// resource of signedURI. A failed step never stops the ones after it; Read
// and Delete target the first entry of the List result.
func (c *Consumer) ExerciseToken(ctx context.Context, signedURI string) Report {
	storage, resource, err := client.NewFromSignedURI(signedURI, c.httpClient)
	report := Report{URI: redact(signedURI), Resource: resource}
	if err != nil {
		logger.Error("Failed to parse signed URI", zap.Error(err))
		report.Err = err
		return report
	}

	write := c.write(ctx, storage, resource)
	entries, list := c.list(ctx, storage, resource)
	read := c.read(ctx, storage, resource.Container, entries, list)
	del := c.delete(ctx, storage, resource.Container, entries, list)

	report.Results = []OperationResult{write, list, read, del}
	log := logger.WithContext(zap.String("uri", report.URI), zap.String("resource", resource.String()))
	for _, result := range report.Results {
		logResult(log, result)
	}
	return report
}

// ExerciseAll runs ExerciseToken for each URI in turn.
func (c *Consumer) ExerciseAll(ctx context.Context, signedURIs []string) []Report {
	reports := make([]Report, 0, len(signedURIs))
	for _, uri := range signedURIs {
		reports = append(reports, c.ExerciseToken(ctx, uri))
	}
	return reports
}

func (c *Consumer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

// write creates the demonstration blob in a container, or overwrites the
// blob itself for a blob-scoped token.
func (c *Consumer) write(ctx context.Context, storage *client.Client, resource model.ResourceRef) OperationResult {
	target := resource
	if !target.IsBlob() {
		target = model.BlobRef(resource.Container, c.cfg.BlobName)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := storage.UploadBlob(ctx, target, []byte(c.cfg.BlobContent), "text/plain"); err != nil {
		return failed(OperationWrite, target.String(), err)
	}
	return succeeded(OperationWrite, target.String())
}

// list enumerates the container, or only the signed blob for a blob-scoped
// token.
func (c *Consumer) list(ctx context.Context, storage *client.Client, resource model.ResourceRef) ([]model.BlobItem, OperationResult) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	entries, err := storage.ListBlobs(ctx, resource.Container, resource.Blob)
	if err != nil {
		return nil, failed(OperationList, resource.String(), err)
	}
	result := succeeded(OperationList, resource.String())
	result.Entries = len(entries)
	return entries, result
}

func firstEntry(op Operation, container string, entries []model.BlobItem, list OperationResult) (model.ResourceRef, *OperationResult) {
	if !list.Succeeded {
		r := preconditionFailed(op, "no target: list did not succeed")
		return model.ResourceRef{}, &r
	}
	if len(entries) == 0 {
		r := preconditionFailed(op, "no target: list returned no entries")
		return model.ResourceRef{}, &r
	}
	return model.BlobRef(container, entries[0].Name), nil
}

func (c *Consumer) read(ctx context.Context, storage *client.Client, container string, entries []model.BlobItem, list OperationResult) OperationResult {
	target, precondition := firstEntry(OperationRead, container, entries, list)
	if precondition != nil {
		return *precondition
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	content, err := storage.DownloadBlob(ctx, target)
	if err != nil {
		return failed(OperationRead, target.String(), err)
	}
	result := succeeded(OperationRead, target.String())
	result.Bytes = int64(len(content.Data))
	return result
}

// delete removes the same first entry. It may already be gone when another
// actor changed the container after List; that reports ResourceNotFound.
func (c *Consumer) delete(ctx context.Context, storage *client.Client, container string, entries []model.BlobItem, list OperationResult) OperationResult {
	target, precondition := firstEntry(OperationDelete, container, entries, list)
	if precondition != nil {
		return *precondition
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := storage.DeleteBlob(ctx, target); err != nil {
		return failed(OperationDelete, target.String(), err)
	}
	return succeeded(OperationDelete, target.String())
}

func logResult(log *zap.Logger, result OperationResult) {
	if result.Succeeded {
		log.Info(fmt.Sprintf("%s operation succeeded", result.Operation),
			zap.String("target", result.Target))
		return
	}
	log.Warn(fmt.Sprintf("%s operation failed", result.Operation),
		zap.String("target", result.Target),
		zap.String("reason", string(result.Reason)),
		zap.String("message", result.Message))
}

// redact drops the signature so reports and logs never carry a usable token.
func redact(signedURI string) string {
	parsed, err := sas.ParseSignedURI(signedURI)
	if err != nil {
		return "<invalid signed URI>"
	}
	token := parsed.Token
	token.Signature = "REDACTED"
	return sas.SignedURI(parsed.Endpoint, parsed.Resource, token)
}
