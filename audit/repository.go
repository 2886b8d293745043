// audit/repository.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

type Repository interface {
	LogAccess(ctx context.Context, log AuditLog) error
	QueryLogs(ctx context.Context, from, to time.Time, principal, resourceID string) ([]AuditLog, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

// NewElasticsearchRepository creates a repository writing to index on the
// cluster at esURL. transport may be nil.
func NewElasticsearchRepository(esURL, index string, transport http.RoundTripper) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
		Transport: transport,
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

// LogAccess indexes one audit record.
func (r *ElasticsearchRepository) LogAccess(ctx context.Context, log AuditLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	docID := log.RequestID
	if docID == "" {
		docID = uuid.NewString()
	}
	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: fmt.Sprintf("%d-%s", log.Timestamp.Unix(), docID),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source AuditLog `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// QueryLogs searches records in [from, to], optionally filtered by principal
// and resource.
func (r *ElasticsearchRepository) QueryLogs(ctx context.Context, from, to time.Time, principal, resourceID string) ([]AuditLog, error) {
	must := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{
					"gte": from.Format(time.RFC3339),
					"lte": to.Format(time.RFC3339),
				},
			},
		},
	}
	if principal != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"principal": principal}})
	}
	if resourceID != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"resource_id": resourceID}})
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []interface{}{
			map[string]interface{}{"timestamp": "asc"},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching documents: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, err
	}

	logs := make([]AuditLog, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, nil
}

// NoopRepository discards records. Used when no Elasticsearch URL is configured.
type NoopRepository struct{}

func (NoopRepository) LogAccess(context.Context, AuditLog) error { return nil }

func (NoopRepository) QueryLogs(context.Context, time.Time, time.Time, string, string) ([]AuditLog, error) {
	return nil, nil
}
