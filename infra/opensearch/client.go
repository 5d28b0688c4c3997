package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/placetopay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

const (
	// ExchangeIndex stores every HTTP attempt made against PlacetoPay
	ExchangeIndex = "placetopay-exchange-logs"
	// SystemIndex stores the service's own log entries
	SystemIndex = "placetopay-system-logs"
)

// Client wraps the OpenSearch client
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client and makes sure the log indices exist
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // self-signed certificates in development clusters
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if cfg.EnableLogging {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := osClient.setupIndices(ctx); err != nil {
			log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
		}
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}

// setupIndices creates the exchange and system indices when missing
func (c *Client) setupIndices(ctx context.Context) error {
	indices := map[string]string{
		ExchangeIndex: exchangeMapping,
		SystemIndex:   systemMapping,
	}

	var failed []string
	for name, mapping := range indices {
		exists, err := c.indexExists(ctx, name)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if exists {
			continue
		}
		if err := c.createIndex(ctx, name, mapping); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		log.Printf("Created OpenSearch index: %s", name)
	}

	if len(failed) > 0 {
		return fmt.Errorf("index setup failed: %s", strings.Join(failed, "; "))
	}
	return nil
}

func (c *Client) indexExists(ctx context.Context, name string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{name},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

func (c *Client) createIndex(ctx context.Context, name, mapping string) error {
	req := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}
	return nil
}

const exchangeMapping = `{
	"mappings": {
		"properties": {
			"timestamp": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"method": {"type": "keyword"},
			"url": {"type": "keyword"},
			"path": {"type": "keyword"},
			"attempt": {"type": "integer"},
			"request_id": {"type": "keyword"},
			"internal_reference": {"type": "keyword"},
			"reference": {"type": "keyword"},
			"status": {"type": "keyword"},
			"request": {"type": "object", "properties": {"body": {"type": "text"}}},
			"response": {
				"type": "object",
				"properties": {
					"status_code": {"type": "integer"},
					"body": {"type": "text"},
					"processing_time_ms": {"type": "integer"}
				}
			},
			"error": {
				"type": "object",
				"properties": {
					"code": {"type": "keyword"},
					"message": {"type": "text"}
				}
			}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`

const systemMapping = `{
	"mappings": {
		"properties": {
			"timestamp": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"level": {"type": "keyword"},
			"message": {"type": "text"},
			"component": {"type": "keyword"},
			"provider": {"type": "keyword"},
			"request_id": {"type": "keyword"},
			"error": {"type": "text"},
			"service": {"type": "keyword"},
			"environment": {"type": "keyword"},
			"instance": {"type": "keyword"}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`
