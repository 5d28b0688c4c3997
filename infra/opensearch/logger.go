package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mstgnz/placetopay/provider"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// ExchangeLog is one gateway HTTP attempt as stored in OpenSearch
type ExchangeLog struct {
	Timestamp         time.Time   `json:"timestamp"`
	Method            string      `json:"method"`
	URL               string      `json:"url"`
	Path              string      `json:"path"`
	Attempt           int         `json:"attempt"`
	RequestID         string      `json:"request_id,omitempty"`
	InternalReference string      `json:"internal_reference,omitempty"`
	Reference         string      `json:"reference,omitempty"`
	Status            string      `json:"status,omitempty"`
	Request           RequestLog  `json:"request"`
	Response          ResponseLog `json:"response"`
	Error             *ErrorInfo  `json:"error,omitempty"`
}

// RequestLog represents request details
type RequestLog struct {
	Body string `json:"body,omitempty"`
}

// ResponseLog represents response details
type ResponseLog struct {
	StatusCode       int    `json:"status_code"`
	Body             string `json:"body,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// RecordExchange stores a gateway exchange. Credentials and card data are redacted.
func (l *Logger) RecordExchange(ctx context.Context, exchange provider.Exchange) error {
	if !l.client.IsEnabled() {
		return nil
	}
	return l.index(ctx, ExchangeIndex, NewExchangeLog(exchange))
}

// NewExchangeLog converts an exchange into its stored form
func NewExchangeLog(exchange provider.Exchange) ExchangeLog {
	entry := ExchangeLog{
		Timestamp: exchange.Timestamp,
		Method:    exchange.Method,
		URL:       exchange.URL,
		Path:      exchange.Path,
		Attempt:   exchange.Attempt,
		Request:   RequestLog{Body: SanitizeForLog(exchange.RequestBody)},
		Response: ResponseLog{
			StatusCode:       exchange.HTTPStatus,
			Body:             SanitizeForLog(exchange.ResponseBody),
			ProcessingTimeMs: exchange.Duration.Milliseconds(),
		},
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	ids := identifiers(exchange.RequestBody)
	for k, v := range identifiers(exchange.ResponseBody) {
		ids[k] = v
	}
	entry.RequestID = ids["requestId"]
	entry.InternalReference = ids["internalReference"]
	entry.Reference = ids["reference"]
	entry.Status = ids["status"]

	if exchange.Err != nil {
		entry.Error = &ErrorInfo{Code: errorCode(exchange.Err), Message: exchange.Err.Error()}
	}
	return entry
}

// identifiers pulls the ids worth indexing out of a JSON body
func identifiers(body string) map[string]string {
	ids := map[string]string{}
	if body == "" {
		return ids
	}

	var parsed map[string]any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return ids
	}

	for _, key := range []string{"requestId", "internalReference", "reference"} {
		if v, ok := parsed[key]; ok && v != nil {
			ids[key] = fmt.Sprint(v)
		}
	}
	if payment, ok := parsed["payment"].(map[string]any); ok {
		if ref, ok := payment["reference"].(string); ok && ids["reference"] == "" {
			ids["reference"] = ref
		}
	}
	if status, ok := parsed["status"].(map[string]any); ok {
		if s, ok := status["status"].(string); ok {
			ids["status"] = s
		}
	}
	return ids
}

func errorCode(err error) string {
	var (
		httpErr    *provider.HTTPError
		netErr     *provider.NetworkError
		invalidErr *provider.InvalidResponseError
		statusErr  *provider.StatusError
		validErr   *provider.ValidationError
		sdkErr     *provider.Error
	)
	switch {
	case errors.As(err, &httpErr):
		return provider.CodeHTTPError
	case errors.As(err, &netErr):
		return provider.CodeNetworkError
	case errors.As(err, &invalidErr):
		return provider.CodeInvalidResponse
	case errors.As(err, &statusErr):
		return provider.CodeStatusError
	case errors.As(err, &validErr):
		return provider.CodeValidationError
	case errors.As(err, &sdkErr):
		return sdkErr.Code
	}
	return "UNKNOWN"
}

// SearchExchanges searches stored exchanges, newest first
func (l *Logger) SearchExchanges(ctx context.Context, query map[string]any) ([]ExchangeLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source ExchangeLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := l.search(ctx, ExchangeIndex, searchQuery, &searchResult); err != nil {
		return nil, err
	}

	logs := make([]ExchangeLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}
	return logs, nil
}

// GetSessionExchanges retrieves the exchanges of one checkout session
func (l *Logger) GetSessionExchanges(ctx context.Context, requestID string) ([]ExchangeLog, error) {
	return l.SearchExchanges(ctx, map[string]any{
		"term": map[string]any{"request_id": requestID},
	})
}

// GetRecentErrors retrieves failed exchanges of the last hours
func (l *Logger) GetRecentErrors(ctx context.Context, hours int) ([]ExchangeLog, error) {
	return l.SearchExchanges(ctx, map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{"range": map[string]any{"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", hours)}}},
				{"exists": map[string]any{"field": "error.code"}},
			},
		},
	})
}

// GetStats aggregates exchange counts, latency and status codes of the last hours
func (l *Logger) GetStats(ctx context.Context, hours int) (map[string]any, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	aggQuery := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", hours)},
			},
		},
		"aggs": map[string]any{
			"success_count": map[string]any{
				"filter": map[string]any{
					"range": map[string]any{"response.status_code": map[string]any{"gte": 200, "lt": 300}},
				},
			},
			"error_count": map[string]any{
				"filter": map[string]any{"exists": map[string]any{"field": "error.code"}},
			},
			"avg_processing_time": map[string]any{
				"avg": map[string]any{"field": "response.processing_time_ms"},
			},
			"status_codes": map[string]any{
				"terms": map[string]any{"field": "response.status_code", "size": 10},
			},
			"paths": map[string]any{
				"terms": map[string]any{"field": "path", "size": 20},
			},
		},
		"size": 0,
	}

	var result map[string]any
	if err := l.search(ctx, ExchangeIndex, aggQuery, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, entry any) error {
	if !l.client.IsEnabled() {
		return nil
	}
	return l.index(ctx, SystemIndex, entry)
}

func (l *Logger) index(ctx context.Context, index string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: index,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}
	return nil
}

func (l *Logger) search(ctx context.Context, index string, query map[string]any, out any) error {
	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch search error: %s", res.String())
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode search results: %w", err)
	}
	return nil
}

var sensitiveFields = []string{
	"tranKey", "nonce", "secretKey", "secret_key", "password",
	"number", "cardNumber", "cvv", "cvc", "expiration", "otp", "pin",
	"token", "subtoken", "authorization",
}

var sensitivePatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*("(?:[^"\\]|\\.)*"|-?\d+(?:\.\d+)?)`, regexp.QuoteMeta(field))))
	}
	return patterns
}()

// SanitizeForLog redacts credentials and card data from a JSON body
func SanitizeForLog(data string) string {
	result := data
	for i, re := range sensitivePatterns {
		result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, sensitiveFields[i]))
	}
	return result
}
