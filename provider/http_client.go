package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every attempt unless HTTPClientConfig.Timeout is set
const DefaultTimeout = 15 * time.Second

// DefaultIdempotencyHeader carries the idempotency key of mutating calls
const DefaultIdempotencyHeader = "Idempotency-Key"

// RequestInfo is handed to the OnRequest hook before each attempt
type RequestInfo struct {
	URL     string
	Body    any
	Headers map[string]string
	Attempt int
}

// ResponseInfo is handed to the OnResponse hook after each attempt
type ResponseInfo struct {
	URL     string
	Status  int
	Body    any
	RawBody string
	Attempt int
}

// HTTPClientConfig represents configuration for the gateway HTTP client
type HTTPClientConfig struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	DefaultHeaders     map[string]string
	IdempotencyHeader  string
	RetryPolicy        *RetryPolicy
	DebugAuth          bool
	Logger             Logger
	Recorder           ExchangeRecorder
	OnRequest          func(ctx context.Context, info RequestInfo) error
	OnResponse         func(ctx context.Context, info ResponseInfo) error
	// Client replaces the underlying *http.Client, mostly for tests
	Client *http.Client
}

// HTTPResponse represents a gateway response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	RawBody    string
	JSON       any
}

// CallOptions are per-call transport options
type CallOptions struct {
	Headers        map[string]string
	IdempotencyKey string
}

// CallOption customizes a single call
type CallOption func(*CallOptions)

// WithHeaders adds headers to a single call
func WithHeaders(headers map[string]string) CallOption {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithIdempotencyKey sends key in the configured idempotency header
func WithIdempotencyKey(key string) CallOption {
	return func(o *CallOptions) {
		o.IdempotencyKey = key
	}
}

// HTTPClient posts JSON to the gateway with timeout, retry and error classification
type HTTPClient struct {
	config  HTTPClientConfig
	baseURL string
	policy  RetryPolicy
	logger  Logger
	client  *http.Client
}

// NewHTTPClient creates a new gateway HTTP client
func NewHTTPClient(config HTTPClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.IdempotencyHeader == "" {
		config.IdempotencyHeader = DefaultIdempotencyHeader
	}

	policy := DefaultRetryPolicy()
	if config.RetryPolicy != nil {
		policy = *config.RetryPolicy
	}

	client := config.Client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.InsecureSkipVerify,
				},
			},
		}
	}

	return &HTTPClient{
		config:  config,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		policy:  policy,
		logger:  loggerOrNop(config.Logger),
		client:  client,
	}
}

// BaseURL returns the base URL without trailing slashes
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Post sends body as JSON to path and decodes the JSON response into out (if not nil)
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	resp, err := c.post(ctx, path, body, "application/json", opts)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// PostText sends body as JSON to path and returns the raw text response
func (c *HTTPClient) PostText(ctx context.Context, path string, body any, opts ...CallOption) (string, error) {
	resp, err := c.post(ctx, path, body, "text/plain", opts)
	if err != nil {
		return "", err
	}
	return resp.RawBody, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, accept string, opts []CallOption) (*HTTPResponse, error) {
	callOpts := CallOptions{}
	for _, opt := range opts {
		opt(&callOpts)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range c.config.DefaultHeaders {
		headers[k] = v
	}
	if accept != "application/json" {
		headers["Accept"] = accept
	}
	for k, v := range callOpts.Headers {
		headers[k] = v
	}
	if callOpts.IdempotencyKey != "" {
		headers[c.config.IdempotencyHeader] = callOpts.IdempotencyKey
	}

	return WithRetry(ctx, c.policy, c.logger, func(ctx context.Context, attempt int) (*HTTPResponse, error) {
		return c.sendRequest(ctx, path, body, headers, attempt, accept == "application/json")
	})
}

// sendRequest performs a single attempt
func (c *HTTPClient) sendRequest(ctx context.Context, path string, body any, headers map[string]string, attempt int, expectJSON bool) (*HTTPResponse, error) {
	fullURL := c.baseURL + path

	if c.config.OnRequest != nil {
		if err := c.config.OnRequest(ctx, RequestInfo{URL: fullURL, Body: body, Headers: headers, Attempt: attempt}); err != nil {
			return nil, err
		}
	}
	c.logDebugAuth(fullURL, body)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	exchange := Exchange{
		Timestamp:   time.Now().UTC(),
		Method:      http.MethodPost,
		URL:         fullURL,
		Path:        path,
		Attempt:     attempt,
		RequestBody: string(payload),
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		netErr := &NetworkError{URL: fullURL, Err: err}
		c.logger.Error("PlacetoPay network error", map[string]any{"url": fullURL, "error": err.Error()})
		exchange.Duration, exchange.Err = time.Since(start), netErr
		c.record(ctx, exchange)
		return nil, netErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{URL: fullURL, Err: fmt.Errorf("failed to read response body: %w", err)}
		exchange.Duration, exchange.HTTPStatus, exchange.Err = time.Since(start), resp.StatusCode, netErr
		c.record(ctx, exchange)
		return nil, netErr
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		RawBody:    string(respBody),
	}
	exchange.Duration, exchange.HTTPStatus, exchange.ResponseBody = time.Since(start), resp.StatusCode, response.RawBody

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if expectJSON || !ok {
		parsed, parseErr := parseJSONBody(respBody)
		switch {
		case parseErr == nil:
			response.JSON = parsed
		case expectJSON:
			invalid := &InvalidResponseError{HTTPStatus: resp.StatusCode, RawBody: truncate(response.RawBody, 1000), Err: parseErr}
			exchange.Err = invalid
			c.record(ctx, exchange)
			return nil, invalid
		}
	}

	if c.config.OnResponse != nil {
		if err := c.config.OnResponse(ctx, ResponseInfo{
			URL:     fullURL,
			Status:  resp.StatusCode,
			Body:    response.JSON,
			RawBody: response.RawBody,
			Attempt: attempt,
		}); err != nil {
			return nil, err
		}
	}

	if !ok {
		errBody := response.JSON
		if errBody == nil {
			errBody = response.RawBody
		}
		httpErr := &HTTPError{
			Message:      c.describeError(resp.StatusCode, errBody, path),
			HTTPStatus:   resp.StatusCode,
			ResponseBody: errBody,
		}

		fields := map[string]any{
			"url":     fullURL,
			"status":  resp.StatusCode,
			"attempt": attempt,
			"rawBody": truncate(response.RawBody, 1000),
		}
		for k, v := range extractIDs(errBody) {
			fields[k] = v
		}
		c.logger.Error("PlacetoPay HTTP error", fields)

		exchange.Err = httpErr
		c.record(ctx, exchange)
		return nil, httpErr
	}

	c.record(ctx, exchange)
	return response, nil
}

func (c *HTTPClient) record(ctx context.Context, exchange Exchange) {
	if c.config.Recorder == nil {
		return
	}
	if err := c.config.Recorder.RecordExchange(ctx, exchange); err != nil {
		c.logger.Warn("failed to record PlacetoPay exchange", map[string]any{"error": err.Error()})
	}
}

func (c *HTTPClient) logDebugAuth(url string, body any) {
	if !c.config.DebugAuth {
		return
	}

	auth := authOf(body)
	if auth == nil {
		c.logger.Debug("debugAuth: body has no auth block", map[string]any{"url": url})
		return
	}
	c.logger.Debug("debugAuth", map[string]any{
		"url":     url,
		"seed":    auth.Seed,
		"nonce":   auth.Nonce,
		"hasAuth": true,
	})
}

// authOf extracts the auth block of a request body without exposing the secret
func authOf(body any) *Auth {
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	var envelope struct {
		Auth *Auth `json:"auth"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil
	}
	return envelope.Auth
}

func parseJSONBody(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

var authCodePattern = regexp.MustCompile(`10[0-3]`)

var authCodeHints = map[int]string{
	100: "missing credentials (UsernameToken)",
	101: "login does not exist or does not belong to this environment",
	102: "tranKey does not match login/secretKey",
	103: "seed out of range (tolerance +/-5 minutes)",
}

// describeError builds the message of an HTTPError
func (c *HTTPClient) describeError(status int, body any, path string) string {
	if msg, ok := describeAuthError(status, body, c.baseURL, path); ok {
		return msg
	}

	suffix := statusMessage(body)
	switch {
	case status == http.StatusNotFound:
		return fmt.Sprintf("PlacetoPay responded HTTP 404 (page not found). Check baseUrl (%s) and path %s for the right host (checkout vs gateway).%s",
			c.baseURL, path, suffix)
	case status >= 500:
		return fmt.Sprintf("PlacetoPay responded HTTP %d (server error).%s", status, suffix)
	case status == http.StatusBadRequest:
		return fmt.Sprintf("PlacetoPay responded HTTP 400 (invalid request).%s", suffix)
	}

	if suffix != "" {
		return fmt.Sprintf("PlacetoPay responded HTTP %d:%s", status, suffix)
	}
	return fmt.Sprintf("PlacetoPay responded HTTP %d", status)
}

// describeAuthError resolves the 100-103 authentication codes of a 401 response
func describeAuthError(status int, body any, baseURL, path string) (string, bool) {
	if status != http.StatusUnauthorized {
		return "", false
	}

	statusBlock, _ := asMap(body)["status"].(map[string]any)

	code := 0
	if msg, ok := statusBlock["message"].(string); ok {
		if match := authCodePattern.FindString(msg); match != "" {
			code, _ = strconv.Atoi(match)
		}
	}
	if _, known := authCodeHints[code]; !known {
		code = reasonNumber(statusBlock["reason"])
	}

	hint, known := authCodeHints[code]
	if !known {
		return "", false
	}

	return fmt.Sprintf("PlacetoPay rejected authentication (auth code %d): %s. host: %s%s", code, hint, baseURL, path), true
}

func reasonNumber(reason any) int {
	switch v := reason.(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func statusMessage(body any) string {
	m := asMap(body)
	if statusBlock, ok := m["status"].(map[string]any); ok {
		if msg, ok := statusBlock["message"].(string); ok && msg != "" {
			return " " + msg
		}
	}
	if msg, ok := m["message"].(string); ok && msg != "" {
		return " " + msg
	}
	return ""
}

func extractIDs(body any) map[string]any {
	m := asMap(body)
	ids := make(map[string]any)
	if v, ok := m["requestId"]; ok {
		ids["requestId"] = v
	} else if statusBlock, ok := m["status"].(map[string]any); ok {
		if v, ok := statusBlock["requestId"]; ok {
			ids["requestId"] = v
		}
	}
	if v, ok := m["reference"]; ok {
		ids["reference"] = v
	} else if request, ok := m["request"].(map[string]any); ok {
		if payment, ok := request["payment"].(map[string]any); ok {
			if v, ok := payment["reference"]; ok {
				ids["reference"] = v
			}
		}
	}
	return ids
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
