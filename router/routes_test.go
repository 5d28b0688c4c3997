package router

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/placetopay/handler"
	"github.com/mstgnz/placetopay/infra/middle"
	"github.com/mstgnz/placetopay/infra/opensearch"
	"github.com/mstgnz/placetopay/provider"
	"github.com/mstgnz/placetopay/provider/placetopay"
	"github.com/stretchr/testify/assert"
)

type stubSessions struct{}

func (stubSessions) Create(context.Context, provider.RedirectRequest, ...placetopay.CreateOption) (*provider.RedirectResponse, error) {
	return &provider.RedirectResponse{Status: provider.Status{Status: provider.StatusOK}, RequestID: "1", ProcessURL: "https://checkout.example.com/1"}, nil
}

func (stubSessions) Outcome(_ context.Context, requestID string) (provider.SessionOutcome, error) {
	return provider.SessionOutcome{RequestID: requestID, Status: provider.StatusPending}, nil
}

type stubExchanges struct{}

func (stubExchanges) SearchExchanges(context.Context, map[string]any) ([]opensearch.ExchangeLog, error) {
	return nil, nil
}

func (stubExchanges) GetSessionExchanges(_ context.Context, requestID string) ([]opensearch.ExchangeLog, error) {
	return []opensearch.ExchangeLog{{RequestID: requestID}}, nil
}

func (stubExchanges) GetRecentErrors(context.Context, int) ([]opensearch.ExchangeLog, error) {
	return nil, nil
}

func (stubExchanges) GetStats(context.Context, int) (map[string]any, error) {
	return map[string]any{}, nil
}

func newTestRouter(opts Options) http.Handler {
	return New(Handlers{
		Webhook:  handler.NewWebhookHandler(provider.NewWebhookVerifier("secret"), nil),
		Sessions: handler.NewSessionHandler(stubSessions{}, validator.New()),
		Health:   handler.NewHealthHandler(map[string]bool{"checkout": true}),
		Logs:     handler.NewLogsHandler(stubExchanges{}),
	}, opts)
}

func signedEvent() (string, string) {
	body := `{"type":"TOKEN_CREATED"}`
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte(body))
	return body, "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signedNotification() string {
	sum := sha256.Sum256([]byte("1" + "APPROVED" + "2025-01-31T09:29:00-05:00" + "secret"))
	return `{"status":{"status":"APPROVED","date":"2025-01-31T09:29:00-05:00"},"requestId":1,"signature":"sha256:` + hex.EncodeToString(sum[:]) + `"}`
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(Options{APIKey: "relay-key"})

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		auth           string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "webhook_valid", method: http.MethodPost, path: "/webhooks/placetopay", body: signedNotification(), expectedStatus: http.StatusOK},
		{name: "webhook_invalid", method: http.MethodPost, path: "/webhooks/placetopay", body: `{"requestId":1,"status":{"status":"APPROVED","date":"x"},"signature":"abc"}`, expectedStatus: http.StatusUnauthorized},
		{name: "session_without_key", method: http.MethodGet, path: "/v1/sessions/1", expectedStatus: http.StatusUnauthorized},
		{name: "session_get", method: http.MethodGet, path: "/v1/sessions/1", auth: "Bearer relay-key", expectedStatus: http.StatusOK},
		{name: "session_create", method: http.MethodPost, path: "/v1/sessions", body: `{"payment":{"reference":"R1","amount":{"currency":"USD","total":1}}}`, auth: "Bearer relay-key", expectedStatus: http.StatusCreated},
		{name: "session_exchanges", method: http.MethodGet, path: "/v1/sessions/1/exchanges", auth: "Bearer relay-key", expectedStatus: http.StatusOK},
		{name: "exchange_stats", method: http.MethodGet, path: "/v1/exchanges/stats?hours=6", auth: "Bearer relay-key", expectedStatus: http.StatusOK},
		{name: "exchange_errors", method: http.MethodGet, path: "/v1/exchanges/errors", auth: "Bearer relay-key", expectedStatus: http.StatusOK},
		{name: "exchanges_without_key", method: http.MethodGet, path: "/v1/exchanges", expectedStatus: http.StatusUnauthorized},
		{name: "event_unsigned", method: http.MethodPost, path: "/webhooks/placetopay/events", body: `{"type":"TOKEN_CREATED"}`, expectedStatus: http.StatusUnauthorized},
		{name: "not_found", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("User-Agent", "router-test")
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRoutes_SignedEvent(t *testing.T) {
	body, signature := signedEvent()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/placetopay/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", signature)
	w := httptest.NewRecorder()
	newTestRouter(Options{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_WebhookProtection(t *testing.T) {
	rl := middle.NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	r := newTestRouter(Options{WebhookIPs: []string{"198.51.100.7"}, RateLimiter: rl})

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/placetopay", strings.NewReader(signedNotification()))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, post("203.0.113.1"))
	assert.Equal(t, http.StatusOK, post("198.51.100.7"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.7"))
}

func TestRoutes_OptionalHandlers(t *testing.T) {
	r := New(Handlers{Health: handler.NewHealthHandler(map[string]bool{"checkout": true})}, Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
