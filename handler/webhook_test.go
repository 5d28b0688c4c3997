package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mstgnz/placetopay/infra/response"
	"github.com/mstgnz/placetopay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "024h1IlD"

type mockPublisher struct {
	published []*provider.CheckoutNotification
	events    [][]byte
	err       error
}

func (m *mockPublisher) PublishEvent(_ context.Context, raw []byte, signature string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, raw)
	return signature, nil
}

func (m *mockPublisher) PublishNotification(_ context.Context, n *provider.CheckoutNotification, verified bool) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if !verified {
		return "", errors.New("unverified notification published")
	}
	m.published = append(m.published, n)
	return "msg-1", nil
}

func sign(requestID, status, date string) string {
	sum := sha256.Sum256([]byte(requestID + status + date + webhookSecret))
	return "sha256:" + hex.EncodeToString(sum[:])
}

func notificationBody(signature string) string {
	return `{"status":{"status":"APPROVED","reason":"00","message":"Aprobada","date":"2025-01-31T09:29:00-05:00"},` +
		`"requestId":4521,"reference":"ORD-1","signature":"` + signature + `"}`
}

func postNotification(h *WebhookHandler, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/placetopay", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.HandleNotification(w, req)
	return w
}

func TestWebhookHandler_Valid(t *testing.T) {
	publisher := &mockPublisher{}
	h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), publisher)

	w := postNotification(h, notificationBody(sign("4521", "APPROVED", "2025-01-31T09:29:00-05:00")), "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "ORD-1", publisher.published[0].Reference)

	var resp struct {
		Success bool               `json:"success"`
		Data    NotificationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, NotificationResult{RequestID: "4521", Reference: "ORD-1", Status: "APPROVED", MessageID: "msg-1"}, resp.Data)
}

func TestWebhookHandler_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{name: "wrong_signature", body: notificationBody(sign("4521", "REJECTED", "2025-01-31T09:29:00-05:00")), reason: provider.ReasonSignatureMismatch},
		{name: "missing_signature", body: notificationBody(""), reason: provider.ReasonMissingSignature},
		{name: "truncated_signature", body: notificationBody("sha256:abcd"), reason: provider.ReasonLengthMismatch},
		{name: "missing_date", body: `{"status":{"status":"APPROVED"},"requestId":"1","signature":"abc"}`, reason: provider.ReasonMissingStatusOrDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &mockPublisher{}
			h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), publisher)

			w := postNotification(h, tt.body, "application/json")

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, publisher.published)

			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.reason, resp.Error)
		})
	}
}

func TestWebhookHandler_FormEncoded(t *testing.T) {
	publisher := &mockPublisher{}
	h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), publisher)

	form := url.Values{
		"requestId":      {"88"},
		"reference":      {"INV-2"},
		"status[status]": {"REJECTED"},
		"status[date]":   {"2025-02-01T10:00:00-05:00"},
		"signature":      {sign("88", "REJECTED", "2025-02-01T10:00:00-05:00")},
	}

	w := postNotification(h, form.Encode(), "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "REJECTED", publisher.published[0].Status.Status)
}

func TestWebhookHandler_Errors(t *testing.T) {
	h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), &mockPublisher{err: errors.New("nats: timeout")})

	w := postNotification(h, "{not json", "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postNotification(h, notificationBody(sign("4521", "APPROVED", "2025-01-31T09:29:00-05:00")), "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebhookHandler_WithoutPublisher(t *testing.T) {
	h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), nil)

	w := postNotification(h, notificationBody(sign("4521", "APPROVED", "2025-01-31T09:29:00-05:00")), "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "messageId")
}

func signEvent(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func postEvent(h *WebhookHandler, body, header, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/placetopay/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, signature)
	}
	w := httptest.NewRecorder()
	h.HandleEvent(w, req)
	return w
}

func TestWebhookHandler_Event(t *testing.T) {
	const body = `{"type":"TOKEN_CREATED","data":{"token":"t-1"}}`

	tests := []struct {
		name           string
		body           string
		header         string
		signature      string
		expectedStatus int
		published      int
		reason         string
	}{
		{name: "valid", body: body, header: "X-Signature", signature: signEvent(body), expectedStatus: http.StatusOK, published: 1},
		{name: "fallback_header", body: body, header: "Signature", signature: signEvent(body), expectedStatus: http.StatusOK, published: 1},
		{name: "missing_signature", body: body, expectedStatus: http.StatusUnauthorized, reason: provider.ReasonMissingSignature},
		{name: "tampered_body", body: `{"type":"TOKEN_CREATED","data":{"token":"t-2"}}`, header: "X-Signature", signature: signEvent(body), expectedStatus: http.StatusUnauthorized, reason: provider.ReasonSignatureMismatch},
		{name: "signed_non_json", body: "not json", header: "X-Signature", signature: signEvent("not json"), expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &mockPublisher{}
			h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), publisher)

			w := postEvent(h, tt.body, tt.header, tt.signature)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Len(t, publisher.events, tt.published)
			if tt.reason != "" {
				var resp response.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.reason, resp.Error)
			}
		})
	}
}

func TestWebhookHandler_EventPublishFailure(t *testing.T) {
	const body = `{"type":"TOKEN_CREATED"}`
	h := NewWebhookHandler(provider.NewWebhookVerifier(webhookSecret), &mockPublisher{err: errors.New("nats: timeout")})

	w := postEvent(h, body, "X-Signature", signEvent(body))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
