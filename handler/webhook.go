package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/placetopay/infra/logger"
	"github.com/mstgnz/placetopay/infra/response"
	"github.com/mstgnz/placetopay/provider"
)

// NotificationVerifier checks checkout notification signatures
type NotificationVerifier interface {
	VerifyWithReason(n *provider.CheckoutNotification, secretOverride ...string) provider.VerifyResult
	VerifyHMAC(rawBody []byte, signature string, secretOverride ...string) provider.VerifyResult
}

// NotificationPublisher forwards verified notifications downstream
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *provider.CheckoutNotification, verified bool) (string, error)
	PublishEvent(ctx context.Context, raw []byte, signature string) (string, error)
}

// EventSignatureHeaders carry the HMAC-SHA256 of a gateway event body, first match wins
var EventSignatureHeaders = []string{"X-Signature", "Signature"}

// WebhookHandler receives PlacetoPay checkout notifications
type WebhookHandler struct {
	verifier  NotificationVerifier
	publisher NotificationPublisher
}

// NotificationResult is returned for every accepted notification
type NotificationResult struct {
	RequestID string `json:"requestId"`
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
}

// NewWebhookHandler creates a webhook handler. A nil publisher only verifies.
func NewWebhookHandler(verifier NotificationVerifier, publisher NotificationPublisher) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		publisher: publisher,
	}
}

// HandleNotification verifies the signature and publishes the notification.
// Invalid signatures are answered with 401 and the rejection reason.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	notification, err := parseNotification(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid notification", err)
		return
	}

	log := logger.WithRequest(notification.RequestID.String()).
		AddField("status", notification.Status.Status).
		AddField("reference", notification.Reference)

	result := h.verifier.VerifyWithReason(notification)
	if !result.Valid {
		log.AddField("reason", result.Reason).Warn("rejected notification")
		_ = response.WriteJSON(w, http.StatusUnauthorized, response.Response{
			Code:    http.StatusUnauthorized,
			Success: false,
			Message: "Invalid notification signature",
			Error:   result.Reason,
			Data:    result,
		})
		return
	}

	out := NotificationResult{
		RequestID: notification.RequestID.String(),
		Reference: notification.Reference,
		Status:    notification.Status.Status,
	}

	if h.publisher != nil {
		id, err := h.publisher.PublishNotification(ctx, notification, true)
		if err != nil {
			log.Error("failed to publish notification", err)
			response.Error(w, http.StatusServiceUnavailable, "Notification could not be forwarded", err)
			return
		}
		out.MessageID = id
	}

	log.Info("notification accepted")
	response.Success(w, http.StatusOK, "Notification accepted", out)
}

// HandleEvent verifies the HMAC signature of a raw gateway event and publishes it
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid event", err)
		return
	}

	var signature string
	for _, header := range EventSignatureHeaders {
		if signature = r.Header.Get(header); signature != "" {
			break
		}
	}

	result := h.verifier.VerifyHMAC(body, signature)
	if !result.Valid {
		logger.WithContext(logger.LogContext{Provider: "placetopay"}).
			AddField("reason", result.Reason).
			Warn("rejected event")
		_ = response.WriteJSON(w, http.StatusUnauthorized, response.Response{
			Code:    http.StatusUnauthorized,
			Success: false,
			Message: "Invalid event signature",
			Error:   result.Reason,
			Data:    result,
		})
		return
	}

	if !json.Valid(body) {
		response.Error(w, http.StatusBadRequest, "Invalid event", nil)
		return
	}

	var messageID string
	if h.publisher != nil {
		if messageID, err = h.publisher.PublishEvent(ctx, body, signature); err != nil {
			logger.Error("failed to publish event", err)
			response.Error(w, http.StatusServiceUnavailable, "Event could not be forwarded", err)
			return
		}
	}

	response.Success(w, http.StatusOK, "Event accepted", map[string]string{"messageId": messageID})
}

// parseNotification reads a JSON body, or flat form fields when the
// notification arrives form-encoded
func parseNotification(r *http.Request) (*provider.CheckoutNotification, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &provider.CheckoutNotification{
			RequestID: provider.FlexString(r.PostForm.Get("requestId")),
			Reference: r.PostForm.Get("reference"),
			Signature: r.PostForm.Get("signature"),
			Status: provider.Status{
				Status:  formValue(r, "status[status]", "status"),
				Reason:  provider.FlexString(formValue(r, "status[reason]", "reason")),
				Message: formValue(r, "status[message]", "message"),
				Date:    formValue(r, "status[date]", "date"),
			},
		}, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return provider.ParseNotification(body)
}

func formValue(r *http.Request, keys ...string) string {
	for _, key := range keys {
		if v := r.PostForm.Get(key); v != "" {
			return v
		}
	}
	return ""
}
