package provider

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Verification reasons reported by VerifyWithReason
const (
	ReasonValid               = "valid"
	ReasonMissingSignature    = "missing-signature"
	ReasonMissingStatusOrDate = "missing-status-or-date"
	ReasonLengthMismatch      = "length-mismatch"
	ReasonSignatureMismatch   = "signature-mismatch"
)

const (
	sha256SignaturePrefix     = "sha256:"
	sha256HMACSignaturePrefix = "sha256="
)

// VerifyResult is the outcome of a signature check
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// WebhookVerifier checks the signature of checkout notifications
type WebhookVerifier struct {
	secretKey string
}

// NewWebhookVerifier creates a verifier for the site's secret key
func NewWebhookVerifier(secretKey string) *WebhookVerifier {
	return &WebhookVerifier{secretKey: secretKey}
}

// Verify reports whether the notification signature is valid.
// secretOverride replaces the configured key, for multi-site setups.
func (v *WebhookVerifier) Verify(n *CheckoutNotification, secretOverride ...string) bool {
	return v.VerifyWithReason(n, secretOverride...).Valid
}

// VerifyWithReason is Verify with the reason of a rejection.
//
// A signature prefixed with "sha256:" is compared against
// SHA-256(requestId + status + date + secret); an unprefixed one against the
// SHA-1 digest of the same payload, as sent by older integrations.
func (v *WebhookVerifier) VerifyWithReason(n *CheckoutNotification, secretOverride ...string) VerifyResult {
	if n == nil || n.Signature == "" {
		return VerifyResult{Reason: ReasonMissingSignature}
	}
	if n.Status.Status == "" || n.Status.Date == "" {
		return VerifyResult{Reason: ReasonMissingStatusOrDate}
	}

	secret := v.secretKey
	if len(secretOverride) > 0 && secretOverride[0] != "" {
		secret = secretOverride[0]
	}

	payload := n.RequestID.String() + n.Status.Status + n.Status.Date + secret

	var expected, received string
	if strings.HasPrefix(n.Signature, sha256SignaturePrefix) {
		sum := sha256.Sum256([]byte(payload))
		expected = hex.EncodeToString(sum[:])
		received = strings.TrimPrefix(n.Signature, sha256SignaturePrefix)
	} else {
		sum := sha1.Sum([]byte(payload))
		expected = hex.EncodeToString(sum[:])
		received = n.Signature
	}

	return compareDigest(expected, received)
}

// VerifyHMAC checks an HMAC-SHA256 hex signature over a raw event body.
// The signature may carry a "sha256=" or "sha256:" prefix.
func (v *WebhookVerifier) VerifyHMAC(rawBody []byte, signature string, secretOverride ...string) VerifyResult {
	if signature == "" {
		return VerifyResult{Reason: ReasonMissingSignature}
	}

	secret := v.secretKey
	if len(secretOverride) > 0 && secretOverride[0] != "" {
		secret = secretOverride[0]
	}

	received := strings.TrimPrefix(strings.TrimPrefix(signature, sha256HMACSignaturePrefix), sha256SignaturePrefix)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return compareDigest(expected, strings.ToLower(received))
}

func compareDigest(expected, received string) VerifyResult {
	if len(expected) != len(received) {
		return VerifyResult{Reason: ReasonLengthMismatch}
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return VerifyResult{Reason: ReasonSignatureMismatch}
	}
	return VerifyResult{Valid: true, Reason: ReasonValid}
}

// ParseNotification decodes a notification body; requestId may be a number or a string
func ParseNotification(raw []byte) (*CheckoutNotification, error) {
	var n CheckoutNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	return &n, nil
}
