// Package provider implements the core of the PlacetoPay client: request
// authentication, outbound validation, the HTTP transport with retries and
// webhook signature verification.
//
// The endpoint services built on top of this package live in
// provider/placetopay; this package only knows how to sign, validate and carry
// a request.
//
// # Core Concepts
//
//   - Auth / BuildAuth: the login, tranKey, nonce and seed block sent with every call
//   - TimeProvider: the clock used for seeds and expiration checks
//   - HTTPClient / Carrier: POST JSON to the gateway, classify failures, retry 502/503/504
//   - WebhookVerifier: signature checks for checkout notifications and event webhooks
//   - SummarizeSessionOutcome: paid and pending totals of a session
//
// # Authentication
//
// A new auth block is built for every outbound call:
//
//	auth := provider.BuildAuth(login, secretKey, provider.SystemTimeProvider{}, nil)
//	// auth.Seed    = "2025-01-01T10:00:00.000Z"
//	// auth.Nonce   = base64(16 random bytes)
//	// auth.TranKey = base64(sha256(nonceBytes + seed + secretKey))
//
// When the local clock drifts, set TIME_OFFSET_MS (or TIME_OFFSET_MINUTES) and
// resolve the provider with TimeProviderFromEnv. Offsets beyond 30 minutes are
// rejected.
//
// # Transport
//
//	client := provider.NewHTTPClient(provider.HTTPClientConfig{
//	    BaseURL: "https://checkout-test.placetopay.com",
//	    Logger:  logger.SDK(),
//	})
//	var out provider.RedirectResponse
//	err := client.Post(ctx, "/api/session", body, &out, provider.WithIdempotencyKey(key))
//
// Errors are typed; branch on them with errors.As:
//
//	*ValidationError       local check failed, nothing was sent
//	*NetworkError          DNS, connection or timeout failure
//	*HTTPError             non-2xx answer; 401 auth codes 100-103 are explained
//	*InvalidResponseError  the body was not JSON
//	*StatusError           the gateway answered with a non-OK status block
//
// Only HTTPError with a status in RetryPolicy.RetryOnHTTPStatuses is retried.
// The last error is returned unchanged once the attempts run out.
//
// # Webhooks
//
//	verifier := provider.NewWebhookVerifier(secretKey)
//	n, err := provider.ParseNotification(body)
//	if err != nil || !verifier.Verify(n) {
//	    // reject
//	}
//
// "sha256:" prefixed signatures are SHA-256 digests; unprefixed signatures are
// SHA-1 digests of the same payload.
package provider
