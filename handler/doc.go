// Package handler provides the HTTP handlers of the PlacetoPay relay.
//
// The relay sits between PlacetoPay and the merchant's own systems. It
// receives checkout notifications, verifies their signature and forwards
// them to NATS JetStream, and it lets internal services open and inspect
// checkout sessions without holding the site credentials themselves.
//
// # Webhook Handler
//
// The WebhookHandler accepts the notification PlacetoPay posts to the
// site's notification URL:
//
//	webhookHandler := handler.NewWebhookHandler(client.Webhooks, publisher)
//
//	r.Post("/webhooks/placetopay", webhookHandler.HandleNotification)
//
// A notification whose signature does not verify is answered with 401 and
// the rejection reason (missing-signature, missing-status-or-date,
// length-mismatch or signature-mismatch). A verified notification is
// published on placetopay.notification.<status> and answered with 200.
// When publishing fails the handler answers 503 so PlacetoPay retries.
//
// # Session Handler
//
// The SessionHandler wraps the checkout session service:
//
//	sessionHandler := handler.NewSessionHandler(client.Sessions, validator)
//
//	r.Post("/v1/sessions", sessionHandler.CreateSession)
//	r.Get("/v1/sessions/{requestId}", sessionHandler.GetSession)
//
// The buyer's IP address and user agent default to the caller's. Errors
// from the client library are mapped to HTTP statuses by
// response.GatewayError: local validation failures become 400, gateway
// rejections 422, and transport failures 502.
//
// # Health Handler
//
// GET /health reports uptime and which sinks (checkout client, OpenSearch,
// NATS) are configured. Only a missing checkout client makes it unhealthy.
package handler
