// Package placetopay is a client for the PlacetoPay Web Checkout and Gateway APIs,
// together with a small relay service that verifies checkout notifications and
// republishes them to the rest of your platform.
//
// # Overview
//
// PlacetoPay signs every request with a nonce, a seed and a SHA-256 digest of the
// merchant secret, answers in a loosely typed JSON dialect and notifies sessions
// asynchronously. This module hides those details behind typed services and keeps
// everything the gateway returns, including fields it does not know about.
//
// # Architecture
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   Your Apps     │◄──►│  placetopay     │◄──►│   PlacetoPay    │
//	│  (SDK or /v1)   │    │ (client, relay) │    │ Checkout/Gateway│
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └────────┬────────┘    └─────────────────┘
//	                                │
//	                       NATS JetStream, OpenSearch
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/mstgnz/placetopay/provider"
//	    "github.com/mstgnz/placetopay/provider/placetopay"
//	)
//
//	func main() {
//	    // PLACETOPAY_LOGIN, PLACETOPAY_SECRET_KEY and PLACETOPAY_BASE_URL
//	    client, err := placetopay.FromEnv("")
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    resp, err := client.Sessions.Create(context.Background(), provider.RedirectRequest{
//	        Payment: &provider.Payment{
//	            Reference: "ORDER-1",
//	            Amount:    provider.Amount{Currency: "USD", Total: 120.50},
//	        },
//	        IPAddress: "127.0.0.1",
//	        UserAgent: "my-app",
//	        ReturnURL: "https://yourapp.com/return",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(resp.ProcessURL)
//	}
//
// # Services
//
// The client groups the APIs by concern:
//
//   - Sessions: create, query, cancel and poll hosted checkout sessions
//   - Transactions and Refunds: query, reverse and refund processed payments
//   - Gateway: direct processing, tokenization, OTP, 3DS, search and account tools
//   - PaymentLinks, Autopay and Reports
//   - Webhooks: notification signature verification
//
// Failures are typed (ValidationError, NetworkError, HTTPError,
// InvalidResponseError, StatusError) and can be inspected with errors.As.
//
// # Relay Service
//
// The placetopay binary (cmd) runs the relay:
//
//	# Checkout notifications, verified and published on placetopay.notification.<status>
//	POST /webhooks/placetopay
//
//	# Gateway events, HMAC verified over the raw body (X-Signature) and
//	# published on placetopay.event.<type>
//	POST /webhooks/placetopay/events
//
//	# Create a session with the service credentials
//	POST /v1/sessions
//	Headers:
//	  Authorization: Bearer your-api-key
//	  Content-Type: application/json
//
//	# Session outcome summary
//	GET /v1/sessions/{requestId}
//
//	# Recorded gateway exchanges (requires OpenSearch logging)
//	GET /v1/sessions/{requestId}/exchanges
//	GET /v1/exchanges?hours=24&status=FAILED
//	GET /v1/exchanges/errors
//	GET /v1/exchanges/stats
//
//	# Liveness and configured sinks
//	GET /health
//
// # Configuration
//
//	PLACETOPAY_LOGIN=your-login
//	PLACETOPAY_SECRET_KEY=your-secret-key
//	PLACETOPAY_BASE_URL=https://checkout-test.placetopay.com
//	API_KEY=relay-api-key
//	NATS_URL=nats://localhost:4222
//	ENABLE_OPENSEARCH_LOGGING=true
//
// Client settings can also come from a file passed with --config; environment
// variables override it.
//
// # Asobancaria Files
//
// invoice/asobancaria encodes the fixed width billing and collection files used by
// Colombian banks. The billing and collection commands build them from YAML or JSON.
//
// # Examples
//
//   - examples/checkout - session creation, outcome and polling
package placetopay
