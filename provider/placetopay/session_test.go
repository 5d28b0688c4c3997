package placetopay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mstgnz/placetopay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createdSession = `{"status":{"status":"OK","reason":"PC","message":"La petición se ha procesado correctamente"},"requestId":5976,"processUrl":"https://checkout-test.placetopay.com/session/5976/abc"}`

func validSession() provider.RedirectRequest {
	return provider.RedirectRequest{
		Payment: &provider.Payment{
			Reference:   "ORD-1",
			Description: "Test order",
			Amount:      provider.Amount{Currency: "COP", Total: 10000},
		},
		IPAddress: "127.0.0.1",
		UserAgent: "go-test",
		ReturnURL: "https://shop.example.com/return",
	}
}

func intPtr(v int) *int { return &v }

func TestSessionService_Create(t *testing.T) {
	client, carrier := newFakeClient(t, nil)
	carrier.reply(createdSession)

	resp, err := client.Sessions.Create(context.Background(), validSession())
	require.NoError(t, err)
	assert.Equal(t, "5976", resp.RequestID.String())
	assert.Equal(t, "https://checkout-test.placetopay.com/session/5976/abc", resp.ProcessURL)

	call := carrier.last()
	assert.Equal(t, endpointSession, call.Path)
	assert.Equal(t, defaultLocale, call.Body["locale"])

	auth := call.Body["auth"].(map[string]any)
	expected := provider.BuildAuth("login", "secret", provider.FixedTimeProvider{At: testNow}, func() []byte { return []byte("0123456789abcdef") })
	assert.Equal(t, expected.TranKey, auth["tranKey"])
	assert.Equal(t, "2025-03-10T15:04:05.000Z", auth["seed"])
}

func TestSessionService_CreateOptions(t *testing.T) {
	client, carrier := newFakeClient(t, func(c *Config) { c.DefaultLocale = "es_CO" })
	carrier.reply(createdSession)

	fixed := provider.Auth{Login: "other", TranKey: "k", Nonce: "n", Seed: "s"}
	_, err := client.Sessions.Create(context.Background(), validSession(), WithLocale("en_US"), WithAuth(fixed))
	require.NoError(t, err)

	call := carrier.last()
	assert.Equal(t, "en_US", call.Body["locale"])
	assert.Equal(t, "other", call.Body["auth"].(map[string]any)["login"])

	req := validSession()
	req.Locale = "pt_BR"
	_, err = client.Sessions.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pt_BR", carrier.last().Body["locale"])

	_, err = client.Sessions.Create(context.Background(), validSession())
	require.NoError(t, err)
	assert.Equal(t, "es_CO", carrier.last().Body["locale"])
}

func TestSessionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*provider.RedirectRequest)
		message string
	}{
		{
			name:    "missing_payment",
			mutate:  func(r *provider.RedirectRequest) { r.Payment = nil },
			message: "you must provide payment, payments or subscription",
		},
		{
			name:    "missing_ip",
			mutate:  func(r *provider.RedirectRequest) { r.IPAddress = "" },
			message: "ipAddress is required",
		},
		{
			name:    "missing_reference",
			mutate:  func(r *provider.RedirectRequest) { r.Payment.Reference = "" },
			message: "payment.reference is required",
		},
		{
			name:    "bad_locale",
			mutate:  func(r *provider.RedirectRequest) { r.Locale = "es-co" },
			message: "locale",
		},
		{
			name:    "near_expiration",
			mutate:  func(r *provider.RedirectRequest) { r.Expiration = testNow.Add(3 * time.Minute).Format(time.RFC3339) },
			message: "expiration must be at least 5 minutes in the future",
		},
		{
			name:    "bad_expiration",
			mutate:  func(r *provider.RedirectRequest) { r.Expiration = "tomorrow" },
			message: "expiration must be a valid date-time string",
		},
		{
			name: "long_field_value",
			mutate: func(r *provider.RedirectRequest) {
				r.Payment.Fields = []provider.NameValuePair{{Keyword: "note", Value: strings.Repeat("x", 256)}}
			},
			message: "payment.fields value exceeds 255 characters",
		},
		{
			name:    "zero_attempts",
			mutate:  func(r *provider.RedirectRequest) { r.AttemptsLimit = intPtr(0) },
			message: "attemptsLimit must be greater than 0",
		},
		{
			name:    "bad_initiator",
			mutate:  func(r *provider.RedirectRequest) { r.Metadata = map[string]any{"initiatorIndicator": "BOT"} },
			message: "metadata.initiatorIndicator",
		},
		{
			name: "bad_buyer_document",
			mutate: func(r *provider.RedirectRequest) {
				r.Buyer = &provider.Person{Document: "12", DocumentType: "CC", Address: &provider.Address{Country: "CO"}}
			},
			message: "buyer: ",
		},
		{
			name:    "missing_return_url",
			mutate:  func(r *provider.RedirectRequest) { r.ReturnURL = "" },
			message: "returnUrl is required",
		},
		{
			name:    "relative_return_url",
			mutate:  func(r *provider.RedirectRequest) { r.ReturnURL = "/return" },
			message: "returnUrl must be a valid URL",
		},
		{
			name:    "relative_cancel_url",
			mutate:  func(r *provider.RedirectRequest) { r.CancelURL = "cancel" },
			message: "cancelUrl must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, carrier := newFakeClient(t, nil)
			req := validSession()
			tt.mutate(&req)

			_, err := client.Sessions.Create(context.Background(), req)
			var verr *provider.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tt.message)
			assert.Zero(t, carrier.count(), "no call is made when validation fails")
		})
	}
}

func TestSessionService_CreateReturnURLFromBase(t *testing.T) {
	client, carrier := newFakeClient(t, func(c *Config) {
		c.ReturnURLBase = "https://shop.example.com/app/"
		c.CancelURLBase = "https://shop.example.com/app/"
	})
	carrier.reply(createdSession)

	req := validSession()
	req.ReturnURL = ""
	req.Metadata = map[string]any{
		"returnPath":   "checkout/done",
		"returnParams": map[string]any{"order": "ORD-1", "b": 2},
		"cancelPath":   "checkout/cancel",
	}

	_, err := client.Sessions.Create(context.Background(), req)
	require.NoError(t, err)

	body := carrier.last().Body
	assert.Equal(t, "https://shop.example.com/app/checkout/done?b=2&order=ORD-1", body["returnUrl"])
	assert.Equal(t, "https://shop.example.com/app/checkout/cancel", body["cancelUrl"])
}

func TestSessionService_CreateResponseErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing_status",
			response: `{"requestId":1}`,
			check: func(t *testing.T, err error) {
				var perr *provider.Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, provider.CodeMissingStatus, perr.Code)
			},
		},
		{
			name:     "failed_status",
			response: `{"status":{"status":"FAILED","reason":"XN","message":"Invalid amount"}}`,
			check: func(t *testing.T, err error) {
				var serr *provider.StatusError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, "session not created: Invalid amount", serr.Message)
				assert.Equal(t, "XN", serr.Status.Reason.String())
			},
		},
		{
			name:     "missing_process_url",
			response: `{"status":{"status":"OK"},"requestId":1}`,
			check: func(t *testing.T, err error) {
				var perr *provider.Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, provider.CodeInvalidResponse, perr.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, carrier := newFakeClient(t, nil)
			carrier.reply(tt.response)

			_, err := client.Sessions.Create(context.Background(), validSession())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSessionService_GetAndCancel(t *testing.T) {
	client, carrier := newFakeClient(t, nil)
	carrier.reply(`{"status":{"status":"PENDING"}}`, `{"requestId":"77","status":{"status":"REJECTED"}}`)

	info, err := client.Sessions.Get(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "77", info.RequestID.String(), "request id is filled in when absent")
	assert.Equal(t, "/api/session/77", carrier.last().Path)
	assert.Contains(t, carrier.last().Body, "auth")

	info, err = client.Sessions.Cancel(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusRejected, info.Status.Status)
	assert.Equal(t, "/api/session/77/cancel", carrier.last().Path)

	_, err = client.Sessions.Get(context.Background(), "")
	var verr *provider.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSessionService_WaitForFinalStatus(t *testing.T) {
	t.Run("reaches_final_status", func(t *testing.T) {
		client, carrier := newFakeClient(t, nil)
		carrier.reply(
			`{"status":{"status":"PENDING"}}`,
			`{"status":{"status":"PENDING"}}`,
			`{"status":{"status":"APPROVED"}}`,
		)

		info, err := client.Sessions.WaitForFinalStatus(context.Background(), "1", WaitOptions{PollInterval: time.Millisecond, MaxAttempts: 5})
		require.NoError(t, err)
		assert.Equal(t, provider.StatusApproved, info.Status.Status)
		assert.Equal(t, 3, carrier.count())
	})

	t.Run("times_out", func(t *testing.T) {
		client, carrier := newFakeClient(t, nil)
		carrier.reply(`{"status":{"status":"PENDING"}}`)

		_, err := client.Sessions.WaitForFinalStatus(context.Background(), "1", WaitOptions{PollInterval: time.Millisecond, MaxAttempts: 3})
		var perr *provider.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, provider.CodeTimeoutFinalStatus, perr.Code)
		assert.Equal(t, 3, carrier.count())
	})

	t.Run("custom_final_statuses", func(t *testing.T) {
		client, carrier := newFakeClient(t, nil)
		carrier.reply(`{"status":{"status":"PENDING"}}`)

		info, err := client.Sessions.WaitForFinalStatus(context.Background(), "1", WaitOptions{FinalStatuses: []string{provider.StatusPending}})
		require.NoError(t, err)
		assert.Equal(t, provider.StatusPending, info.Status.Status)
	})

	t.Run("context_cancelled", func(t *testing.T) {
		client, carrier := newFakeClient(t, nil)
		carrier.reply(`{"status":{"status":"PENDING"}}`)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := client.Sessions.WaitForFinalStatus(ctx, "1", WaitOptions{PollInterval: time.Hour, MaxAttempts: 5})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, carrier.count())
	})
}

func TestSessionService_Outcome(t *testing.T) {
	client, carrier := newFakeClient(t, nil)
	carrier.reply(`{
		"requestId": 9,
		"status": {"status": "APPROVED"},
		"request": {"payment": {"reference": "ORD-1", "amount": {"currency": "COP", "total": 10000}}, "ipAddress": "1.1.1.1", "userAgent": "ua"},
		"payment": [
			{"status": {"status": "APPROVED"}, "internalReference": 1, "amount": {"currency": "COP", "total": 10000}}
		]
	}`)

	outcome, err := client.Sessions.Outcome(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, outcome.Paid)
	assert.True(t, outcome.Final)
	assert.Equal(t, "COP", outcome.Currency)
	assert.Equal(t, "10000", outcome.PaidTotal.String())
}
