package provider

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLocale(t *testing.T) {
	tests := []struct {
		locale  string
		wantErr bool
	}{
		{locale: "", wantErr: false},
		{locale: "es_CO", wantErr: false},
		{locale: "en_US", wantErr: false},
		{locale: "es-co", wantErr: true},
		{locale: "es_co", wantErr: true},
		{locale: "spa_CO", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			err := ValidateLocale(tt.locale)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, "locale")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateFutureExpiration(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tp := FixedTimeProvider{At: now}

	tests := []struct {
		name       string
		expiration string
		minMinutes int
		wantErr    bool
	}{
		{name: "Empty", expiration: "", wantErr: false},
		{name: "Ten minutes ahead", expiration: now.Add(10 * time.Minute).Format(time.RFC3339), wantErr: false},
		{name: "Exactly five minutes", expiration: now.Add(5 * time.Minute).Format(time.RFC3339), wantErr: false},
		{name: "Four minutes ahead", expiration: now.Add(4 * time.Minute).Format(time.RFC3339), wantErr: true},
		{name: "Past", expiration: "2024-01-01T00:00:00Z", wantErr: true},
		{name: "Offset zone", expiration: "2025-03-01T07:30:00-05:00", wantErr: false},
		{name: "Fractional seconds", expiration: "2025-03-01T12:30:00.250Z", wantErr: false},
		{name: "Custom minimum", expiration: now.Add(10 * time.Minute).Format(time.RFC3339), minMinutes: 15, wantErr: true},
		{name: "Garbage", expiration: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFutureExpiration(tt.expiration, tp, tt.minMinutes)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Message, "expiration")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateFieldLimits(t *testing.T) {
	tooMany := make([]NameValuePair, MaxFields+1)
	for i := range tooMany {
		tooMany[i] = NameValuePair{Keyword: "k", Value: "v"}
	}

	tests := []struct {
		name      string
		fields    []NameValuePair
		errSubstr string
	}{
		{name: "Nil", fields: nil},
		{name: "Valid", fields: []NameValuePair{{Keyword: "order", Value: "123", DisplayOn: "both"}, {Keyword: "n", Value: 7}}},
		{name: "Too many", fields: tooMany, errSubstr: "payment.fields exceeds 50 entries"},
		{name: "Missing keyword", fields: []NameValuePair{{Value: "x"}}, errSubstr: "keyword is required"},
		{name: "Long keyword", fields: []NameValuePair{{Keyword: strings.Repeat("k", 51), Value: "x"}}, errSubstr: "keyword"},
		{name: "Long value", fields: []NameValuePair{{Keyword: "k", Value: strings.Repeat("v", 256)}}, errSubstr: "value exceeds 255"},
		{name: "Value at limit", fields: []NameValuePair{{Keyword: "k", Value: strings.Repeat("ñ", 255)}}},
		{name: "Bad displayOn", fields: []NameValuePair{{Keyword: "k", Value: "v", DisplayOn: "always"}}, errSubstr: "displayOn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldLimits(tt.fields, "payment")
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidateAttemptsLimit(t *testing.T) {
	zero, one := 0, 1
	assert.NoError(t, ValidateAttemptsLimit(nil))
	assert.NoError(t, ValidateAttemptsLimit(&one))
	assert.Error(t, ValidateAttemptsLimit(&zero))
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		wantErr  bool
	}{
		{name: "Empty", metadata: nil},
		{name: "Valid", metadata: map[string]any{
			"initiatorIndicator":   "MERCHANT_COF",
			"EBTDeliveryIndicator": "CUSTOMER_PICKUP",
			"openingDate":          "2020-01-31",
			"anythingElse":         42,
		}},
		{name: "Bad initiator", metadata: map[string]any{"initiatorIndicator": "ROBOT"}, wantErr: true},
		{name: "Bad delivery", metadata: map[string]any{"EBTDeliveryIndicator": "DRONE"}, wantErr: true},
		{name: "Bad opening date", metadata: map[string]any{"openingDate": "31/01/2020"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.metadata)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://shop.example.com/return?x=1", "returnUrl"))
	assert.EqualError(t, ValidateURL("/relative", "returnUrl"), "returnUrl must be a valid URL")
	assert.EqualError(t, ValidateURL("::::", ""), "url must be a valid URL")
}

func TestBuildReturnURL(t *testing.T) {
	got, err := BuildReturnURL("https://shop.example.com/app/", "orders/return", map[string]string{"ref": "A 1", "id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/app/orders/return?id=9&ref=A+1", got)

	got, err = BuildReturnURL("https://shop.example.com/app/", "/cancel", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/cancel", got)

	_, err = BuildReturnURL("", "/x", nil)
	assert.Error(t, err)
	_, err = BuildReturnURL("not a url", "/x", nil)
	assert.Error(t, err)
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		request   any
		errString string
	}{
		{
			name:      "Missing ip address",
			request:   RedirectRequest{UserAgent: "ua"},
			errString: "ipAddress is required",
		},
		{
			name:      "Missing nested reference",
			request:   RedirectRequest{IPAddress: "127.0.0.1", UserAgent: "ua", Payment: &Payment{Amount: Amount{Currency: "COP", Total: 10}}},
			errString: "payment.reference is required",
		},
		{
			name:      "Missing nested currency",
			request:   RedirectRequest{IPAddress: "127.0.0.1", UserAgent: "ua", Payment: &Payment{Reference: "R1"}},
			errString: "payment.amount.currency is required",
		},
		{
			name:      "Zero internal reference",
			request:   RefundRequest{},
			errString: "internalReference is required",
		},
		{
			name:    "Complete",
			request: RedirectRequest{IPAddress: "127.0.0.1", UserAgent: "ua", Payment: &Payment{Reference: "R1", Amount: Amount{Currency: "COP", Total: 10}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.request)
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.errString, ve.Message)
		})
	}
}
