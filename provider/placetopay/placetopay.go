package placetopay

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/placetopay/infra/config"
	"github.com/mstgnz/placetopay/provider"
)

const (
	// Checkout hosts
	EnvironmentCheckoutTest = "https://checkout-test.placetopay.com"
	EnvironmentCheckoutProd = "https://checkout.placetopay.com"

	// Checkout endpoints
	endpointSession         = "/api/session"
	endpointTransaction     = "/api/transaction"
	endpointReverse         = "/api/reverse"
	endpointPaymentLink     = "/api/payment-link"
	endpointPaymentLinkOff  = "/api/payment-link/disable"
	endpointCollect         = "/api/collect"
	endpointInvalidate      = "/api/instrument/invalidate"
	endpointInformation     = "/api/gateway/information"
	endpointTokenLookup     = "/api/gateway/token"
	endpointProcess         = "/gateway/process"
	endpointQuery           = "/gateway/query"
	endpointSearch          = "/gateway/search"
	endpointGatewayAction   = "/gateway/transaction"
	endpointTokenize        = "/gateway/tokenize"
	endpointOTP             = "/gateway/otp"
	endpoint3DS             = "/gateway/3ds"
	endpointReport          = "/gateway/report"
	endpointReportObtain    = "/gateway/report/obtain"
	endpointPinpad          = "/gateway/pinpad"
	endpointAccountValidate = "/gateway/account-validator"
	endpointCashOrder       = "/gateway/cashorder"
	endpointAutopayCreate   = "/gateway/autopay/create"
	endpointAutopayUpdate   = "/gateway/autopay/update"
	endpointAutopayCancel   = "/gateway/autopay/cancel"
	endpointAutopaySearch   = "/gateway/autopay/search"
	endpointAutopayTxs      = "/gateway/autopay/transactions"

	// Default values
	defaultLocale = "es_UY"
)

// Config holds everything needed to build a Client
type Config struct {
	Login     string
	SecretKey string
	BaseURL   string
	// GatewayBaseURL serves the gateway, autopay and report endpoints when it differs from BaseURL
	GatewayBaseURL string

	DefaultLocale string
	ReturnURLBase string
	CancelURLBase string
	// MinExpirationMinutes defaults to provider.DefaultMinExpirationMinutes
	MinExpirationMinutes int
	// AutoIdempotency gives mutating gateway calls a random idempotency key when none is set
	AutoIdempotency bool

	Timeout           time.Duration
	RetryPolicy       *provider.RetryPolicy
	TimeProvider      provider.TimeProvider
	Nonce             provider.NonceGenerator
	DebugAuth         bool
	ExtraHeaders      map[string]string
	IdempotencyHeader string
	Logger            provider.Logger
	Recorder          provider.ExchangeRecorder
	OnRequest         func(ctx context.Context, info provider.RequestInfo) error
	OnResponse        func(ctx context.Context, info provider.ResponseInfo) error
	HTTPClient        *http.Client
}

// Client groups the PlacetoPay services. It is safe for concurrent use.
type Client struct {
	Sessions     *SessionService
	Transactions *TransactionService
	Refunds      *RefundService
	Webhooks     *provider.WebhookVerifier
	Gateway      *GatewayService
	PaymentLinks *PaymentLinkService
	Autopay      *AutopayService
	Reports      *ReportService
}

// New creates a client with REST carriers for the checkout and gateway hosts
func New(cfg Config) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	checkout := provider.NewRestCarrier(provider.NewHTTPClient(httpConfig(cfg, cfg.BaseURL)))
	var gateway provider.Carrier = checkout
	if cfg.GatewayBaseURL != "" && cfg.GatewayBaseURL != cfg.BaseURL {
		gateway = provider.NewRestCarrier(provider.NewHTTPClient(httpConfig(cfg, cfg.GatewayBaseURL)))
	}

	return NewWithCarriers(cfg, checkout, gateway)
}

// NewWithCarriers creates a client over the given carriers; gateway may be nil to reuse checkout
func NewWithCarriers(cfg Config, checkout, gateway provider.Carrier) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if checkout == nil {
		return nil, provider.NewValidationError("carrier is required")
	}
	if gateway == nil {
		gateway = checkout
	}

	checkoutBase := newService(checkout, cfg)
	gatewayBase := newService(gateway, cfg)

	return &Client{
		Sessions: &SessionService{
			service:       checkoutBase,
			returnURLBase: cfg.ReturnURLBase,
			cancelURLBase: cfg.CancelURLBase,
		},
		Transactions: &TransactionService{service: checkoutBase},
		Refunds:      &RefundService{service: checkoutBase},
		Webhooks:     provider.NewWebhookVerifier(cfg.SecretKey),
		Gateway:      &GatewayService{service: gatewayBase},
		PaymentLinks: &PaymentLinkService{service: checkoutBase},
		Autopay:      &AutopayService{service: gatewayBase},
		Reports:      &ReportService{service: gatewayBase},
	}, nil
}

// FromEnv builds a client from <prefix>LOGIN, <prefix>SECRET_KEY, <prefix>BASE_URL and the
// optional <prefix>GATEWAY_BASE_URL, DEFAULT_LOCALE, TIME_OFFSET_MS/MINUTES, DEBUG_AUTH and
// PUBLIC_BASE_URL variables. mutate can set what the environment does not carry (logger, hooks).
func FromEnv(prefix string, mutate ...func(*Config)) (*Client, error) {
	settings, err := config.LoadClientSettings(prefix, os.Getenv(prefixOrDefault(prefix)+"CONFIG_FILE"))
	if err != nil {
		return nil, provider.NewValidationError("%v", err)
	}
	return FromSettings(settings, prefix, mutate...)
}

// FromSettings builds a client from already loaded settings
func FromSettings(settings *config.ClientSettings, prefix string, mutate ...func(*Config)) (*Client, error) {
	prefix = prefixOrDefault(prefix)

	tp, err := provider.TimeProviderFromEnv(settings.Lookup(prefix), prefix)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		Login:          settings.Login,
		SecretKey:      settings.SecretKey,
		BaseURL:        settings.BaseURL,
		GatewayBaseURL: settings.GatewayBaseURL,
		DefaultLocale:  settings.DefaultLocale,
		ReturnURLBase:  settings.PublicBaseURL,
		CancelURLBase:  settings.PublicBaseURL,
		TimeProvider:   tp,
		DebugAuth:      settings.DebugAuth,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	return New(cfg)
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return config.DefaultEnvPrefix
	}
	return prefix
}

func validateConfig(cfg Config) error {
	switch {
	case cfg.Login == "":
		return provider.NewValidationError("login is required")
	case cfg.SecretKey == "":
		return provider.NewValidationError("secretKey is required")
	case cfg.BaseURL == "":
		return provider.NewValidationError("baseUrl is required")
	}
	return nil
}

func httpConfig(cfg Config, baseURL string) provider.HTTPClientConfig {
	return provider.HTTPClientConfig{
		BaseURL:           baseURL,
		Timeout:           cfg.Timeout,
		DefaultHeaders:    cfg.ExtraHeaders,
		IdempotencyHeader: cfg.IdempotencyHeader,
		RetryPolicy:       cfg.RetryPolicy,
		DebugAuth:         cfg.DebugAuth,
		Logger:            cfg.Logger,
		Recorder:          cfg.Recorder,
		OnRequest:         cfg.OnRequest,
		OnResponse:        cfg.OnResponse,
		Client:            cfg.HTTPClient,
	}
}

// service carries what every endpoint service shares
type service struct {
	carrier         provider.Carrier
	signer          provider.Signer
	logger          provider.Logger
	defaultLocale   string
	minExpiration   int
	autoIdempotency bool
}

func newService(carrier provider.Carrier, cfg Config) service {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = provider.SystemTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = provider.NopLogger{}
	}
	locale := cfg.DefaultLocale
	if locale == "" {
		locale = defaultLocale
	}

	return service{
		carrier: carrier,
		signer: provider.Signer{
			Login:        cfg.Login,
			SecretKey:    cfg.SecretKey,
			TimeProvider: tp,
			Nonce:        cfg.Nonce,
		},
		logger:          logger,
		defaultLocale:   locale,
		minExpiration:   cfg.MinExpirationMinutes,
		autoIdempotency: cfg.AutoIdempotency,
	}
}

// auth returns a fresh auth block for one call
func (s service) auth() *provider.Auth {
	a := s.signer.Auth()
	return &a
}

// resolveLocale picks the request locale or the default one and checks its format
func (s service) resolveLocale(locale string) (string, error) {
	if locale == "" {
		locale = s.defaultLocale
	}
	if err := provider.ValidateLocale(locale); err != nil {
		return "", err
	}
	return locale, nil
}

func (s service) idempotency(key string) []provider.CallOption {
	if key == "" && s.autoIdempotency {
		key = uuid.NewString()
	}
	if key == "" {
		return nil
	}
	return []provider.CallOption{provider.WithIdempotencyKey(key)}
}

// requireStatus turns a response without a status block into an error
func requireStatus(status provider.Status, operation string) error {
	if status.Status == "" {
		return provider.MissingStatusError(operation)
	}
	return nil
}

var numericID = regexp.MustCompile(`^\d+$`)

// idBody is the body of the calls that only carry auth and an id
type idBody struct {
	Auth *provider.Auth `json:"auth"`
	ID   any            `json:"id"`
}

// idValue sends numeric ids as JSON numbers and anything else as a string
func idValue(id string) any {
	if numericID.MatchString(id) && len(id) < 19 {
		return json.Number(id)
	}
	return id
}

func requireID(id, name string) error {
	if id == "" {
		return provider.NewValidationError("%s is required", name)
	}
	return nil
}
