package placetopay

import (
	"context"

	"github.com/mstgnz/placetopay/provider"
)

// GatewayService groups the direct gateway endpoints: tokenized collects,
// instrument management, process/query/search and the pre-authorization actions.
type GatewayService struct {
	service
}

// Collect charges a stored instrument without redirecting the payer
func (s *GatewayService) Collect(ctx context.Context, req provider.CollectRequest) (*provider.RedirectInformation, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	if err := provider.ValidateURL(req.ReturnURL, "returnUrl"); err != nil {
		return nil, err
	}
	if err := provider.ValidateFutureExpiration(req.Expiration, s.signer.TimeProvider, s.minExpiration); err != nil {
		return nil, err
	}
	if err := provider.ValidateMetadata(req.Metadata); err != nil {
		return nil, err
	}

	locale, err := s.resolveLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	req.Locale = locale
	req.Auth = s.auth()

	var info provider.RedirectInformation
	if err := s.carrier.Post(ctx, endpointCollect, req, &info, s.idempotency(req.IdempotencyKey)...); err != nil {
		return nil, err
	}
	if err := requireStatus(info.Status, "collect"); err != nil {
		return nil, err
	}

	s.logger.Info("PlacetoPay collect executed", map[string]any{
		"requestId": info.RequestID.String(),
		"status":    info.Status.Status,
	})
	return &info, nil
}

// InvalidateInstrument invalidates a token or subtoken
func (s *GatewayService) InvalidateInstrument(ctx context.Context, req provider.InstrumentInvalidateRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	locale, err := s.resolveLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	req.Locale = locale
	req.Auth = s.auth()

	return s.call(ctx, endpointInvalidate, "instrument invalidate", req, nil)
}

// Information returns the routing information of an instrument
func (s *GatewayService) Information(ctx context.Context, req provider.GatewayInformationRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	if err := provider.ValidateMetadata(req.Metadata); err != nil {
		return nil, err
	}
	locale, err := s.resolveLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	req.Locale = locale
	req.Auth = s.auth()

	return s.call(ctx, endpointInformation, "gateway information", req, nil)
}

// LookupToken returns the data of a tokenized instrument
func (s *GatewayService) LookupToken(ctx context.Context, req provider.GatewayTokenRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	locale, err := s.resolveLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	req.Locale = locale
	req.Auth = s.auth()

	return s.call(ctx, endpointTokenLookup, "gateway token", req, nil)
}

// Process processes a payment with an instrument
func (s *GatewayService) Process(ctx context.Context, req provider.GatewayProcessRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	if err := provider.ValidateMetadata(req.Metadata); err != nil {
		return nil, err
	}
	locale, err := s.resolveLocale(req.Locale)
	if err != nil {
		return nil, err
	}
	req.Locale = locale
	req.Auth = s.auth()

	return s.call(ctx, endpointProcess, "gateway process", req, s.idempotency(req.IdempotencyKey))
}

// Query queries a transaction by internal reference, request id or reference
func (s *GatewayService) Query(ctx context.Context, req provider.GatewayQueryRequest) (*provider.GatewayResponse, error) {
	if req.InternalReference == 0 && req.RequestID == 0 && req.Reference == "" {
		return nil, provider.NewValidationError("internalReference, requestId or reference is required")
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointQuery, "gateway query", req, nil)
}

// Search searches transactions. Its response is returned without a status check.
func (s *GatewayService) Search(ctx context.Context, req provider.GatewaySearchRequest) (*provider.GatewayResponse, error) {
	req.Auth = s.auth()

	var resp provider.GatewayResponse
	if err := s.carrier.Post(ctx, endpointSearch, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transaction runs checkout, reauthorization or reverse on the gateway
func (s *GatewayService) Transaction(ctx context.Context, req provider.GatewayTransactionRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointGatewayAction, "gateway transaction", req, s.idempotency(req.IdempotencyKey))
}

// Tokenize tokenizes an instrument
func (s *GatewayService) Tokenize(ctx context.Context, req provider.GatewayTokenizeRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	if err := provider.ValidateMetadata(req.Metadata); err != nil {
		return nil, err
	}
	if req.Locale != "" {
		if err := provider.ValidateLocale(req.Locale); err != nil {
			return nil, err
		}
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointTokenize, "gateway tokenize", req, s.idempotency(req.IdempotencyKey))
}

// OTP validates a one time password
func (s *GatewayService) OTP(ctx context.Context, req provider.GatewayOTPRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointOTP, "gateway otp", req, s.idempotency(req.IdempotencyKey))
}

// ThreeDS completes a 3DS challenge
func (s *GatewayService) ThreeDS(ctx context.Context, req provider.Gateway3DSRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	req.Auth = s.auth()

	return s.call(ctx, endpoint3DS, "gateway 3ds", req, s.idempotency(req.IdempotencyKey))
}

// Report returns the detailed report of one transaction
func (s *GatewayService) Report(ctx context.Context, req provider.GatewayReportRequest) (*provider.GatewayResponse, error) {
	if req.InternalReference == 0 && req.RequestID == 0 && req.Reference == "" {
		return nil, provider.NewValidationError("internalReference, requestId or reference is required")
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointReport, "gateway report", req, s.idempotency(req.IdempotencyKey))
}

// Pinpad talks to a physical pinpad
func (s *GatewayService) Pinpad(ctx context.Context, req provider.GatewayPinpadRequest) (*provider.GatewayResponse, error) {
	req.Auth = s.auth()
	return s.call(ctx, endpointPinpad, "gateway pinpad", req, nil)
}

// AccountValidator validates a bank account
func (s *GatewayService) AccountValidator(ctx context.Context, req provider.GatewayAccountValidatorRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointAccountValidate, "gateway account-validator", req, nil)
}

// CashOrder generates a cash payment order
func (s *GatewayService) CashOrder(ctx context.Context, req provider.GatewayCashOrderRequest) (*provider.GatewayResponse, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}
	if err := provider.ValidatePersonDocument(req.Payer, "payer"); err != nil {
		return nil, err
	}
	req.Auth = s.auth()

	return s.call(ctx, endpointCashOrder, "gateway cashorder", req, nil)
}

func (s *GatewayService) call(ctx context.Context, path, operation string, body any, opts []provider.CallOption) (*provider.GatewayResponse, error) {
	var resp provider.GatewayResponse
	if err := s.carrier.Post(ctx, path, body, &resp, opts...); err != nil {
		return nil, err
	}
	if err := requireStatus(resp.Status, operation); err != nil {
		return nil, err
	}
	return &resp, nil
}
