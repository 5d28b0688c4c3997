package placetopay

import (
	"context"
	"net/url"

	"github.com/mstgnz/placetopay/provider"
)

// PaymentLinkService manages shareable payment links
type PaymentLinkService struct {
	service
}

// Create creates a payment link
func (s *PaymentLinkService) Create(ctx context.Context, req provider.PaymentLinkCreateRequest) (*provider.PaymentLinkCreateResponse, error) {
	if req.Amount == nil {
		return nil, provider.NewValidationError("amount is required")
	}
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}

	req.Auth = s.auth()

	var resp provider.PaymentLinkCreateResponse
	if err := s.carrier.Post(ctx, endpointPaymentLink, req, &resp); err != nil {
		return nil, err
	}
	if err := requireStatus(resp.Status, "payment-link create"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a payment link. Its status is a plain string so it is not checked.
func (s *PaymentLinkService) Get(ctx context.Context, linkID string) (*provider.PaymentLinkInfo, error) {
	if err := requireID(linkID, "linkId"); err != nil {
		return nil, err
	}

	var info provider.PaymentLinkInfo
	if err := s.carrier.Post(ctx, endpointPaymentLink+"/"+url.PathEscape(linkID), authBody{Auth: s.auth()}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Disable disables a payment link
func (s *PaymentLinkService) Disable(ctx context.Context, linkID string) (*provider.PaymentLinkDisableResponse, error) {
	if err := requireID(linkID, "linkId"); err != nil {
		return nil, err
	}

	var resp provider.PaymentLinkDisableResponse
	if err := s.carrier.Post(ctx, endpointPaymentLinkOff+"/"+url.PathEscape(linkID), authBody{Auth: s.auth()}, &resp); err != nil {
		return nil, err
	}
	if err := requireStatus(resp.Status, "payment-link disable"); err != nil {
		return nil, err
	}
	return &resp, nil
}
