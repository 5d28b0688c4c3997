package placetopay

import (
	"context"

	"github.com/mstgnz/placetopay/provider"
)

// AutopayService manages scheduled automatic payments
type AutopayService struct {
	service
}

type autopaySearchBody struct {
	Auth    *provider.Auth `json:"auth"`
	Filters map[string]any `json:"filters,omitempty"`
}

// Create schedules an autopay
func (s *AutopayService) Create(ctx context.Context, req provider.AutopayRequest) (*provider.AutopayResponse, error) {
	return s.send(ctx, endpointAutopayCreate, "autopay create", req)
}

// Update changes an existing autopay
func (s *AutopayService) Update(ctx context.Context, req provider.AutopayRequest) (*provider.AutopayResponse, error) {
	return s.send(ctx, endpointAutopayUpdate, "autopay update", req)
}

func (s *AutopayService) send(ctx context.Context, path, operation string, req provider.AutopayRequest) (*provider.AutopayResponse, error) {
	if req.Subscription == nil {
		return nil, provider.NewValidationError("subscription is required")
	}
	if req.ReturnURL != "" {
		if err := provider.ValidateURL(req.ReturnURL, "returnUrl"); err != nil {
			return nil, err
		}
	}

	req.Auth = s.auth()
	return s.post(ctx, path, operation, req)
}

// Cancel cancels an autopay
func (s *AutopayService) Cancel(ctx context.Context, autopayID string) (*provider.AutopayResponse, error) {
	if err := requireID(autopayID, "autopayId"); err != nil {
		return nil, err
	}
	return s.post(ctx, endpointAutopayCancel, "autopay cancel", idBody{Auth: s.auth(), ID: idValue(autopayID)})
}

// Search lists autopays matching the filters
func (s *AutopayService) Search(ctx context.Context, filters map[string]any) (*provider.AutopayResponse, error) {
	return s.post(ctx, endpointAutopaySearch, "autopay search", autopaySearchBody{Auth: s.auth(), Filters: filters})
}

// Transactions lists the payments made by an autopay
func (s *AutopayService) Transactions(ctx context.Context, autopayID string) (*provider.AutopayResponse, error) {
	if err := requireID(autopayID, "autopayId"); err != nil {
		return nil, err
	}
	return s.post(ctx, endpointAutopayTxs, "autopay transactions", idBody{Auth: s.auth(), ID: idValue(autopayID)})
}

func (s *AutopayService) post(ctx context.Context, path, operation string, body any) (*provider.AutopayResponse, error) {
	var resp provider.AutopayResponse
	if err := s.carrier.Post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	if err := requireStatus(resp.Status, operation); err != nil {
		return nil, err
	}
	return &resp, nil
}
