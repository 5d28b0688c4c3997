package placetopay

import (
	"context"

	"github.com/mstgnz/placetopay/provider"
)

// TransactionService runs actions on pre-authorized transactions
type TransactionService struct {
	service
}

// Action runs checkout, reauthorization or reverse on an internal reference
func (s *TransactionService) Action(ctx context.Context, req provider.TransactionActionRequest) (*provider.RedirectInformation, error) {
	switch req.Action {
	case provider.ActionCheckout, provider.ActionReauthorization, provider.ActionReverse:
	case "":
		return nil, provider.NewValidationError("action is required")
	default:
		return nil, provider.NewValidationError("action %q is not supported", req.Action)
	}
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}

	req.Auth = s.auth()

	var info provider.RedirectInformation
	if err := s.carrier.Post(ctx, endpointTransaction, req, &info); err != nil {
		return nil, err
	}
	if err := requireStatus(info.Status, "transaction"); err != nil {
		return nil, err
	}
	return &info, nil
}

// Checkout captures a pre-authorization
func (s *TransactionService) Checkout(ctx context.Context, internalReference int64, amount provider.Amount) (*provider.RedirectInformation, error) {
	return s.Action(ctx, provider.TransactionActionRequest{
		Action:            provider.ActionCheckout,
		InternalReference: internalReference,
		Amount:            &amount,
	})
}

// Reauthorize changes the amount of a pre-authorization
func (s *TransactionService) Reauthorize(ctx context.Context, internalReference int64, amount provider.Amount) (*provider.RedirectInformation, error) {
	return s.Action(ctx, provider.TransactionActionRequest{
		Action:            provider.ActionReauthorization,
		InternalReference: internalReference,
		Amount:            &amount,
	})
}

// Reverse releases a pre-authorization
func (s *TransactionService) Reverse(ctx context.Context, internalReference int64, fields ...provider.NameValuePair) (*provider.RedirectInformation, error) {
	return s.Action(ctx, provider.TransactionActionRequest{
		Action:            provider.ActionReverse,
		InternalReference: internalReference,
		Fields:            fields,
	})
}

// RefundService reverses approved payments
type RefundService struct {
	service
}

// Refund reverses a payment, fully or for the given amount
func (s *RefundService) Refund(ctx context.Context, req provider.RefundRequest) (*provider.RedirectInformation, error) {
	if err := provider.ValidateRequired(req); err != nil {
		return nil, err
	}

	req.Auth = s.auth()

	var info provider.RedirectInformation
	if err := s.carrier.Post(ctx, endpointReverse, req, &info); err != nil {
		return nil, err
	}
	if err := requireStatus(info.Status, "reverse"); err != nil {
		return nil, err
	}

	s.logger.Info("PlacetoPay refund requested", map[string]any{
		"internalReference": req.InternalReference,
		"status":            info.Status.Status,
	})
	return &info, nil
}
