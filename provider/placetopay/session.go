package placetopay

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/mstgnz/placetopay/provider"
)

const (
	defaultPollInterval    = 4 * time.Second
	defaultPollMaxAttempts = 15
)

// DefaultWaitStatuses end WaitForFinalStatus unless WaitOptions.FinalStatuses is set
var DefaultWaitStatuses = []string{
	provider.StatusApproved,
	provider.StatusRejected,
	provider.StatusApprovedPartial,
	provider.StatusPartialExpired,
}

// SessionService manages hosted checkout sessions
type SessionService struct {
	service
	returnURLBase string
	cancelURLBase string
}

// CreateOption customizes a session creation
type CreateOption func(*createOptions)

type createOptions struct {
	locale string
	auth   *provider.Auth
}

// WithLocale overrides the request and default locale
func WithLocale(locale string) CreateOption {
	return func(o *createOptions) { o.locale = locale }
}

// WithAuth sends a prebuilt auth block instead of a fresh one
func WithAuth(auth provider.Auth) CreateOption {
	return func(o *createOptions) { o.auth = &auth }
}

// WaitOptions controls WaitForFinalStatus polling
type WaitOptions struct {
	PollInterval  time.Duration
	MaxAttempts   int
	FinalStatuses []string
}

// Create validates the request and opens a checkout session.
// Every local check runs before the gateway is called.
func (s *SessionService) Create(ctx context.Context, req provider.RedirectRequest, opts ...CreateOption) (*provider.RedirectResponse, error) {
	options := createOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if err := s.validateCreate(&req); err != nil {
		return nil, err
	}

	locale := options.locale
	if locale == "" {
		locale = req.Locale
	}
	locale, err := s.resolveLocale(locale)
	if err != nil {
		return nil, err
	}

	req.Locale = locale
	req.Auth = options.auth
	if req.Auth == nil {
		req.Auth = s.auth()
	}

	var resp provider.RedirectResponse
	if err := s.carrier.Post(ctx, endpointSession, req, &resp); err != nil {
		return nil, err
	}

	if err := requireStatus(resp.Status, "create"); err != nil {
		return nil, err
	}
	if resp.Status.Status != provider.StatusOK {
		return nil, &provider.StatusError{
			Message:      fmt.Sprintf("session not created: %s", resp.Status.Message),
			Status:       resp.Status,
			ResponseBody: resp,
		}
	}
	if resp.RequestID == "" || resp.ProcessURL == "" {
		return nil, provider.NewError(provider.CodeInvalidResponse, "missing requestId or processUrl in create response")
	}

	s.logger.Info("PlacetoPay session created", map[string]any{
		"requestId":  resp.RequestID.String(),
		"processUrl": resp.ProcessURL,
	})
	return &resp, nil
}

// validateCreate runs the local checks and resolves the return and cancel URLs in place
func (s *SessionService) validateCreate(req *provider.RedirectRequest) error {
	if req.IPAddress == "" {
		return provider.NewValidationError("ipAddress is required")
	}
	if req.UserAgent == "" {
		return provider.NewValidationError("userAgent is required")
	}
	if req.Payment == nil && len(req.Payments) == 0 && req.Subscription == nil {
		return provider.NewValidationError("you must provide payment, payments or subscription")
	}
	if err := provider.ValidateRequired(req); err != nil {
		return err
	}

	if err := provider.ValidateFutureExpiration(req.Expiration, s.signer.TimeProvider, s.minExpiration); err != nil {
		return err
	}
	if err := provider.ValidateFieldLimits(req.Fields, "request"); err != nil {
		return err
	}
	if req.Payment != nil {
		if err := provider.ValidateFieldLimits(req.Payment.Fields, "payment"); err != nil {
			return err
		}
	}
	for i, p := range req.Payments {
		if err := provider.ValidateFieldLimits(p.Fields, fmt.Sprintf("payments[%d]", i)); err != nil {
			return err
		}
	}
	if err := provider.ValidateAttemptsLimit(req.AttemptsLimit); err != nil {
		return err
	}
	if err := provider.ValidateMetadata(req.Metadata); err != nil {
		return err
	}
	if err := provider.ValidatePersonDocument(req.Buyer, "buyer"); err != nil {
		return err
	}
	if err := provider.ValidatePersonDocument(req.Payer, "payer"); err != nil {
		return err
	}

	if req.ReturnURL == "" && s.returnURLBase != "" {
		if path, ok := req.Metadata["returnPath"]; ok && path != nil {
			built, err := provider.BuildReturnURL(s.returnURLBase, fmt.Sprint(path), stringParams(req.Metadata["returnParams"]))
			if err != nil {
				return err
			}
			req.ReturnURL = built
		}
	}
	if req.ReturnURL == "" {
		return provider.NewValidationError("returnUrl is required (direct or via returnUrlBase + metadata.returnPath)")
	}
	if err := provider.ValidateURL(req.ReturnURL, "returnUrl"); err != nil {
		return err
	}

	if req.CancelURL == "" && s.cancelURLBase != "" {
		if path, ok := req.Metadata["cancelPath"]; ok && path != nil {
			built, err := provider.BuildReturnURL(s.cancelURLBase, fmt.Sprint(path), stringParams(req.Metadata["cancelParams"]))
			if err != nil {
				return err
			}
			req.CancelURL = built
		}
	}
	if req.CancelURL != "" {
		if err := provider.ValidateURL(req.CancelURL, "cancelUrl"); err != nil {
			return err
		}
	}
	return nil
}

func stringParams(v any) map[string]string {
	switch params := v.(type) {
	case map[string]string:
		return params
	case map[string]any:
		out := make(map[string]string, len(params))
		for k, val := range params {
			out[k] = fmt.Sprint(val)
		}
		return out
	}
	return nil
}

type authBody struct {
	Auth *provider.Auth `json:"auth"`
}

// Get queries the state of a session
func (s *SessionService) Get(ctx context.Context, requestID string) (*provider.RedirectInformation, error) {
	if err := requireID(requestID, "requestId"); err != nil {
		return nil, err
	}

	var info provider.RedirectInformation
	if err := s.carrier.Post(ctx, endpointSession+"/"+url.PathEscape(requestID), authBody{Auth: s.auth()}, &info); err != nil {
		return nil, err
	}
	if err := requireStatus(info.Status, "query"); err != nil {
		return nil, err
	}
	if info.RequestID == "" {
		info.RequestID = provider.FlexString(requestID)
	}
	return &info, nil
}

// Cancel cancels a pending session
func (s *SessionService) Cancel(ctx context.Context, requestID string) (*provider.RedirectInformation, error) {
	if err := requireID(requestID, "requestId"); err != nil {
		return nil, err
	}

	var info provider.RedirectInformation
	if err := s.carrier.Post(ctx, endpointSession+"/"+url.PathEscape(requestID)+"/cancel", authBody{Auth: s.auth()}, &info); err != nil {
		return nil, err
	}
	if err := requireStatus(info.Status, "cancel"); err != nil {
		return nil, err
	}
	return &info, nil
}

// WaitForFinalStatus polls the session until it reaches one of the final statuses.
// It gives up with a TIMEOUT_FINAL_STATUS error after MaxAttempts queries.
func (s *SessionService) WaitForFinalStatus(ctx context.Context, requestID string, opts WaitOptions) (*provider.RedirectInformation, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultPollMaxAttempts
	}
	finals := opts.FinalStatuses
	if len(finals) == 0 {
		finals = DefaultWaitStatuses
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		info, err := s.Get(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if slices.Contains(finals, info.Status.Status) {
			return info, nil
		}

		s.logger.Debug("PlacetoPay session still in progress", map[string]any{
			"requestId": requestID,
			"status":    info.Status.Status,
			"attempt":   attempt,
		})

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, provider.NewError(provider.CodeTimeoutFinalStatus,
		fmt.Sprintf("session %s did not reach a final status in time", requestID))
}

// Outcome queries a session and summarizes its payments
func (s *SessionService) Outcome(ctx context.Context, requestID string) (provider.SessionOutcome, error) {
	info, err := s.Get(ctx, requestID)
	if err != nil {
		return provider.SessionOutcome{}, err
	}
	return provider.SummarizeSessionOutcome(info), nil
}
