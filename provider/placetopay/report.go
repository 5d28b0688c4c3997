package placetopay

import (
	"context"

	"github.com/mstgnz/placetopay/provider"
)

// ReportService requests and downloads gateway reports
type ReportService struct {
	service
}

// RequestReport asks the gateway to build a report
func (s *ReportService) RequestReport(ctx context.Context, req provider.GatewayReportRequest) (*provider.GatewayResponse, error) {
	if req.CallbackURL != "" {
		if err := provider.ValidateURL(req.CallbackURL, "callbackUrl"); err != nil {
			return nil, err
		}
	}

	req.Auth = s.auth()

	var resp provider.GatewayResponse
	if err := s.carrier.Post(ctx, endpointReport, req, &resp, s.idempotency(req.IdempotencyKey)...); err != nil {
		return nil, err
	}
	if err := requireStatus(resp.Status, "gateway report"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ObtainReport downloads a generated report as plain text (CSV)
func (s *ReportService) ObtainReport(ctx context.Context, reportID string) (string, error) {
	if err := requireID(reportID, "id"); err != nil {
		return "", err
	}
	return s.carrier.PostText(ctx, endpointReportObtain, idBody{Auth: s.auth(), ID: idValue(reportID)})
}
