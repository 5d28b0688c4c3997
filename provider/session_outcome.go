package provider

import (
	"slices"

	"github.com/shopspring/decimal"
)

// FinalSessionStatuses are the session states no further transition is expected from
var FinalSessionStatuses = []string{
	StatusApproved,
	StatusRejected,
	StatusApprovedPartial,
	StatusPartialExpired,
	StatusFailed,
}

// PaymentAttemptSummary is one payment attempt of a session
type PaymentAttemptSummary struct {
	InternalReference int64            `json:"internalReference,omitempty"`
	Reference         string           `json:"reference,omitempty"`
	Status            string           `json:"status,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	Message           string           `json:"message,omitempty"`
	Authorization     string           `json:"authorization,omitempty"`
	Receipt           string           `json:"receipt,omitempty"`
	PaymentMethod     string           `json:"paymentMethod,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          string           `json:"currency,omitempty"`
}

// SessionOutcome summarizes what happened to a checkout session
type SessionOutcome struct {
	RequestID      string                  `json:"requestId,omitempty"`
	Status         string                  `json:"status"`
	Final          bool                    `json:"final"`
	Paid           bool                    `json:"paid"`
	PartiallyPaid  bool                    `json:"partiallyPaid"`
	ExpiredPartial bool                    `json:"expiredPartial"`
	TotalRequested *decimal.Decimal        `json:"totalRequested,omitempty"`
	Currency       string                  `json:"currency,omitempty"`
	PaidTotal      decimal.Decimal         `json:"paidTotal"`
	PendingTotal   decimal.Decimal         `json:"pendingTotal"`
	Attempts       []PaymentAttemptSummary `json:"attempts"`
}

// SummarizeSessionOutcome derives paid and pending totals from a session's
// request and its payment attempts
func SummarizeSessionOutcome(info *RedirectInformation) SessionOutcome {
	if info == nil {
		return SessionOutcome{Attempts: []PaymentAttemptSummary{}}
	}

	status := info.Status.Status
	requested, currency := requestedTotal(info.Request)

	attempts := make([]PaymentAttemptSummary, 0, len(info.Payment))
	paidTotal := decimal.Zero
	for _, tx := range info.Payment {
		amount, txCurrency := attemptAmount(tx.Amount)
		if txCurrency == "" {
			txCurrency = currency
		}
		attempts = append(attempts, PaymentAttemptSummary{
			InternalReference: tx.InternalReference,
			Reference:         tx.Reference,
			Status:            tx.Status.Status,
			Reason:            tx.Status.Reason.String(),
			Message:           tx.Status.Message,
			Authorization:     tx.Authorization,
			Receipt:           tx.Receipt,
			PaymentMethod:     tx.PaymentMethod,
			Amount:            amount,
			Currency:          txCurrency,
		})

		if amount != nil && (tx.Status.Status == StatusApproved || tx.Status.Status == StatusApprovedPartial) {
			paidTotal = paidTotal.Add(*amount)
		}
	}

	pendingTotal := decimal.Zero
	if requested != nil {
		pendingTotal = decimal.Max(requested.Sub(paidTotal), decimal.Zero)
	}

	paid := status == StatusApproved
	return SessionOutcome{
		RequestID:      info.RequestID.String(),
		Status:         status,
		Final:          slices.Contains(FinalSessionStatuses, status),
		Paid:           paid,
		PartiallyPaid:  status == StatusApprovedPartial || (paidTotal.IsPositive() && !paid),
		ExpiredPartial: status == StatusPartialExpired,
		TotalRequested: requested,
		Currency:       currency,
		PaidTotal:      paidTotal,
		PendingTotal:   pendingTotal,
		Attempts:       attempts,
	}
}

func requestedTotal(req *RedirectRequest) (*decimal.Decimal, string) {
	if req == nil {
		return nil, ""
	}
	if req.Payment != nil {
		total := decimal.NewFromFloat(req.Payment.Amount.Total)
		return &total, req.Payment.Amount.Currency
	}
	if len(req.Payments) > 0 {
		sum := decimal.Zero
		for _, p := range req.Payments {
			sum = sum.Add(decimal.NewFromFloat(p.Amount.Total))
		}
		return &sum, req.Payments[0].Amount.Currency
	}
	return nil, ""
}

// attemptAmount prefers the converted amount, then the source amount, then the plain total
func attemptAmount(amount *PaymentAmount) (*decimal.Decimal, string) {
	if amount == nil {
		return nil, ""
	}
	if amount.To != nil && amount.To.Total != nil {
		return amount.To.Total, amount.To.Currency
	}
	if amount.From != nil && amount.From.Total != nil {
		return amount.From.Total, amount.From.Currency
	}
	if amount.Total != nil {
		return amount.Total, amount.Currency
	}
	return nil, ""
}
