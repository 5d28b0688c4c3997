package provider

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Status codes reported by the gateway
const (
	StatusOK                = "OK"
	StatusFailed            = "FAILED"
	StatusApproved          = "APPROVED"
	StatusApprovedPartial   = "APPROVED_PARTIAL"
	StatusPartialExpired    = "PARTIAL_EXPIRED"
	StatusRejected          = "REJECTED"
	StatusPending           = "PENDING"
	StatusPendingValidation = "PENDING_VALIDATION"
	StatusRefunded          = "REFUNDED"
)

// Status is the status block present in every gateway response
type Status struct {
	Status  string     `json:"status"`
	Reason  FlexString `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
	Date    string     `json:"date,omitempty"`
}

// TaxDetail is one tax line of an amount
type TaxDetail struct {
	Kind   string   `json:"kind,omitempty"`
	Amount float64  `json:"amount,omitempty"`
	Base   *float64 `json:"base,omitempty"`
}

// AmountDetail is one breakdown line of an amount (discount, shipping, tip...)
type AmountDetail struct {
	Kind   string  `json:"kind,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

// Amount is a requested amount
type Amount struct {
	Currency string         `json:"currency" validate:"required"`
	Total    float64        `json:"total"`
	Taxes    []TaxDetail    `json:"taxes,omitempty"`
	Details  []AmountDetail `json:"details,omitempty"`
}

// AmountValue is a currency/total pair as reported on processed payments
type AmountValue struct {
	Currency string           `json:"currency,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
}

// PaymentAmount is the amount of a processed payment. It is either a plain
// currency/total pair or a from/to conversion.
type PaymentAmount struct {
	Currency string           `json:"currency,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
	From     *AmountValue     `json:"from,omitempty"`
	To       *AmountValue     `json:"to,omitempty"`
	Factor   *decimal.Decimal `json:"factor,omitempty"`
}

// Address of a person
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Person is a buyer or payer
type Person struct {
	Document     string   `json:"document,omitempty"`
	DocumentType string   `json:"documentType,omitempty"`
	Name         string   `json:"name,omitempty"`
	Surname      string   `json:"surname,omitempty"`
	Email        string   `json:"email,omitempty"`
	Mobile       string   `json:"mobile,omitempty"`
	Company      string   `json:"company,omitempty"`
	Address      *Address `json:"address,omitempty"`
}

// Item is a line item of a payment
type Item struct {
	Sku      string   `json:"sku,omitempty"`
	Name     string   `json:"name,omitempty"`
	Category string   `json:"category,omitempty"`
	Qty      *int     `json:"qty,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// NameValuePair is an extra field attached to a request or payment
type NameValuePair struct {
	Keyword   string `json:"keyword"`
	Value     any    `json:"value"`
	DisplayOn string `json:"displayOn,omitempty"`
}

// Recurring describes a recurring payment schedule
type Recurring struct {
	Periodicity     string `json:"periodicity,omitempty"`
	Interval        string `json:"interval,omitempty"`
	NextPayment     string `json:"nextPayment,omitempty"`
	MaxPeriods      *int   `json:"maxPeriods,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
	NotificationURL string `json:"notificationUrl,omitempty"`
}

// Payment is the payment block of a session or gateway request
type Payment struct {
	Reference          string          `json:"reference" validate:"required"`
	Description        string          `json:"description,omitempty"`
	Amount             Amount          `json:"amount"`
	AllowPartial       *bool           `json:"allowPartial,omitempty"`
	Items              []Item          `json:"items,omitempty"`
	Shipping           *Amount         `json:"shipping,omitempty"`
	Discount           *Amount         `json:"discount,omitempty"`
	PorcentualDiscount *bool           `json:"porcentualDiscount,omitempty"`
	Recurring          *Recurring      `json:"recurring,omitempty"`
	Subscribe          *bool           `json:"subscribe,omitempty"`
	Fields             []NameValuePair `json:"fields,omitempty"`
}

// SubscriptionRequest asks the gateway to tokenize the payer's instrument
type SubscriptionRequest struct {
	Reference   string          `json:"reference" validate:"required"`
	Description string          `json:"description,omitempty"`
	Amount      *Amount         `json:"amount,omitempty"`
	Fields      []NameValuePair `json:"fields,omitempty"`
}

// TokenInstrument references a stored card token
type TokenInstrument struct {
	Token    string `json:"token,omitempty"`
	Subtoken string `json:"subtoken,omitempty"`
}

// Instrument is the payment instrument of a gateway request
type Instrument struct {
	Token   *TokenInstrument `json:"token,omitempty"`
	Card    map[string]any   `json:"card,omitempty"`
	Account map[string]any   `json:"account,omitempty"`
	OTP     string           `json:"otp,omitempty"`
	Pin     string           `json:"pin,omitempty"`
}

// RedirectRequest creates a hosted checkout session
type RedirectRequest struct {
	Auth          *Auth                `json:"auth,omitempty"`
	Locale        string               `json:"locale,omitempty"`
	Payment       *Payment             `json:"payment,omitempty"`
	Payments      []Payment            `json:"payments,omitempty"`
	Subscription  *SubscriptionRequest `json:"subscription,omitempty"`
	Buyer         *Person              `json:"buyer,omitempty"`
	Payer         *Person              `json:"payer,omitempty"`
	IPAddress     string               `json:"ipAddress" validate:"required"`
	UserAgent     string               `json:"userAgent" validate:"required"`
	ReturnURL     string               `json:"returnUrl,omitempty"`
	CancelURL     string               `json:"cancelUrl,omitempty"`
	Expiration    string               `json:"expiration,omitempty"`
	PaymentMethod string               `json:"paymentMethod,omitempty"`
	Fields        []NameValuePair      `json:"fields,omitempty"`
	SkipResult    *bool                `json:"skipResult,omitempty"`
	NoBuyerFill   *bool                `json:"noBuyerFill,omitempty"`
	AttemptsLimit *int                 `json:"attemptsLimit,omitempty"`
	Type          string               `json:"type,omitempty"`
	Metadata      map[string]any       `json:"metadata,omitempty"`
}

// RedirectResponse is the answer to a session creation
type RedirectResponse struct {
	Status     Status         `json:"status"`
	RequestID  FlexString     `json:"requestId,omitempty"`
	ProcessURL string         `json:"processUrl,omitempty"`
	Extra      map[string]any `json:"-"`
}

func (r *RedirectResponse) UnmarshalJSON(data []byte) error {
	type alias RedirectResponse
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*r = RedirectResponse(a)
	r.Extra = extra
	return nil
}

func (r RedirectResponse) MarshalJSON() ([]byte, error) {
	type alias RedirectResponse
	return encodeWithExtra(alias(r), r.Extra)
}

// Transaction is one payment attempt of a session
type Transaction struct {
	Status            Status         `json:"status"`
	InternalReference int64          `json:"internalReference,omitempty"`
	Reference         string         `json:"reference,omitempty"`
	PaymentMethod     string         `json:"paymentMethod,omitempty"`
	PaymentMethodName string         `json:"paymentMethodName,omitempty"`
	IssuerName        string         `json:"issuerName,omitempty"`
	Amount            *PaymentAmount `json:"amount,omitempty"`
	Authorization     string         `json:"authorization,omitempty"`
	Receipt           string         `json:"receipt,omitempty"`
	Franchise         string         `json:"franchise,omitempty"`
	Refunded          bool           `json:"refunded,omitempty"`
	ProcessorFields   map[string]any `json:"processorFields,omitempty"`
	Extra             map[string]any `json:"-"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*t = Transaction(a)
	t.Extra = extra
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return encodeWithExtra(alias(t), t.Extra)
}

// TransactionList decodes either a single transaction object or an array of them
type TransactionList []Transaction

func (l *TransactionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '{' {
		var single Transaction
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = TransactionList{single}
		return nil
	}
	var many []Transaction
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// RedirectInformation is the state of a session as returned by query, cancel,
// refund and transaction actions
type RedirectInformation struct {
	RequestID    FlexString       `json:"requestId,omitempty"`
	Status       Status           `json:"status"`
	Request      *RedirectRequest `json:"request,omitempty"`
	Payment      TransactionList  `json:"payment,omitempty"`
	Subscription any              `json:"subscription,omitempty"`
	Extra        map[string]any   `json:"-"`
}

func (r *RedirectInformation) UnmarshalJSON(data []byte) error {
	type alias RedirectInformation
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*r = RedirectInformation(a)
	r.Extra = extra
	return nil
}

func (r RedirectInformation) MarshalJSON() ([]byte, error) {
	type alias RedirectInformation
	return encodeWithExtra(alias(r), r.Extra)
}

// TransactionAction is an action on a pre-authorized transaction
type TransactionAction string

const (
	ActionCheckout        TransactionAction = "checkout"
	ActionReauthorization TransactionAction = "reauthorization"
	ActionReverse         TransactionAction = "reverse"
)

// TransactionActionRequest runs an action on a pre-authorization
type TransactionActionRequest struct {
	Auth              *Auth             `json:"auth,omitempty"`
	Action            TransactionAction `json:"action" validate:"required"`
	InternalReference int64             `json:"internalReference" validate:"required"`
	Amount            *Amount           `json:"amount,omitempty"`
	Fields            []NameValuePair   `json:"fields,omitempty"`
}

// RefundRequest reverses an approved payment
type RefundRequest struct {
	Auth              *Auth           `json:"auth,omitempty"`
	InternalReference int64           `json:"internalReference" validate:"required"`
	Amount            *Amount         `json:"amount,omitempty"`
	Fields            []NameValuePair `json:"fields,omitempty"`
}

// CheckoutNotification is the body PlacetoPay posts to the merchant's notification URL
type CheckoutNotification struct {
	Status    Status         `json:"status"`
	RequestID FlexString     `json:"requestId"`
	Reference string         `json:"reference,omitempty"`
	Signature string         `json:"signature"`
	Extra     map[string]any `json:"-"`
}

func (n *CheckoutNotification) UnmarshalJSON(data []byte) error {
	type alias CheckoutNotification
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*n = CheckoutNotification(a)
	n.Extra = extra
	return nil
}

func (n CheckoutNotification) MarshalJSON() ([]byte, error) {
	type alias CheckoutNotification
	return encodeWithExtra(alias(n), n.Extra)
}
