package provider

// CollectRequest charges a stored instrument directly
type CollectRequest struct {
	Auth           *Auth           `json:"auth,omitempty"`
	Locale         string          `json:"locale,omitempty"`
	Payer          *Person         `json:"payer" validate:"required"`
	Buyer          *Person         `json:"buyer,omitempty"`
	Payment        *Payment        `json:"payment" validate:"required"`
	Instrument     *Instrument     `json:"instrument" validate:"required"`
	IPAddress      string          `json:"ipAddress" validate:"required"`
	UserAgent      string          `json:"userAgent" validate:"required"`
	ReturnURL      string          `json:"returnUrl" validate:"required"`
	Expiration     string          `json:"expiration,omitempty"`
	Type           string          `json:"type,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	Fields         []NameValuePair `json:"fields,omitempty"`
	IdempotencyKey string          `json:"-"`
}

// InstrumentInvalidateRequest invalidates a token or subtoken
type InstrumentInvalidateRequest struct {
	Auth       *Auth       `json:"auth,omitempty"`
	Locale     string      `json:"locale,omitempty"`
	Instrument *Instrument `json:"instrument" validate:"required"`
}

// GatewayInformationRequest asks for the routing information of an instrument
type GatewayInformationRequest struct {
	Auth       *Auth          `json:"auth,omitempty"`
	Locale     string         `json:"locale,omitempty"`
	Payment    *Payment       `json:"payment" validate:"required"`
	Instrument *Instrument    `json:"instrument" validate:"required"`
	IPAddress  string         `json:"ipAddress" validate:"required"`
	UserAgent  string         `json:"userAgent" validate:"required"`
	Provider   string         `json:"provider,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// GatewayTokenRequest looks up a tokenized instrument
type GatewayTokenRequest struct {
	Auth       *Auth       `json:"auth,omitempty"`
	Locale     string      `json:"locale,omitempty"`
	Instrument *Instrument `json:"instrument" validate:"required"`
}

// GatewayProcessRequest processes a payment with an instrument
type GatewayProcessRequest struct {
	Auth               *Auth          `json:"auth,omitempty"`
	Locale             string         `json:"locale,omitempty"`
	Payment            *Payment       `json:"payment" validate:"required"`
	Instrument         *Instrument    `json:"instrument" validate:"required"`
	Payer              *Person        `json:"payer" validate:"required"`
	Buyer              *Person        `json:"buyer,omitempty"`
	IPAddress          string         `json:"ipAddress" validate:"required"`
	UserAgent          string         `json:"userAgent" validate:"required"`
	Provider           string         `json:"provider,omitempty"`
	Additional         map[string]any `json:"additional,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	InitiatorIndicator string         `json:"initiatorIndicator,omitempty"`
	Orchestrator       map[string]any `json:"orchestrator,omitempty"`
	Capture            *bool          `json:"capture,omitempty"`
	IdempotencyKey     string         `json:"-"`
}

// GatewayQueryRequest queries a transaction by one of its identifiers
type GatewayQueryRequest struct {
	Auth              *Auth  `json:"auth,omitempty"`
	RequestID         int64  `json:"requestId,omitempty"`
	InternalReference int64  `json:"internalReference,omitempty"`
	Reference         string `json:"reference,omitempty"`
	Notify            *bool  `json:"notify,omitempty"`
	Data              *bool  `json:"data,omitempty"`
	Provider          string `json:"provider,omitempty"`
}

// Pagination of a search
type Pagination struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// GatewaySearchRequest searches transactions by filters
type GatewaySearchRequest struct {
	Auth       *Auth          `json:"auth,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
	Pagination *Pagination    `json:"pagination,omitempty"`
	Provider   string         `json:"provider,omitempty"`
}

// GatewayTransactionRequest runs checkout/reauthorization/reverse on the gateway
type GatewayTransactionRequest struct {
	Auth              *Auth           `json:"auth,omitempty"`
	Action            string          `json:"action" validate:"required"`
	InternalReference int64           `json:"internalReference" validate:"required"`
	Amount            *Amount         `json:"amount,omitempty"`
	Fields            []NameValuePair `json:"fields,omitempty"`
	Provider          string          `json:"provider,omitempty"`
	IdempotencyKey    string          `json:"-"`
}

// GatewayTokenizeRequest tokenizes an instrument
type GatewayTokenizeRequest struct {
	Auth           *Auth          `json:"auth,omitempty"`
	Locale         string         `json:"locale,omitempty"`
	Instrument     *Instrument    `json:"instrument" validate:"required"`
	Payer          *Person        `json:"payer,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	IdempotencyKey string         `json:"-"`
}

// GatewayOTPRequest validates a one time password for a payment
type GatewayOTPRequest struct {
	Auth              *Auth  `json:"auth,omitempty"`
	InternalReference int64  `json:"internalReference" validate:"required"`
	OTP               string `json:"otp" validate:"required"`
	Provider          string `json:"provider,omitempty"`
	IdempotencyKey    string `json:"-"`
}

// Gateway3DSRequest completes a 3DS challenge
type Gateway3DSRequest struct {
	Auth              *Auth  `json:"auth,omitempty"`
	InternalReference int64  `json:"internalReference" validate:"required"`
	PaRes             string `json:"pares,omitempty"`
	CRes              string `json:"cRes,omitempty"`
	Provider          string `json:"provider,omitempty"`
	IdempotencyKey    string `json:"-"`
}

// GatewayReportRequest asks for a transaction report
type GatewayReportRequest struct {
	Auth              *Auth  `json:"auth,omitempty"`
	InternalReference int64  `json:"internalReference,omitempty"`
	RequestID         int64  `json:"requestId,omitempty"`
	Reference         string `json:"reference,omitempty"`
	Provider          string `json:"provider,omitempty"`
	StartDate         string `json:"startDate,omitempty"`
	EndDate           string `json:"endDate,omitempty"`
	CallbackURL       string `json:"callbackUrl,omitempty"`
	IdempotencyKey    string `json:"-"`
}

// GatewayPinpadRequest talks to a physical pinpad
type GatewayPinpadRequest struct {
	Auth       *Auth          `json:"auth,omitempty"`
	Provider   string         `json:"provider,omitempty"`
	Instrument *Instrument    `json:"instrument,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
}

// GatewayAccountValidatorRequest validates a bank account
type GatewayAccountValidatorRequest struct {
	Auth       *Auth       `json:"auth,omitempty"`
	Instrument *Instrument `json:"instrument" validate:"required"`
	Payment    *Payment    `json:"payment,omitempty"`
	IPAddress  string      `json:"ipAddress" validate:"required"`
	UserAgent  string      `json:"userAgent" validate:"required"`
	Provider   string      `json:"provider,omitempty"`
}

// GatewayCashOrderRequest generates a cash payment order
type GatewayCashOrderRequest struct {
	Auth     *Auth    `json:"auth,omitempty"`
	Payment  *Payment `json:"payment" validate:"required"`
	Payer    *Person  `json:"payer" validate:"required"`
	Buyer    *Person  `json:"buyer,omitempty"`
	Provider string   `json:"provider,omitempty"`
}

// GatewayResponse covers the responses of the gateway endpoints. Fields an
// endpoint does not use stay empty; unknown keys land in Extra.
type GatewayResponse struct {
	Status            Status            `json:"status"`
	Date              string            `json:"date,omitempty"`
	TransactionDate   string            `json:"transactionDate,omitempty"`
	RequestID         FlexString        `json:"requestId,omitempty"`
	InternalReference int64             `json:"internalReference,omitempty"`
	Reference         string            `json:"reference,omitempty"`
	ProcessURL        string            `json:"processUrl,omitempty"`
	PaymentMethod     string            `json:"paymentMethod,omitempty"`
	Franchise         string            `json:"franchise,omitempty"`
	FranchiseName     string            `json:"franchiseName,omitempty"`
	IssuerName        string            `json:"issuerName,omitempty"`
	Amount            *PaymentAmount    `json:"amount,omitempty"`
	Conversion        *PaymentAmount    `json:"conversion,omitempty"`
	Authorization     string            `json:"authorization,omitempty"`
	Receipt           string            `json:"receipt,omitempty"`
	Type              string            `json:"type,omitempty"`
	Refunded          bool              `json:"refunded,omitempty"`
	LastDigits        string            `json:"lastDigits,omitempty"`
	Provider          string            `json:"provider,omitempty"`
	ServiceCode       string            `json:"serviceCode,omitempty"`
	ProcessorFields   map[string]any    `json:"processorFields,omitempty"`
	Additional        map[string]any    `json:"additional,omitempty"`
	Data              map[string]any    `json:"data,omitempty"`
	Instrument        *Instrument       `json:"instrument,omitempty"`
	Transactions      []GatewayResponse `json:"transactions,omitempty"`
	Dispersion        []GatewayResponse `json:"dispersion,omitempty"`
	Payment           TransactionList   `json:"payment,omitempty"`
	Extra             map[string]any    `json:"-"`
}

func (r *GatewayResponse) UnmarshalJSON(data []byte) error {
	type alias GatewayResponse
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*r = GatewayResponse(a)
	r.Extra = extra
	return nil
}

func (r GatewayResponse) MarshalJSON() ([]byte, error) {
	type alias GatewayResponse
	return encodeWithExtra(alias(r), r.Extra)
}

// PaymentLinkCreateRequest creates a payment link
type PaymentLinkCreateRequest struct {
	Auth              *Auth    `json:"auth,omitempty"`
	Name              string   `json:"name,omitempty"`
	Reference         string   `json:"reference,omitempty"`
	Description       string   `json:"description,omitempty"`
	Amount            *Amount  `json:"amount" validate:"required"`
	ExpirationDate    string   `json:"expirationDate,omitempty"`
	PaymentExpiration *int     `json:"paymentExpiration,omitempty"`
	SendEmail         *bool    `json:"sendEmail,omitempty"`
	Emails            []string `json:"emails,omitempty"`
}

// PaymentLinkCreateResponse is the answer to a link creation
type PaymentLinkCreateResponse struct {
	Status Status `json:"status"`
	ID     int64  `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
}

// PaymentLinkSite is the site a payment link belongs to
type PaymentLinkSite struct {
	ID           int64  `json:"id,omitempty"`
	Slug         string `json:"slug,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	StoreName    string `json:"storeName,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Document     string `json:"document,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
}

// PaymentLinkInfo describes an existing payment link. Its status is a plain string.
type PaymentLinkInfo struct {
	ID                int64            `json:"id"`
	Status            string           `json:"status"`
	URL               string           `json:"url,omitempty"`
	ExpirationDate    string           `json:"expirationDate,omitempty"`
	Name              string           `json:"name,omitempty"`
	Reference         string           `json:"reference,omitempty"`
	Description       string           `json:"description,omitempty"`
	TotalPayments     int              `json:"totalPayments,omitempty"`
	AvailablePayments int              `json:"availablePayments,omitempty"`
	PaymentExpiration int              `json:"paymentExpiration,omitempty"`
	Amount            *Amount          `json:"amount,omitempty"`
	Site              *PaymentLinkSite `json:"site,omitempty"`
	CreatedAt         string           `json:"createdAt,omitempty"`
	UpdatedAt         string           `json:"updatedAt,omitempty"`
	PaymentMethods    []string         `json:"paymentMethods,omitempty"`
	Extra             map[string]any   `json:"-"`
}

func (p *PaymentLinkInfo) UnmarshalJSON(data []byte) error {
	type alias PaymentLinkInfo
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*p = PaymentLinkInfo(a)
	p.Extra = extra
	return nil
}

// PaymentLinkDisableResponse is the answer to disabling a link
type PaymentLinkDisableResponse struct {
	Status Status `json:"status"`
	ID     int64  `json:"id,omitempty"`
}

// AutopayRecurring is the schedule of an autopay
type AutopayRecurring struct {
	Type        string `json:"type,omitempty"`
	Periodicity string `json:"periodicity,omitempty"`
	Interval    *int   `json:"interval,omitempty"`
	MaxPeriods  *int   `json:"maxPeriods,omitempty"`
	NextPayment string `json:"nextPayment,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// AutopaySubscription is the subscription block of an autopay request
type AutopaySubscription struct {
	ID          string            `json:"id,omitempty"`
	Reference   string            `json:"reference,omitempty"`
	Description string            `json:"description,omitempty"`
	Recurring   *AutopayRecurring `json:"recurring,omitempty"`
	Amount      *Amount           `json:"amount,omitempty"`
}

// AutopayRequest creates or updates an autopay
type AutopayRequest struct {
	Auth         *Auth                `json:"auth,omitempty"`
	Subscription *AutopaySubscription `json:"subscription" validate:"required"`
	DueDay       string               `json:"dueDay,omitempty"`
	Additional   map[string]any       `json:"additional,omitempty"`
	Expiration   string               `json:"expiration,omitempty"`
	ReturnURL    string               `json:"returnUrl,omitempty"`
	Locale       string               `json:"locale,omitempty"`
}

// AutopayResponse is returned by every autopay endpoint
type AutopayResponse struct {
	Status     Status         `json:"status"`
	ID         FlexString     `json:"id,omitempty"`
	ProcessURL string         `json:"processUrl,omitempty"`
	RequestID  FlexString     `json:"requestId,omitempty"`
	Extra      map[string]any `json:"-"`
}

func (r *AutopayResponse) UnmarshalJSON(data []byte) error {
	type alias AutopayResponse
	var a alias
	extra, err := decodeWithExtra(data, &a)
	if err != nil {
		return err
	}
	*r = AutopayResponse(a)
	r.Extra = extra
	return nil
}
