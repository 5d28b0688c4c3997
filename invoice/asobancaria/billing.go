package asobancaria

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// BillingLineLength is the width of every billing record
const BillingLineLength = 220

// Increment types of a billing detail
const (
	IncrementDaily = 0
	IncrementFixed = 1
)

// BillingHeader is the file header (record 01) of a billing file
type BillingHeader struct {
	CollectorNIT string `json:"collectorNit" yaml:"collector_nit"`
	// AdditionalNIT and OriginatorCode are not used by PlacetoPay and default to zeros
	AdditionalNIT  string `json:"additionalNit,omitempty" yaml:"additional_nit"`
	OriginatorCode string `json:"originatorCode,omitempty" yaml:"originator_code"`
	FileDate       string `json:"fileDate" yaml:"file_date"`
	FileTime       string `json:"fileTime" yaml:"file_time"`
	// Modifier distinguishes files sent the same day; defaults to A
	Modifier string `json:"modifier,omitempty" yaml:"modifier"`
}

// BillingBatchHeader is the batch header (record 05) of a billing file
type BillingBatchHeader struct {
	ServiceCode        string `json:"serviceCode" yaml:"service_code"`
	BatchNumber        int    `json:"batchNumber" yaml:"batch_number"`
	ServiceDescription string `json:"serviceDescription" yaml:"service_description"`
}

// BillingDetail is one invoice (record 06)
type BillingDetail struct {
	Reference          string          `json:"reference" yaml:"reference"`
	SecondaryReference string          `json:"secondaryReference,omitempty" yaml:"secondary_reference"`
	Periods            int             `json:"periods,omitempty" yaml:"periods"`
	Cycle              string          `json:"cycle,omitempty" yaml:"cycle"`
	Amount             decimal.Decimal `json:"amount" yaml:"amount"`
	AdditionalAmount   decimal.Decimal `json:"additionalAmount,omitempty" yaml:"additional_amount"`
	DueDate            string          `json:"dueDate" yaml:"due_date"`
	CutoffDate         string          `json:"cutoffDate" yaml:"cutoff_date"`
	// DailyIncrement below 1 is a percentage, otherwise a fixed value
	DailyIncrement decimal.Decimal `json:"dailyIncrement" yaml:"daily_increment"`
	IncrementType  int             `json:"incrementType" yaml:"increment_type"`
	PayerID        string          `json:"payerId,omitempty" yaml:"payer_id"`
	PayerName      string          `json:"payerName,omitempty" yaml:"payer_name"`
}

// BillingBatch groups the invoices of one service
type BillingBatch struct {
	Header  BillingBatchHeader `json:"header" yaml:"header"`
	Details []BillingDetail    `json:"details" yaml:"details"`
}

// BillingFile is a complete billing (facturación) file
type BillingFile struct {
	Header  BillingHeader  `json:"header" yaml:"header"`
	Batches []BillingBatch `json:"batches" yaml:"batches"`
}

// BuildBillingFile encodes a billing file as newline separated 220 character records.
// Batch and file control totals are computed from the details.
func BuildBillingFile(file BillingFile) (string, error) {
	lines := make([]string, 0, 2+len(file.Batches)*2)

	header, err := billingHeader(file.Header)
	if err != nil {
		return "", err
	}
	lines = append(lines, header)

	for i, batch := range file.Batches {
		line, err := billingBatchHeader(batch.Header)
		if err != nil {
			return "", fmt.Errorf("batch %d: %w", i+1, err)
		}
		lines = append(lines, line)

		for j, detail := range batch.Details {
			line, err := billingDetail(detail)
			if err != nil {
				return "", fmt.Errorf("batch %d detail %d: %w", i+1, j+1, err)
			}
			lines = append(lines, line)
		}

		line, err = billingBatchControl(batch, i)
		if err != nil {
			return "", fmt.Errorf("batch %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}

	control, err := billingFileControl(file)
	if err != nil {
		return "", err
	}
	lines = append(lines, control)

	return strings.Join(lines, "\n"), nil
}

func billingHeader(h BillingHeader) (string, error) {
	return newRecord("01").
		numeric(h.CollectorNIT, 10).
		numeric(h.AdditionalNIT, 10).
		numeric(h.OriginatorCode, 3).
		add(Date8(h.FileDate)).
		add(Time4(h.FileTime)).
		add(modifier(h.Modifier, "A")).
		blank(182).
		line("billing header", BillingLineLength)
}

func billingBatchHeader(h BillingBatchHeader) (string, error) {
	return newRecord("05").
		numeric(h.ServiceCode, 13).
		numeric(strconv.Itoa(h.BatchNumber), 4).
		alpha(h.ServiceDescription, 15).
		blank(186).
		line("billing batch header", BillingLineLength)
}

func billingDetail(d BillingDetail) (string, error) {
	if d.IncrementType != IncrementDaily && d.IncrementType != IncrementFixed {
		return "", fmt.Errorf("%w: incrementType must be 0 or 1, got %d", ErrInvalidValue, d.IncrementType)
	}
	periods := ""
	if d.Periods != 0 {
		periods = strconv.Itoa(d.Periods)
	}

	return newRecord("06").
		numeric(d.Reference, 48).
		alpha(d.SecondaryReference, 30).
		numeric(periods, 2).
		alpha(d.Cycle, 3).
		amount(d.Amount, 14, 2).
		zeros(13). // additional service code
		amount(d.AdditionalAmount, 14, 2).
		add(Date8(d.DueDate)).
		zeros(8).  // payer bank
		blank(17). // payer account
		zeros(2).  // account type
		alpha(d.PayerID, 10).
		alpha(d.PayerName, 22).
		zeros(3). // originator
		amount(d.DailyIncrement, 10, 4).
		add(Date8(d.CutoffDate)).
		numeric(strconv.Itoa(d.IncrementType), 1).
		blank(5).
		line("billing detail", BillingLineLength)
}

func billingBatchControl(batch BillingBatch, index int) (string, error) {
	principal, additional := billingTotals(batch.Details)

	return newRecord("08").
		numeric(strconv.Itoa(len(batch.Details)+2), 9).
		amount(principal, 18, 2).
		amount(additional, 18, 2).
		numeric(strconv.Itoa(index+1), 4).
		blank(169).
		line("billing batch control", BillingLineLength)
}

func billingFileControl(file BillingFile) (string, error) {
	var details []BillingDetail
	for _, batch := range file.Batches {
		details = append(details, batch.Details...)
	}
	principal, additional := billingTotals(details)

	return newRecord("09").
		numeric(strconv.Itoa(len(details)), 9).
		amount(principal, 18, 2).
		amount(additional, 18, 2).
		blank(173).
		line("billing file control", BillingLineLength)
}

func billingTotals(details []BillingDetail) (principal, additional decimal.Decimal) {
	for _, d := range details {
		principal = principal.Add(d.Amount)
		additional = additional.Add(d.AdditionalAmount)
	}
	return principal, additional
}
