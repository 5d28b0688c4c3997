package asobancaria

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CollectionLineLength is the width of every collection record
const CollectionLineLength = 162

// defaultSequence is the sequence PlacetoPay reports when none is given
const defaultSequence = 2

// CollectionHeader is the file header (record 01) of a collection file
type CollectionHeader struct {
	BillerNIT      string `json:"billerNit" yaml:"biller_nit"`
	CollectionDate string `json:"collectionDate" yaml:"collection_date"`
	CollectorCode  string `json:"collectorCode" yaml:"collector_code"`
	AccountNumber  string `json:"accountNumber" yaml:"account_number"`
	FileDate       string `json:"fileDate" yaml:"file_date"`
	FileTime       string `json:"fileTime" yaml:"file_time"`
	Modifier       string `json:"modifier" yaml:"modifier"`
	AccountType    string `json:"accountType,omitempty" yaml:"account_type"`
}

// CollectionBatchHeader is the batch header (record 05) of a collection file
type CollectionBatchHeader struct {
	ServiceCode string `json:"serviceCode" yaml:"service_code"`
	BatchNumber int    `json:"batchNumber" yaml:"batch_number"`
}

// CollectionDetail is one collected payment (record 06)
type CollectionDetail struct {
	Reference           string          `json:"reference" yaml:"reference"`
	Amount              decimal.Decimal `json:"amount" yaml:"amount"`
	PaymentOrigin       string          `json:"paymentOrigin" yaml:"payment_origin"`
	PaymentMethod       string          `json:"paymentMethod" yaml:"payment_method"`
	OperationNumber     string          `json:"operationNumber,omitempty" yaml:"operation_number"`
	AuthorizationNumber string          `json:"authorizationNumber,omitempty" yaml:"authorization_number"`
	Sequence            *int            `json:"sequence,omitempty" yaml:"sequence"`
	ReturnCause         string          `json:"returnCause,omitempty" yaml:"return_cause"`
}

// CollectionBatch groups the payments collected for one service
type CollectionBatch struct {
	Header  CollectionBatchHeader `json:"header" yaml:"header"`
	Details []CollectionDetail    `json:"details" yaml:"details"`
}

// CollectionFile is a complete collection (recaudo) file
type CollectionFile struct {
	Header  CollectionHeader  `json:"header" yaml:"header"`
	Batches []CollectionBatch `json:"batches" yaml:"batches"`
}

// BuildCollectionFile encodes a collection file as newline separated 162 character records
func BuildCollectionFile(file CollectionFile) (string, error) {
	lines := make([]string, 0, 2+len(file.Batches)*2)

	header, err := collectionHeader(file.Header)
	if err != nil {
		return "", err
	}
	lines = append(lines, header)

	for i, batch := range file.Batches {
		line, err := collectionBatchHeader(batch.Header)
		if err != nil {
			return "", fmt.Errorf("batch %d: %w", i+1, err)
		}
		lines = append(lines, line)

		for j, detail := range batch.Details {
			line, err := collectionDetail(detail)
			if err != nil {
				return "", fmt.Errorf("batch %d detail %d: %w", i+1, j+1, err)
			}
			lines = append(lines, line)
		}

		line, err = collectionBatchControl(batch, i)
		if err != nil {
			return "", fmt.Errorf("batch %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}

	control, err := collectionFileControl(file)
	if err != nil {
		return "", err
	}
	lines = append(lines, control)

	return strings.Join(lines, "\n"), nil
}

func collectionHeader(h CollectionHeader) (string, error) {
	return newRecord("01").
		numeric(h.BillerNIT, 10).
		add(Date8(h.CollectionDate)).
		numeric(h.CollectorCode, 3).
		alpha(h.AccountNumber, 17).
		add(Date8(h.FileDate)).
		add(Time4(h.FileTime)).
		add(modifier(h.Modifier, "A")).
		numeric(h.AccountType, 2).
		blank(107).
		line("collection header", CollectionLineLength)
}

func collectionBatchHeader(h CollectionBatchHeader) (string, error) {
	return newRecord("05").
		numeric(h.ServiceCode, 13).
		numeric(strconv.Itoa(h.BatchNumber), 4).
		blank(143).
		line("collection batch header", CollectionLineLength)
}

func collectionDetail(d CollectionDetail) (string, error) {
	sequence := defaultSequence
	if d.Sequence != nil {
		sequence = *d.Sequence
	}

	return newRecord("06").
		numeric(d.Reference, 48).
		amount(d.Amount, 14, 2).
		numeric(d.PaymentOrigin, 2).
		numeric(d.PaymentMethod, 2).
		numeric(d.OperationNumber, 6).
		numeric(d.AuthorizationNumber, 6).
		zeros(3). // debited bank
		zeros(4). // branch
		numeric(strconv.Itoa(sequence), 7).
		alpha(d.ReturnCause, 3).
		blank(65).
		line("collection detail", CollectionLineLength)
}

func collectionBatchControl(batch CollectionBatch, index int) (string, error) {
	return newRecord("08").
		numeric(strconv.Itoa(len(batch.Details)+2), 9).
		amount(collectionTotal(batch.Details), 18, 2).
		numeric(strconv.Itoa(index+1), 4).
		blank(129).
		line("collection batch control", CollectionLineLength)
}

func collectionFileControl(file CollectionFile) (string, error) {
	var details []CollectionDetail
	for _, batch := range file.Batches {
		details = append(details, batch.Details...)
	}

	return newRecord("09").
		numeric(strconv.Itoa(len(details)), 9).
		amount(collectionTotal(details), 18, 2).
		blank(133).
		line("collection file control", CollectionLineLength)
}

func collectionTotal(details []CollectionDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Amount)
	}
	return total
}
