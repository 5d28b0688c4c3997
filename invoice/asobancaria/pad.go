package asobancaria

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow is returned when a value does not fit its fixed-width field
	ErrOverflow = errors.New("value exceeds field width")
	// ErrInvalidValue is returned for values a field cannot encode
	ErrInvalidValue = errors.New("invalid field value")
)

var (
	digitsPattern   = regexp.MustCompile(`^\d*$`)
	date8Pattern    = regexp.MustCompile(`^\d{8}$`)
	time4Pattern    = regexp.MustCompile(`^\d{4}$`)
	modifierPattern = regexp.MustCompile(`^[A-Z0-9]$`)
)

// PadNumeric left-pads a digit string with zeros to exactly width characters
func PadNumeric(value string, width int) (string, error) {
	if !digitsPattern.MatchString(value) {
		return "", fmt.Errorf("%w: numeric field contains non-digits: %q", ErrInvalidValue, value)
	}
	if len(value) > width {
		return "", fmt.Errorf("%w: numeric %q longer than %d", ErrOverflow, value, width)
	}
	return strings.Repeat("0", width-len(value)) + value, nil
}

// PadAlpha right-pads value with spaces to exactly width bytes.
// Only printable ASCII is accepted.
func PadAlpha(value string, width int) (string, error) {
	for i := 0; i < len(value); i++ {
		if value[i] >= utf8.RuneSelf || value[i] < ' ' {
			return "", fmt.Errorf("%w: alpha field must be printable ASCII: %q", ErrInvalidValue, value)
		}
	}
	if len(value) > width {
		return "", fmt.Errorf("%w: alpha %q longer than %d", ErrOverflow, value, width)
	}
	return value + strings.Repeat(" ", width-len(value)), nil
}

// FormatAmount scales value by 10^decimals, rounds half away from zero and
// zero-pads the integer to width digits
func FormatAmount(value decimal.Decimal, width, decimals int) (string, error) {
	if value.IsNegative() {
		return "", fmt.Errorf("%w: negative amount %s", ErrInvalidValue, value)
	}
	scaled := value.Shift(int32(decimals)).Round(0)
	return PadNumeric(scaled.StringFixed(0), width)
}

// Date8 checks an AAAAMMDD date
func Date8(value string) (string, error) {
	if !date8Pattern.MatchString(value) {
		return "", fmt.Errorf("%w: date must be AAAAMMDD: %q", ErrInvalidValue, value)
	}
	return value, nil
}

// Time4 checks an HHMM time
func Time4(value string) (string, error) {
	if !time4Pattern.MatchString(value) {
		return "", fmt.Errorf("%w: time must be HHMM: %q", ErrInvalidValue, value)
	}
	return value, nil
}

// record accumulates the fields of one fixed-width line. The first error
// sticks and later fields are skipped.
type record struct {
	b   strings.Builder
	err error
}

func newRecord(tag string) *record {
	r := &record{}
	r.b.WriteString(tag)
	return r
}

func (r *record) add(value string, err error) *record {
	if r.err != nil {
		return r
	}
	if err != nil {
		r.err = err
		return r
	}
	r.b.WriteString(value)
	return r
}

func (r *record) numeric(value string, width int) *record {
	return r.add(PadNumeric(value, width))
}

func (r *record) alpha(value string, width int) *record {
	return r.add(PadAlpha(value, width))
}

func (r *record) amount(value decimal.Decimal, width, decimals int) *record {
	return r.add(FormatAmount(value, width, decimals))
}

func (r *record) blank(width int) *record {
	r.b.WriteString(strings.Repeat(" ", width))
	return r
}

func (r *record) zeros(width int) *record {
	r.b.WriteString(strings.Repeat("0", width))
	return r
}

// line returns the encoded record after checking its total length
func (r *record) line(name string, length int) (string, error) {
	if r.err != nil {
		return "", fmt.Errorf("%s: %w", name, r.err)
	}
	s := r.b.String()
	if len(s) != length {
		return "", fmt.Errorf("%s: line length %d, expected %d", name, len(s), length)
	}
	return s, nil
}

func modifier(value, fallback string) (string, error) {
	if value == "" {
		value = fallback
	}
	if !modifierPattern.MatchString(value) {
		return "", fmt.Errorf("%w: modifier must be one of A-Z or 0-9: %q", ErrInvalidValue, value)
	}
	return value, nil
}
