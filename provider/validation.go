package provider

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DefaultMinExpirationMinutes is the minimum lead time of an expiration
const DefaultMinExpirationMinutes = 5

// Extra field limits
const (
	MaxFields       = 50
	MaxKeywordChars = 50
	MaxValueChars   = 255
)

var (
	localePattern   = regexp.MustCompile(`^\w{2}_[A-Z]{2}$`)
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	displayOnValues = []string{"none", "payment", "receipt", "both", "approved"}
)

// InitiatorIndicators are the accepted metadata.initiatorIndicator values
var InitiatorIndicators = []string{
	"AGENT",
	"CARDHOLDER_COF",
	"CARDHOLDER_RECURRING_VARIABLE_AMOUNT",
	"CARDHOLDER_RECURRING_FIXED_AMOUNT",
	"CARDHOLDER_WITH_INSTALLMENTS",
	"MERCHANT_COF",
	"MERCHANT_RECURRING_VARIABLE_AMOUNT",
	"MERCHANT_RECURRING_FIXED_AMOUNT",
	"MERCHANT_WITH_INSTALLMENTS",
}

// EBTDeliveryIndicators are the accepted metadata.EBTDeliveryIndicator values
var EBTDeliveryIndicators = []string{
	"DIRECT_DELIVERY",
	"CUSTOMER_PICKUP",
	"COMMERCIAL_SHIPPING",
	"OTHER",
	"NOT_AVAILABLE",
}

var (
	structValidator *validator.Validate
	validatorOnce   sync.Once
)

// Validator returns the shared struct validator; field names are reported by their JSON name
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		structValidator = validator.New()
		structValidator.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.Split(field.Tag.Get("json"), ",")[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return structValidator
}

// ValidateRequired checks the `validate` tags of a request struct
func ValidateRequired(request any) error {
	err := Validator().Struct(request)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required":
		return &ValidationError{Message: fmt.Sprintf("%s is required", field), Details: fieldErrs}
	default:
		return &ValidationError{Message: fmt.Sprintf("%s failed %s validation", field, fe.Tag()), Details: fieldErrs}
	}
}

// ValidateLocale checks the xx_YY locale pattern; empty is allowed
func ValidateLocale(locale string) error {
	if locale == "" {
		return nil
	}
	if !localePattern.MatchString(locale) {
		return NewValidationError("locale must match pattern xx_YY (example: es_CO, en_US)")
	}
	return nil
}

// ParseDateTime parses the date-time formats accepted for expirations
func ParseDateTime(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", value)
}

// ValidateFutureExpiration rejects expirations earlier than now + minMinutes.
// Empty is allowed; minMinutes <= 0 means DefaultMinExpirationMinutes.
func ValidateFutureExpiration(expiration string, tp TimeProvider, minMinutes int) error {
	if expiration == "" {
		return nil
	}
	if minMinutes <= 0 {
		minMinutes = DefaultMinExpirationMinutes
	}
	if tp == nil {
		tp = SystemTimeProvider{}
	}

	parsed, err := ParseDateTime(expiration)
	if err != nil {
		return NewValidationError("expiration must be a valid date-time string")
	}

	minAllowed := tp.Now().Add(time.Duration(minMinutes) * time.Minute)
	if parsed.Before(minAllowed) {
		return NewValidationError("expiration must be at least %d minutes in the future", minMinutes)
	}
	return nil
}

// ValidateFieldLimits checks count, keyword, value and displayOn of extra fields
func ValidateFieldLimits(fields []NameValuePair, context string) error {
	if len(fields) > MaxFields {
		return NewValidationError("%s.fields exceeds %d entries", context, MaxFields)
	}

	for _, f := range fields {
		if f.Keyword == "" || utf8.RuneCountInString(f.Keyword) > MaxKeywordChars {
			return NewValidationError("%s.fields keyword is required and max %d chars", context, MaxKeywordChars)
		}
		if s, ok := f.Value.(string); ok && utf8.RuneCountInString(s) > MaxValueChars {
			return NewValidationError("%s.fields value exceeds %d characters", context, MaxValueChars)
		}
		if f.DisplayOn != "" && !slices.Contains(displayOnValues, f.DisplayOn) {
			return NewValidationError("%s.fields displayOn must be one of %s", context, strings.Join(displayOnValues, "|"))
		}
	}
	return nil
}

// ValidateAttemptsLimit requires a positive limit when one is set
func ValidateAttemptsLimit(attemptsLimit *int) error {
	if attemptsLimit != nil && *attemptsLimit <= 0 {
		return NewValidationError("attemptsLimit must be greater than 0")
	}
	return nil
}

// ValidateMetadata checks the enumerated and formatted metadata keys
func ValidateMetadata(metadata map[string]any) error {
	if len(metadata) == 0 {
		return nil
	}

	if v := metadataString(metadata["initiatorIndicator"]); v != "" && !slices.Contains(InitiatorIndicators, v) {
		return NewValidationError("metadata.initiatorIndicator must be one of %s", strings.Join(InitiatorIndicators, ", "))
	}
	if v := metadataString(metadata["EBTDeliveryIndicator"]); v != "" && !slices.Contains(EBTDeliveryIndicators, v) {
		return NewValidationError("metadata.EBTDeliveryIndicator must be one of %s", strings.Join(EBTDeliveryIndicators, ", "))
	}
	if v := metadataString(metadata["openingDate"]); v != "" && !isoDatePattern.MatchString(v) {
		return NewValidationError("metadata.openingDate must be YYYY-MM-DD")
	}
	return nil
}

func metadataString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
	}
	return fmt.Sprint(v)
}

// ValidateURL requires an absolute URL
func ValidateURL(value, fieldName string) error {
	if fieldName == "" {
		fieldName = "url"
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return NewValidationError("%s must be a valid URL", fieldName)
	}
	return nil
}

// BuildReturnURL resolves path against base and sets params as query values
func BuildReturnURL(base, path string, params map[string]string) (string, error) {
	if base == "" {
		return "", NewValidationError("returnUrl base is required")
	}
	if path == "" {
		return "", NewValidationError("returnUrl path is required")
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" {
		return "", NewValidationError("returnUrl base must be a valid URL")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", NewValidationError("returnUrl path is invalid")
	}

	resolved := baseURL.ResolveReference(ref)
	if len(params) > 0 {
		q := resolved.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, params[k])
		}
		resolved.RawQuery = q.Encode()
	}
	return resolved.String(), nil
}
