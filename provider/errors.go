package provider

import (
	"fmt"
)

// Error codes carried by Error.
const (
	CodeNetworkError       = "NETWORK_ERROR"
	CodeHTTPError          = "HTTP_ERROR"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodeStatusError        = "STATUS_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeMissingStatus      = "MISSING_STATUS"
	CodeTimeoutFinalStatus = "TIMEOUT_FINAL_STATUS"
)

// Error is a generic PlacetoPay SDK error with a machine readable code
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a coded SDK error
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// MissingStatusError is returned when a gateway response has no status block
func MissingStatusError(operation string) *Error {
	return NewError(CodeMissingStatus, fmt.Sprintf("missing status in %s response", operation))
}

// ValidationError is raised locally before any network call
type ValidationError struct {
	Message string
	Details any
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NetworkError wraps a transport level failure (DNS, connection, timeout)
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling PlacetoPay: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the gateway
type HTTPError struct {
	Message      string
	HTTPStatus   int
	ResponseBody any
}

func (e *HTTPError) Error() string {
	return e.Message
}

// InvalidResponseError is returned when the response body is not valid JSON
type InvalidResponseError struct {
	HTTPStatus int
	RawBody    string
	Err        error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from PlacetoPay (HTTP %d): body is not JSON", e.HTTPStatus)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// StatusError is a business level rejection signalled through the status block
type StatusError struct {
	Message      string
	Status       Status
	ResponseBody any
}

func (e *StatusError) Error() string {
	return e.Message
}
