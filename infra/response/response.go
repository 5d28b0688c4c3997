package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mstgnz/placetopay/provider"
)

// Response is a standardized API response structure
type Response struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a successful response with data
func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	resp := Response{
		Code:    statusCode,
		Success: true,
		Message: message,
		Data:    data,
	}
	_ = WriteJSON(w, statusCode, resp)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := Response{
		Code:    statusCode,
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	_ = WriteJSON(w, statusCode, resp)
}

// GatewayError writes an SDK error with the HTTP status matching its kind
func GatewayError(w http.ResponseWriter, message string, err error) {
	Error(w, StatusFor(err), message, err)
}

// StatusFor maps an SDK error to the HTTP status a relay should answer with
func StatusFor(err error) int {
	var (
		validationErr *provider.ValidationError
		statusErr     *provider.StatusError
		httpErr       *provider.HTTPError
		netErr        *provider.NetworkError
		invalidErr    *provider.InvalidResponseError
		sdkErr        *provider.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &statusErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr):
		if httpErr.HTTPStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &netErr), errors.As(err, &invalidErr):
		return http.StatusBadGateway
	case errors.As(err, &sdkErr):
		switch sdkErr.Code {
		case provider.CodeValidationError:
			return http.StatusBadRequest
		case provider.CodeTimeoutFinalStatus:
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WriteJSON writes data as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
