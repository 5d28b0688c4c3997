package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/placetopay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusOK, "Session created", map[string]string{"requestId": "4521"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Session created", resp.Message)
	assert.Equal(t, map[string]any{"requestId": "4521"}, resp.Data)
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "Invalid request format", errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "unexpected EOF", resp.Error)

	w = httptest.NewRecorder()
	Error(w, http.StatusNotFound, "Not found", nil)
	assert.Empty(t, decode(t, w).Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "validation", err: provider.NewValidationError("payment is required"), expected: http.StatusBadRequest},
		{name: "wrapped_validation", err: fmt.Errorf("create: %w", provider.NewValidationError("x")), expected: http.StatusBadRequest},
		{name: "status", err: &provider.StatusError{Message: "session not created"}, expected: http.StatusUnprocessableEntity},
		{name: "http_not_found", err: &provider.HTTPError{HTTPStatus: 404}, expected: http.StatusNotFound},
		{name: "http_server_error", err: &provider.HTTPError{HTTPStatus: 500}, expected: http.StatusBadGateway},
		{name: "network", err: &provider.NetworkError{Err: errors.New("refused")}, expected: http.StatusBadGateway},
		{name: "invalid_response", err: &provider.InvalidResponseError{HTTPStatus: 200}, expected: http.StatusBadGateway},
		{name: "timeout_final_status", err: provider.NewError(provider.CodeTimeoutFinalStatus, "still pending"), expected: http.StatusGatewayTimeout},
		{name: "missing_status", err: provider.MissingStatusError("create"), expected: http.StatusBadGateway},
		{name: "coded_validation", err: provider.NewError(provider.CodeValidationError, "bad"), expected: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestGatewayError(t *testing.T) {
	w := httptest.NewRecorder()

	GatewayError(w, "Failed to create session", provider.NewValidationError("payment.reference is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "payment.reference is required", decode(t, w).Error)
}

func BenchmarkSuccessResponse(b *testing.B) {
	data := map[string]string{"test": "data"}

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		Success(w, http.StatusOK, "Benchmark test", data)
	}
}
