package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/placetopay/infra/opensearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExchangeStore struct {
	query     map[string]any
	requestID string
	hours     int
	err       error
}

func (m *mockExchangeStore) SearchExchanges(_ context.Context, query map[string]any) ([]opensearch.ExchangeLog, error) {
	m.query = query
	return []opensearch.ExchangeLog{{Path: "/api/session"}}, m.err
}

func (m *mockExchangeStore) GetSessionExchanges(_ context.Context, requestID string) ([]opensearch.ExchangeLog, error) {
	m.requestID = requestID
	return []opensearch.ExchangeLog{{RequestID: requestID}, {RequestID: requestID}}, m.err
}

func (m *mockExchangeStore) GetRecentErrors(_ context.Context, hours int) ([]opensearch.ExchangeLog, error) {
	m.hours = hours
	return nil, m.err
}

func (m *mockExchangeStore) GetStats(_ context.Context, hours int) (map[string]any, error) {
	m.hours = hours
	return map[string]any{"aggregations": map[string]any{}}, m.err
}

func logsRouter(h *LogsHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/exchanges", h.ListExchanges)
	r.Get("/exchanges/errors", h.GetErrorExchanges)
	r.Get("/exchanges/stats", h.GetExchangeStats)
	r.Get("/sessions/{requestId}/exchanges", h.GetSessionExchanges)
	return r
}

func getJSON(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestLogsHandler_ListExchanges(t *testing.T) {
	store := &mockExchangeStore{}
	w, body := getJSON(t, logsRouter(NewLogsHandler(store)), "/exchanges?requestId=4521&status=APPROVED&errorsOnly=true&hours=6")

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])

	must := store.query["bool"].(map[string]any)["must"].([]map[string]any)
	require.Len(t, must, 4)
	assert.Equal(t, map[string]any{"range": map[string]any{"timestamp": map[string]any{"gte": "now-6h"}}}, must[0])
	assert.Contains(t, must, map[string]any{"term": map[string]any{"request_id": "4521"}})
	assert.Contains(t, must, map[string]any{"term": map[string]any{"status": "APPROVED"}})
	assert.Contains(t, must, map[string]any{"exists": map[string]any{"field": "error.code"}})
}

func TestLogsHandler_SessionExchanges(t *testing.T) {
	store := &mockExchangeStore{}
	w, body := getJSON(t, logsRouter(NewLogsHandler(store)), "/sessions/4521/exchanges")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4521", store.requestID)
	assert.Equal(t, float64(2), body["data"].(map[string]any)["count"])
}

func TestLogsHandler_Hours(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected int
	}{
		{name: "errors_default", target: "/exchanges/errors", expected: 24},
		{name: "errors_explicit", target: "/exchanges/errors?hours=48", expected: 48},
		{name: "stats_over_cap", target: "/exchanges/stats?hours=1000", expected: 24},
		{name: "stats_invalid", target: "/exchanges/stats?hours=abc", expected: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockExchangeStore{}
			w, _ := getJSON(t, logsRouter(NewLogsHandler(store)), tt.target)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expected, store.hours)
		})
	}
}

func TestLogsHandler_Errors(t *testing.T) {
	failing := logsRouter(NewLogsHandler(&mockExchangeStore{err: errors.New("opensearch search error")}))
	for _, target := range []string{"/exchanges", "/exchanges/errors", "/exchanges/stats", "/sessions/1/exchanges"} {
		w, body := getJSON(t, failing, target)
		assert.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.Equal(t, false, body["success"])
	}

	w, _ := getJSON(t, logsRouter(NewLogsHandler(nil)), "/exchanges/stats")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
