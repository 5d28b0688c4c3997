package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/placetopay/infra/opensearch"
	"github.com/mstgnz/placetopay/infra/response"
)

const (
	defaultLogHours = 24
	maxLogHours     = 168
)

// ExchangeStore searches the gateway exchanges recorded in OpenSearch
type ExchangeStore interface {
	SearchExchanges(ctx context.Context, query map[string]any) ([]opensearch.ExchangeLog, error)
	GetSessionExchanges(ctx context.Context, requestID string) ([]opensearch.ExchangeLog, error)
	GetRecentErrors(ctx context.Context, hours int) ([]opensearch.ExchangeLog, error)
	GetStats(ctx context.Context, hours int) (map[string]any, error)
}

// LogsHandler exposes the recorded gateway exchanges
type LogsHandler struct {
	store ExchangeStore
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(store ExchangeStore) *LogsHandler {
	return &LogsHandler{store: store}
}

// ListExchanges lists exchanges filtered by requestId, reference, status, path and errorsOnly
func (h *LogsHandler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	q := r.URL.Query()
	hours := parseHours(q.Get("hours"))
	errorsOnly := q.Get("errorsOnly") == "true"

	must := []map[string]any{
		{"range": map[string]any{"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", hours)}}},
	}
	filters := map[string]any{"hours": hours, "errorsOnly": errorsOnly}
	for param, field := range map[string]string{
		"requestId": "request_id",
		"reference": "reference",
		"status":    "status",
		"path":      "path",
	} {
		if v := q.Get(param); v != "" {
			must = append(must, map[string]any{"term": map[string]any{field: v}})
			filters[param] = v
		}
	}
	if errorsOnly {
		must = append(must, map[string]any{"exists": map[string]any{"field": "error.code"}})
	}

	logs, err := h.store.SearchExchanges(ctx, map[string]any{"bool": map[string]any{"must": must}})
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to search exchanges", err)
		return
	}

	response.Success(w, http.StatusOK, "Exchanges retrieved successfully", map[string]any{
		"filters": filters,
		"count":   len(logs),
		"logs":    logs,
	})
}

// GetSessionExchanges retrieves the exchanges of one checkout session
func (h *LogsHandler) GetSessionExchanges(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		response.Error(w, http.StatusBadRequest, "requestId parameter is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logs, err := h.store.GetSessionExchanges(ctx, requestID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve exchanges", err)
		return
	}

	response.Success(w, http.StatusOK, "Exchanges retrieved successfully", map[string]any{
		"requestId": requestID,
		"count":     len(logs),
		"logs":      logs,
	})
}

// GetErrorExchanges retrieves failed exchanges of the last hours
func (h *LogsHandler) GetErrorExchanges(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	hours := parseHours(r.URL.Query().Get("hours"))
	logs, err := h.store.GetRecentErrors(ctx, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get error exchanges", err)
		return
	}

	response.Success(w, http.StatusOK, "Error exchanges retrieved successfully", map[string]any{
		"hours": hours,
		"count": len(logs),
		"logs":  logs,
	})
}

// GetExchangeStats aggregates exchange counts and latency
func (h *LogsHandler) GetExchangeStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	hours := parseHours(r.URL.Query().Get("hours"))
	stats, err := h.store.GetStats(ctx, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve exchange statistics", err)
		return
	}

	response.Success(w, http.StatusOK, "Exchange statistics retrieved successfully", map[string]any{
		"hours": hours,
		"stats": stats,
	})
}

// parseHours defaults to 24 and caps at 7 days
func parseHours(value string) int {
	if h, err := strconv.Atoi(value); err == nil && h > 0 && h <= maxLogHours {
		return h
	}
	return defaultLogHours
}
