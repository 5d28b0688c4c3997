package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Success bool         `json:"success"`
	Data    HealthStatus `json:"data"`
}

func TestHealthHandler_CheckHealth(t *testing.T) {
	tests := []struct {
		name           string
		sinks          map[string]bool
		expectedStatus int
		expected       string
	}{
		{
			name:           "all_sinks",
			sinks:          map[string]bool{"checkout": true, "opensearch": true, "nats": true},
			expectedStatus: http.StatusOK,
			expected:       "healthy",
		},
		{
			name:           "optional_sinks_missing",
			sinks:          map[string]bool{"checkout": true, "opensearch": false, "nats": false},
			expectedStatus: http.StatusOK,
			expected:       "healthy",
		},
		{
			name:           "checkout_missing",
			sinks:          map[string]bool{"checkout": false},
			expectedStatus: http.StatusServiceUnavailable,
			expected:       "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.sinks).CheckHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body healthBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expected, body.Data.Status)
			assert.Equal(t, tt.expected != "unhealthy", body.Success)
			assert.Len(t, body.Data.Services, len(tt.sinks))
			for name, configured := range tt.sinks {
				require.Contains(t, body.Data.Services, name)
				assert.Equal(t, configured, body.Data.Services[name].Configured)
			}
			require.NotNil(t, body.Data.System)
			assert.Positive(t, body.Data.System.GoRoutines)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("ENV", "")
	assert.Equal(t, "development", getEnvironment())

	t.Setenv("ENV", "staging")
	assert.Equal(t, "staging", getEnvironment())

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "production", getEnvironment())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    uint64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatBytes(tt.bytes))
		})
	}
}
