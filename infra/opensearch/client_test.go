package opensearch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mstgnz/placetopay/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeCluster answers the handful of OpenSearch endpoints the client uses
type fakeCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	indices  map[string]bool
	search   string
	failDocs bool
}

func newFakeCluster(t *testing.T) (*fakeCluster, *httptest.Server) {
	t.Helper()
	fc := &fakeCluster{indices: map[string]bool{}, search: `{"hits":{"hits":[]}}`}
	srv := httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(srv.Close)
	return fc, srv
}

func (fc *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.requests = append(fc.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})

	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"2.11.0","distribution":"opensearch"}}`))
	case r.Method == http.MethodHead && len(parts) == 1:
		if fc.indices[parts[0]] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && len(parts) == 1:
		fc.indices[parts[0]] = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case len(parts) == 2 && parts[1] == "_doc":
		if fc.failDocs {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case len(parts) == 2 && parts[1] == "_search":
		_, _ = w.Write([]byte(fc.search))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fc *fakeCluster) find(method, path string) []recordedRequest {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	var out []recordedRequest
	for _, r := range fc.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (fc *fakeCluster) lastBody(t *testing.T, method, path string) map[string]any {
	t.Helper()
	reqs := fc.find(method, path)
	require.NotEmpty(t, reqs, "%s %s was not called", method, path)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[len(reqs)-1].Body), &body))
	return body
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.AppConfig
		enabled bool
	}{
		{
			name:    "no_auth",
			cfg:     &config.AppConfig{OpenSearchURL: "http://localhost:9200", EnableLogging: true},
			enabled: true,
		},
		{
			name:    "with_auth",
			cfg:     &config.AppConfig{OpenSearchURL: "http://localhost:9200", EnableLogging: true, OpenSearchUser: "admin", OpenSearchPass: "admin"},
			enabled: true,
		},
		{
			name:    "logging_disabled",
			cfg:     &config.AppConfig{OpenSearchURL: "http://localhost:9200"},
			enabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.enabled {
				_, srv := newFakeCluster(t)
				tt.cfg.OpenSearchURL = srv.URL
			}

			client, err := NewClient(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.GetClient())
			assert.Equal(t, tt.enabled, client.IsEnabled())
		})
	}
}

func TestNewClient_CreatesMissingIndices(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.indices[SystemIndex] = true

	_, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: true})
	require.NoError(t, err)

	assert.Len(t, fc.find(http.MethodPut, "/"+ExchangeIndex), 1)
	assert.Empty(t, fc.find(http.MethodPut, "/"+SystemIndex), "existing index is left alone")

	mapping := fc.lastBody(t, http.MethodPut, "/"+ExchangeIndex)
	props := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Contains(t, props, "request_id")
	assert.Contains(t, props, "internal_reference")
}

func TestNewClient_DisabledSkipsSetup(t *testing.T) {
	fc, srv := newFakeCluster(t)

	_, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL})
	require.NoError(t, err)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Empty(t, fc.requests)
}

func TestNewClient_SetupFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: true})
	require.NoError(t, err)
	assert.True(t, client.IsEnabled())
}
