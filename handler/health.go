package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/placetopay/infra/config"
	"github.com/mstgnz/placetopay/infra/response"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	sinks     map[string]bool
	version   string
	startTime time.Time
}

// HealthStatus represents overall service health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Services    map[string]*ServiceHealth `json:"services"`
	System      *SystemHealth             `json:"system"`
}

// ServiceHealth represents one downstream sink
type ServiceHealth struct {
	Status      string `json:"status"`
	Configured  bool   `json:"configured"`
	LastCheck   string `json:"last_check"`
	Description string `json:"description,omitempty"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	GoRoutines int           `json:"goroutines"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc      string `json:"alloc"`
	TotalAlloc string `json:"total_alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
}

var sinkDescriptions = map[string]string{
	"checkout":   "PlacetoPay checkout client",
	"opensearch": "Exchange and system logs in OpenSearch",
	"nats":       "Notification publishing to NATS JetStream",
}

// NewHealthHandler creates a health handler reporting which sinks are configured
func NewHealthHandler(sinks map[string]bool) *HealthHandler {
	return &HealthHandler{
		sinks:     sinks,
		version:   "1.0.0",
		startTime: time.Now(),
	}
}

// CheckHealth reports liveness and the configured sinks. The relay is
// unhealthy only when the checkout client is missing.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	health := &HealthStatus{
		Status:      "healthy",
		Version:     h.version,
		Timestamp:   now,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: getEnvironment(),
		Services:    make(map[string]*ServiceHealth, len(h.sinks)),
		System:      checkSystemHealth(),
	}

	for name, configured := range h.sinks {
		status := "healthy"
		if !configured {
			status = "not_configured"
		}
		health.Services[name] = &ServiceHealth{
			Status:      status,
			Configured:  configured,
			LastCheck:   now.Format(time.RFC3339),
			Description: sinkDescriptions[name],
		}
	}

	statusCode := http.StatusOK
	if checkout, ok := health.Services["checkout"]; ok && !checkout.Configured {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:      formatBytes(memStats.Alloc),
			TotalAlloc: formatBytes(memStats.TotalAlloc),
			Sys:        formatBytes(memStats.Sys),
			GCRuns:     memStats.NumGC,
		},
		GoRoutines: runtime.NumGoroutine(),
	}
}

func getEnvironment() string {
	if env := config.GetEnv("ENVIRONMENT", ""); env != "" {
		return env
	}
	if env := config.GetEnv("ENV", ""); env != "" {
		return env
	}
	return "development"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
