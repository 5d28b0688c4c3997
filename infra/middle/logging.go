package middle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/placetopay/infra/logger"
)

// RequestLoggingMiddleware logs one line per request with its status and duration
func RequestLoggingMiddleware(log *logger.SystemLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			ctx := logger.LogContext{
				Fields: map[string]any{
					"http_request_id": middleware.GetReqID(r.Context()),
					"method":          r.Method,
					"path":            r.URL.Path,
					"status":          status,
					"bytes":           ww.BytesWritten(),
					"duration_ms":     time.Since(start).Milliseconds(),
					"client_ip":       GetClientIP(r),
				},
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("request failed", nil, ctx)
			case status >= http.StatusBadRequest:
				log.Warn("request rejected", ctx)
			default:
				log.Info("request served", ctx)
			}
		})
	}
}
