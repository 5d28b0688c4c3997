package middle

import (
	"net/http"
	"slices"
	"strings"

	"github.com/mstgnz/placetopay/infra/response"
)

// maxBodyBytes bounds notification and session request bodies
const maxBodyBytes = 1 << 20

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			w.Header().Set("Referrer-Policy", "no-referrer")

			next.ServeHTTP(w, r)
		})
	}
}

// IPWhitelistMiddleware restricts access to the given IPs. An empty list allows everyone.
func IPWhitelistMiddleware(allowed []string) func(http.Handler) http.Handler {
	ips := make([]string, 0, len(allowed))
	for _, ip := range allowed {
		if ip = strings.TrimSpace(ip); ip != "" {
			ips = append(ips, ip)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(ips) > 0 && !slices.Contains(ips, GetClientIP(r)) {
				response.Error(w, http.StatusForbidden, "IP not whitelisted", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestValidationMiddleware rejects bodies that are not JSON or too large.
// Webhook paths also accept form-urlencoded bodies.
func RequestValidationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				contentType := r.Header.Get("Content-Type")
				isWebhook := strings.HasPrefix(r.URL.Path, "/webhooks")

				switch {
				case contentType == "" && !isWebhook:
					response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
					return
				case contentType == "":
				case strings.Contains(contentType, "application/json"):
				case isWebhook && strings.Contains(contentType, "application/x-www-form-urlencoded"):
				case isWebhook:
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or application/x-www-form-urlencoded", nil)
					return
				default:
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
					return
				}
			}

			if r.ContentLength > maxBodyBytes {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
