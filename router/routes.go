package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mstgnz/placetopay/handler"
	"github.com/mstgnz/placetopay/infra/logger"
	"github.com/mstgnz/placetopay/infra/middle"
	"github.com/mstgnz/placetopay/infra/response"
	v1 "github.com/mstgnz/placetopay/router/v1"
)

// Handlers are the endpoints the relay serves
type Handlers struct {
	Webhook  *handler.WebhookHandler
	Sessions *handler.SessionHandler
	Health   *handler.HealthHandler
	Logs     *handler.LogsHandler
}

// Options configures the middleware stack
type Options struct {
	// APIKey guards /v1; the routes answer 500 when it is empty
	APIKey      string
	WebhookIPs  []string
	RateLimiter *middle.RateLimiter
	CORSOrigins []string
	Logger      *logger.SystemLogger
}

// New builds the relay router
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Logger != nil {
		r.Use(middle.RequestLoggingMiddleware(opts.Logger))
	}
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	if h.Health != nil {
		r.Get("/health", h.Health.CheckHealth)
	}

	if h.Webhook != nil {
		r.Route("/webhooks", func(r chi.Router) {
			r.Use(middle.IPWhitelistMiddleware(opts.WebhookIPs))
			if opts.RateLimiter != nil {
				r.Use(middle.RateLimitMiddleware(opts.RateLimiter))
			}
			r.Post("/placetopay", h.Webhook.HandleNotification)
			r.Post("/placetopay/events", h.Webhook.HandleEvent)
		})
	}

	if h.Sessions != nil || h.Logs != nil {
		r.Route("/v1", func(r chi.Router) {
			r.Use(middle.AuthMiddleware(opts.APIKey))
			v1.Routes(r, h.Sessions, h.Logs)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	return r
}
