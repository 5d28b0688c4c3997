package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/placetopay/handler"
)

// Routes registers the authenticated relay API. Either handler may be nil.
func Routes(r chi.Router, sessions *handler.SessionHandler, logs *handler.LogsHandler) {
	r.Route("/sessions", func(r chi.Router) {
		if sessions != nil {
			r.Post("/", sessions.CreateSession)
			r.Get("/{requestId}", sessions.GetSession)
		}
		if logs != nil {
			r.Get("/{requestId}/exchanges", logs.GetSessionExchanges)
		}
	})

	if logs != nil {
		r.Route("/exchanges", func(r chi.Router) {
			r.Get("/", logs.ListExchanges)
			r.Get("/errors", logs.GetErrorExchanges)
			r.Get("/stats", logs.GetExchangeStats)
		})
	}
}
