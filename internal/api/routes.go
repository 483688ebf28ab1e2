// Package api wires the HTTP surface: router-level privacy middleware, the
// chat endpoint, the privacy self-report and the health check.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/matiasleandrokruk/soksol/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/soksol/internal/api/middleware"
)

// Deps are the services behind the routes.
type Deps struct {
	Chat          handlers.ChatService
	Privacy       handlers.PrivacyReporter
	Logger        *slog.Logger
	DefaultLocale language.Tag
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes, including 404/405).
	// NoStore goes first so recovered panics keep its headers; Recover sits
	// after Identity so its INTERNAL body is localized.
	r.Use(apmiddleware.NoStore)
	r.Use(middleware.RequestID)
	r.Use(apmiddleware.AccessLog(deps.Logger))
	r.Use(apmiddleware.Identity(deps.DefaultLocale))
	r.Use(apmiddleware.Recover(deps.Logger))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// Health check, used by load balancers and orchestrators
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	chatHandler := handlers.NewChatHandler(deps.Chat)
	privacyHandler := handlers.NewPrivacyHandler(deps.Privacy)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat) // POST /api/chat

		r.Route("/privacy-check", func(r chi.Router) {
			r.Get("/", privacyHandler.Check)      // GET /api/privacy-check
			r.Post("/", privacyHandler.Reject)    // 405, nothing is collected
			r.Put("/", privacyHandler.Reject)
			r.Delete("/", privacyHandler.Reject)
			r.Patch("/", privacyHandler.Reject)
		})
	})

	return r
}
