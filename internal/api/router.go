// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stars-wallet/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(accountHandler *handler.AccountHandler, paymentHandler *handler.PaymentHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// The mini-app frontend is served from a different origin, so the API
	// answers preflight requests for every route.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Telegram-User"},
		MaxAge:         86400,
	}))

	// Unsupported methods get the same JSON error body as everything else.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error": "Method not allowed"}`))
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Account API routes
	r.Route("/user", func(r chi.Router) {
		r.Get("/", accountHandler.GetAccount)
		r.Post("/", accountHandler.UpsertAccount)
		r.Put("/", accountHandler.AdjustBalance)
		r.Get("/transactions", accountHandler.GetLedgerHistory)
	})

	// Payment callback is a separate top-level endpoint
	r.Post("/payment", paymentHandler.CreditPayment)

	return r
}
