package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/discord-verifier/internal/application/verify"
	"github.com/discord-verifier/internal/config"
	"github.com/discord-verifier/internal/transport/http/handler"
	appmiddleware "github.com/discord-verifier/internal/transport/http/middleware"
)

// NewRouter builds the application router. The verification page is served
// from elsewhere and calls these endpoints cross-origin.
func NewRouter(cfg *config.Config, svc verify.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — keeps a noisy landing page from
	// flooding the audit sinks. Token redemption is deliberately not
	// limited here; a token is single-use anyway.
	visitRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	verifH := handler.NewVerificationHandler(svc)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/verify", verifH.Redeem)
	r.With(visitRL.Limit).Post("/visit", verifH.Visit)
	r.Get("/status", verifH.Status)

	return r
}
