package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/quotation-api/internal/application/notify"
	"github.com/quotation-api/internal/application/otp"
	"github.com/quotation-api/internal/application/quotation"
	"github.com/quotation-api/internal/config"
	jwtinfra "github.com/quotation-api/internal/infrastructure/jwt"
	"github.com/quotation-api/internal/transport/http/handler"
	appmiddleware "github.com/quotation-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw, optionalAuthMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
		optionalAuthMw = appmiddleware.OptionalAuth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
		optionalAuthMw = authMw
	}

	// 5 requests/second, burst of 10 — applied to the public code endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	orchestrator := notify.NewOrchestrator(deps.Mailer, deps.SMSSender, deps.ActivityRepo, cfg.BackofficeEmail)
	quotationSvc := quotation.NewService(deps.QuotationRepo, orchestrator)
	otpSvc := otp.NewService(deps.CodeRepo, deps.QuotationRepo, deps.Mailer, cfg.CodeTTL)

	healthH := handler.NewHealthHandler()
	actionH := handler.NewActionHandler(otpSvc, quotationSvc)
	quotationH := handler.NewQuotationHandler(quotationSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// Client action flow. POST serves both anonymous claimants and
		// logged-in clients, hence OptionalAuth instead of Auth.
		r.With(sensitiveRL.Limit, optionalAuthMw).Post("/quotations/{id}/action", actionH.Request)
		r.With(sensitiveRL.Limit).Put("/quotations/{id}/action", actionH.Confirm)

		// ── Admin routes ─────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(jwtinfra.RoleAdmin))

			r.Post("/quotations", quotationH.Create)
			r.Get("/quotations/{id}", quotationH.Get)
			r.Patch("/quotations/{id}", quotationH.Update)
			r.Post("/quotations/{id}/send", quotationH.Send)
		})
	})

	return r
}
