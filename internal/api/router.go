package api

import (
	"net/http"
	"time"

	"eco_missions/internal/api/handler"
	"eco_missions/internal/api/middleware"
	"eco_missions/internal/app/service"
	"eco_missions/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authService *service.AuthService,
	eventService *service.EventService,
	submissionService *service.SubmissionService,
	leaderboardService *service.LeaderboardService,
	ledgerService *service.LedgerService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// Verifies a token found in "Authorization: Bearer T" and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check and metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Event routes (list/detail/leaderboard public, create/join authenticated)
		eventHandler := handler.NewEventHandler(eventService)
		leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
		v1.Route("/events", func(er chi.Router) {
			eventHandler.RegisterRoutes(er)
			er.Get("/{eventID}/leaderboard", leaderboardHandler.EventLeaderboard)
		})

		// Membership lookup (public; mirrors the original widget endpoint)
		v1.Get("/user-events", eventHandler.UserEvents)

		// Submission routes (authenticated)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		// Wallet (authenticated)
		walletHandler := handler.NewWalletHandler(ledgerService)
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.Authenticator)
			authed.Get("/wallet", walletHandler.Balance)
		})
	})

	return r
}
