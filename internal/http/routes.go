package httpx

import (
	"log/slog"
	"net/http"

	"github.com/kitahub/parent-portal/internal/observability/statsd"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth   AuthServiceInterface
	Health HealthServiceInterface

	Cookies SessionCookies
	Metrics statsd.Sink
	Logger  *slog.Logger

	// StrictSessions enables the expiry re-check on GET /api/auth/me.
	StrictSessions bool
}

// NewRouter creates and configures the HTTP router with the full
// middleware stack (recover outermost, then logging, metrics, request id).
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	healthHandlers := &HealthHandlers{Svc: services.Health, Logger: logger}
	mux.HandleFunc("GET /api/health", healthHandlers.Health)

	authHandlers := &AuthHandlers{
		Svc:            services.Auth,
		Cookies:        services.Cookies,
		Logger:         logger,
		StrictSessions: services.StrictSessions,
	}
	registerAuthRoutes(mux, authHandlers)

	return Chain(mux,
		Recover(logger),
		Logging(logger),
		Metrics(services.Metrics),
		RequestID(),
	)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("GET /api/auth/me", h.Me)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/auth/redirect", h.RedirectSet)
	mux.HandleFunc("GET /api/auth/redirect", h.RedirectPop)

	// Auth-gated proxy routes. Presence gate only; the token is consumed
	// downstream.
	authed := RequireAuthCookie()
	mux.Handle("GET /api/profile", authed(http.HandlerFunc(h.Profile)))
}
