package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitahub/parent-portal/config"
	httpx "github.com/kitahub/parent-portal/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:   cfg.Services.Auth,
		Health: cfg.Services.Health,
		Cookies: httpx.SessionCookies{
			Domain:        appCfg.HTTP.CookieDomain,
			Secure:        forceSecureCookies(appCfg),
			AccessMaxAge:  appCfg.Auth.AccessMaxAge,
			RefreshMaxAge: appCfg.Auth.RefreshMaxAge,
		},
		Metrics:        cfg.Services.Metrics,
		Logger:         logger,
		StrictSessions: appCfg.Auth.StrictSessionCheck,
	})

	return startServer(logger, handler, appCfg.HTTP)
}

// forceSecureCookies decides whether the Secure attribute is unconditionally
// set on session cookies. Outside dev it always is, so a proxy that strips
// X-Forwarded-Proto cannot downgrade the session to a non-Secure cookie. In
// dev it follows AUTH_COOKIE_SECURE, leaving the per-request TLS derivation
// for plain-HTTP local servers.
func forceSecureCookies(cfg *config.AppConfig) bool {
	return cfg.Auth.CookieSecure || !cfg.IsDev
}

func startServer(logger *slog.Logger, handler http.Handler, cfg config.HTTPConfig) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":3000"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.InfoContext(ctx, "HTTP server stopped")
	}
	return nil
}

// RunWithShutdown starts the HTTP server and blocks until SIGINT/SIGTERM,
// then drains it within the configured shutdown timeout.
func RunWithShutdown(cfg *HTTPServerConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := StartHTTPServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	stop()
	logger.Info("shutdown signal received")

	return ShutdownHTTPServer(context.Background(), server, cfg.Config.HTTP.ShutdownTimeout, logger)
}
