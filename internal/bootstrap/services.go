package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/kitahub/parent-portal/config"
	"github.com/kitahub/parent-portal/internal/adapters/gibbon"
	redisadapter "github.com/kitahub/parent-portal/internal/adapters/redis"
	"github.com/kitahub/parent-portal/internal/observability/statsd"
	"github.com/kitahub/parent-portal/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth    *service.AuthService
	Health  *service.HealthService
	Metrics *statsd.Client
}

// ServiceDeps contains dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Metrics     *statsd.Client
	Logger      *slog.Logger
}

// NewServices wires adapters into the service layer.
func NewServices(deps *ServiceDeps) ServiceContainer {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := gibbon.New(cfg.Auth.GibbonBaseURL, &http.Client{
		Timeout: cfg.Auth.GibbonTimeout,
	})
	redirects := redisadapter.NewRedirectStore(deps.RedisClient)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Backend:   backend,
		Redirects: redirects,
		Metrics:   deps.Metrics,
	})

	health := service.NewHealthService(service.HealthServiceOptions{
		AIServiceURL: cfg.Services.AIServiceURL,
		GibbonURL:    cfg.Services.GibbonHealthURL,
		Version:      Version(),
		ProbeTimeout: cfg.Services.ProbeTimeout,
		StatusExpr:   cfg.Services.StatusExpr,
		Metrics:      deps.Metrics,
		Logger:       logger,
	})

	return ServiceContainer{
		Auth:    auth,
		Health:  health,
		Metrics: deps.Metrics,
	}
}
