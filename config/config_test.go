package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.HTTP.Addr)
	}
	if cfg.Services.AIServiceURL != "http://localhost:8000" {
		t.Errorf("AIServiceURL = %q", cfg.Services.AIServiceURL)
	}
	if cfg.Services.GibbonHealthURL != "http://localhost:8080/gibbon" {
		t.Errorf("GibbonHealthURL = %q", cfg.Services.GibbonHealthURL)
	}
	if cfg.Services.StatusExpr != "status" {
		t.Errorf("StatusExpr = %q", cfg.Services.StatusExpr)
	}
	if cfg.Auth.GibbonBaseURL != "http://localhost:8080/gibbon" {
		t.Errorf("GibbonBaseURL = %q", cfg.Auth.GibbonBaseURL)
	}
	if cfg.Auth.AccessMaxAge != 604800 {
		t.Errorf("AccessMaxAge = %d", cfg.Auth.AccessMaxAge)
	}
	if cfg.Auth.RefreshMaxAge != 2592000 {
		t.Errorf("RefreshMaxAge = %d", cfg.Auth.RefreshMaxAge)
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Errorf("Redis URI = %q", cfg.Redis.URI)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics should default to disabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("GIBBON_BASE_URL", "https://gibbon.internal/api/")
	t.Setenv("AUTH_ACCESS_COOKIE_MAX_AGE", "120")
	t.Setenv("REDIS_URI", "redis.internal:6380")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.HTTP.Addr)
	}
	// Trailing slash is trimmed during sanitization.
	if cfg.Auth.GibbonBaseURL != "https://gibbon.internal/api" {
		t.Errorf("GibbonBaseURL = %q", cfg.Auth.GibbonBaseURL)
	}
	if cfg.Auth.AccessMaxAge != 120 {
		t.Errorf("AccessMaxAge = %d", cfg.Auth.AccessMaxAge)
	}
	if cfg.Redis.URI != "redis.internal:6380" {
		t.Errorf("Redis URI = %q", cfg.Redis.URI)
	}
}

func TestSanitizeClamps(t *testing.T) {
	cfg := AppConfig{
		HTTP:     HTTPConfig{ReadTimeout: -1, WriteTimeout: 0, ShutdownTimeout: -5 * time.Second},
		Auth:     AuthConfig{GibbonTimeout: 0, AccessMaxAge: -1, RefreshMaxAge: 0},
		Services: ServicesConfig{ProbeTimeout: 0},
	}
	cfg.Sanitize()

	if cfg.HTTP.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.HTTP.WriteTimeout)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Auth.GibbonTimeout != 10*time.Second {
		t.Errorf("GibbonTimeout = %v", cfg.Auth.GibbonTimeout)
	}
	if cfg.Auth.AccessMaxAge != defaultAccessMaxAge {
		t.Errorf("AccessMaxAge = %d", cfg.Auth.AccessMaxAge)
	}
	if cfg.Services.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v", cfg.Services.ProbeTimeout)
	}
}

func TestSanitizeCookieDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"registrable domain kept", "portal.example.com", "portal.example.com"},
		{"leading dot stripped", ".portal.example.com", "portal.example.com"},
		{"bare tld discarded", "com", ""},
		{"bare public suffix discarded", "co.uk", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeCookieDomain(tt.input); got != tt.want {
				t.Errorf("sanitizeCookieDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	var cfg AppConfig
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}

	t.Setenv("NODE_ENV", "production")
	cfg = AppConfig{}
	cfg.Sanitize()
	if cfg.IsDev {
		t.Error("NODE_ENV=production should not enable dev mode")
	}
}

func TestMetricsDisabledWithoutAddress(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()
	if cfg.IsEnabled() {
		t.Error("metrics without an address must be disabled")
	}
}
