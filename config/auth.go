package config

import (
	"strings"
	"time"
)

// Cookie lifetime defaults in seconds: 7 days access, 30 days refresh.
const (
	defaultAccessMaxAge  = 604800
	defaultRefreshMaxAge = 2592000
)

// AuthConfig contains cookie and upstream auth service configuration.
type AuthConfig struct {
	// GibbonBaseURL is the base URL of the upstream Gibbon auth service.
	GibbonBaseURL string `env:"GIBBON_BASE_URL" envDefault:"http://localhost:8080/gibbon"`

	// GibbonTimeout bounds each upstream auth request.
	GibbonTimeout time.Duration `env:"GIBBON_TIMEOUT" envDefault:"10s"`

	// AccessMaxAge is the access cookie lifetime in seconds. Must not
	// exceed the access token lifetime issued upstream.
	AccessMaxAge int `env:"AUTH_ACCESS_COOKIE_MAX_AGE" envDefault:"604800"`

	// RefreshMaxAge is the refresh cookie lifetime in seconds.
	RefreshMaxAge int `env:"AUTH_REFRESH_COOKIE_MAX_AGE" envDefault:"2592000"`

	// CookieSecure forces the Secure attribute on session cookies even in
	// dev mode. Outside dev the attribute is always forced; in dev without
	// this flag it is derived per request from TLS / X-Forwarded-Proto.
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" envDefault:"false"`

	// StrictSessionCheck makes GET /api/auth/me re-check token expiry
	// instead of trusting the access cookie's max-age.
	StrictSessionCheck bool `env:"AUTH_STRICT_SESSION_CHECK" envDefault:"false"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.GibbonBaseURL = strings.TrimRight(strings.TrimSpace(a.GibbonBaseURL), "/")
	if a.GibbonTimeout <= 0 {
		a.GibbonTimeout = 10 * time.Second
	}
	if a.AccessMaxAge <= 0 {
		a.AccessMaxAge = defaultAccessMaxAge
	}
	if a.RefreshMaxAge <= 0 {
		a.RefreshMaxAge = defaultRefreshMaxAge
	}
}
