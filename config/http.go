package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":3000"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// ReadTimeout bounds reading the request including the body.
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	// ShutdownTimeout bounds graceful shutdown drain.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 15 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}

	// A cookie domain that is a bare public suffix (e.g. "com",
	// "herokuapp.com") would be rejected by browsers or, worse, leak the
	// session across unrelated sites on the same suffix. Discard it.
	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
}

func sanitizeCookieDomain(domain string) string {
	d := strings.TrimPrefix(strings.TrimSpace(domain), ".")
	if d == "" {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(strings.ToLower(d))
	if suffix == strings.ToLower(d) {
		return ""
	}
	return d
}
