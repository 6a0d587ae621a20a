package config

import (
	"strings"
	"time"
)

// ServicesConfig contains the downstream endpoints probed by the health
// aggregator.
type ServicesConfig struct {
	// AIServiceURL is the health endpoint of the AI assistant service.
	AIServiceURL string `env:"AI_SERVICE_URL" envDefault:"http://localhost:8000"`

	// GibbonHealthURL is the health endpoint of the Gibbon service.
	GibbonHealthURL string `env:"GIBBON_HEALTH_URL" envDefault:"http://localhost:8080/gibbon"`

	// ProbeTimeout bounds each individual health probe.
	ProbeTimeout time.Duration `env:"HEALTH_PROBE_TIMEOUT" envDefault:"5s"`

	// StatusExpr is a JMESPath expression evaluated against a healthy
	// probe's JSON body to surface the upstream's self-reported status as a
	// diagnostic. Empty disables extraction.
	StatusExpr string `env:"HEALTH_STATUS_EXPR" envDefault:"status"`
}

// Sanitize applies guardrails to service probe configuration.
func (s *ServicesConfig) Sanitize() {
	s.AIServiceURL = strings.TrimSpace(s.AIServiceURL)
	s.GibbonHealthURL = strings.TrimSpace(s.GibbonHealthURL)
	s.StatusExpr = strings.TrimSpace(s.StatusExpr)
	if s.ProbeTimeout <= 0 {
		s.ProbeTimeout = 5 * time.Second
	}
}
