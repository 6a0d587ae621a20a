package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kitahub/parent-portal/config"
)

func TestForceSecureCookies(t *testing.T) {
	cases := []struct {
		name         string
		isDev        bool
		cookieSecure bool
		want         bool
	}{
		// Production never relies on the per-request derivation, even with
		// the flag left at its default.
		{"prod default", false, false, true},
		{"prod explicit", false, true, true},
		{"dev default", true, false, false},
		{"dev explicit", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.AppConfig{IsDev: tc.isDev}
			cfg.Auth.CookieSecure = tc.cookieSecure
			assert.Equal(t, tc.want, forceSecureCookies(cfg))
		})
	}
}
