package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/kitahub/parent-portal/internal/errors"
	"github.com/kitahub/parent-portal/internal/observability/statsd"
	"github.com/kitahub/parent-portal/internal/ports"
	"github.com/kitahub/parent-portal/internal/token"

	domainauth "github.com/kitahub/parent-portal/internal/domain/auth"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend   ports.AuthBackend
	Redirects ports.RedirectStore
	Metrics   statsd.Sink
}

// AuthService orchestrates credential operations against the upstream auth
// backend and owns the post-login redirect memory. Token validation itself
// is stateless and lives in internal/token; this service never persists
// session state — the cookie is the session store.
type AuthService struct {
	backend   ports.AuthBackend
	redirects ports.RedirectStore
	metrics   statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		backend:   opts.Backend,
		redirects: opts.Redirects,
		metrics:   opts.Metrics,
	}
}

// Login proxies a credential check to the upstream service.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	result, err := s.backend.Login(ctx, creds)
	s.count("auth.login", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Register proxies account creation to the upstream service.
func (s *AuthService) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	result, err := s.backend.Register(ctx, reg)
	s.count("auth.register", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh trades a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.Authentication("No session to refresh")
	}
	result, err := s.backend.Refresh(ctx, refreshToken)
	s.count("auth.refresh", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Profile fetches the caller's profile from upstream with the bearer token.
func (s *AuthService) Profile(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return s.backend.Profile(ctx, accessToken)
}

// CurrentUser extracts the identity carried in the access token.
// Decode failures fail closed into a decode error (401), never a 500.
// Expiry is deliberately not rechecked here: the access cookie's max-age is
// never longer than the token lifetime, so an expired token cannot arrive
// through a live cookie. See DESIGN.md.
func (s *AuthService) CurrentUser(raw string) (*domainauth.User, error) {
	if raw == "" {
		return nil, apperrors.Authentication("Not authenticated")
	}
	user, err := token.UserFromToken(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDecode, "Invalid token")
	}
	return user, nil
}

// ValidateToken classifies the token into a session at the given instant.
func (s *AuthService) ValidateToken(raw string, now time.Time) domainauth.Session {
	return token.Validate(raw, now)
}

// RememberRedirect stores a pending post-login destination for a client.
// Only same-origin relative paths are accepted.
func (s *AuthService) RememberRedirect(ctx context.Context, clientID, path string) error {
	if !SafeRedirectPath(path) {
		return apperrors.ValidationField("path", "path must be a same-origin relative path")
	}
	return s.redirects.Set(ctx, clientID, path)
}

// PopRedirect reads and clears the pending destination, defaulting to "/".
// Anything unsafe that made it into the slot is normalized away.
func (s *AuthService) PopRedirect(ctx context.Context, clientID string) (string, error) {
	path, err := s.redirects.Pop(ctx, clientID)
	if err != nil {
		return "/", err
	}
	if !SafeRedirectPath(path) {
		return "/", nil
	}
	return path, nil
}

// SafeRedirectPath reports whether the candidate is a same-origin relative
// path starting with "/" and not a protocol-relative or absolute URL.
func SafeRedirectPath(candidate string) bool {
	if candidate == "" || strings.HasPrefix(candidate, "//") {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return false
	}
	return true
}

func (s *AuthService) count(name string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(apperrors.GetCode(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.Count(name, 1, map[string]string{"outcome": outcome})
}
