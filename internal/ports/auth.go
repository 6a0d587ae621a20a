package ports

// Package ports defines interfaces (hexagonal ports) for the portal's
// outward-facing dependencies. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"
	"encoding/json"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries a new-account request. Phone is optional.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// AuthResult is the upstream's answer to a successful credential operation.
// User is relayed to the client verbatim; the tokens never are — they only
// travel inside httpOnly cookies.
type AuthResult struct {
	User         json.RawMessage
	AccessToken  string
	RefreshToken string
	Message      string
}

// AuthBackend proxies credential operations to the upstream auth service.
// Implementations translate transport failures into the internal/errors
// taxonomy (authentication, conflict, validation, upstream_unavailable,
// upstream_timeout).
type AuthBackend interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Profile fetches the caller's profile with a bearer token. A 401 from
	// upstream surfaces as an authentication error so the caller can drop
	// the session cookies.
	Profile(ctx context.Context, accessToken string) (json.RawMessage, error)
}

// RedirectStore remembers a single pending post-login destination per
// client. The slot is single-use: Pop clears it and returns "/" when it is
// empty. This is an explicit contract, not an accident of ambient storage.
type RedirectStore interface {
	Set(ctx context.Context, clientID, path string) error
	Pop(ctx context.Context, clientID string) (string, error)
}
