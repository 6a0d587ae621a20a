package auth

// Package auth contains domain-level types for portal authentication.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents a portal authorization role.
// Kept in string form for easy transport in token claims and JSON.
type Role string

const (
	RoleParent Role = "parent"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Claims are the decoded fields carried inside a bearer token's payload
// segment. Only ExpiresAt is load-bearing for validity; everything else is
// passed through to the caller as-is.
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	// HasExpiry records whether the exp claim was present and numeric.
	// Tokens without an expiry are treated as always-expired (fail-closed).
	HasExpiry bool `json:"-"`
}

// Expired reports whether the claims are expired relative to now.
// Missing expiry counts as expired.
func (c Claims) Expired(now time.Time) bool {
	if !c.HasExpiry {
		return true
	}
	return time.Unix(c.ExpiresAt, 0).Before(now)
}

// User is the portal-facing identity extracted from token claims.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnauthReason classifies why a request carries no usable session.
type UnauthReason string

const (
	ReasonNoToken   UnauthReason = "no_token"
	ReasonMalformed UnauthReason = "malformed"
	ReasonExpired   UnauthReason = "expired"
)

// Session is the materialized result of validating a bearer token.
// It is computed fresh on every request from the inbound cookie and never
// cached server-side; the cookie is the session store.
type Session struct {
	Authenticated bool
	Claims        *Claims
	Reason        UnauthReason
}

// AuthenticatedSession builds a session for successfully validated claims.
func AuthenticatedSession(claims *Claims) Session {
	return Session{Authenticated: true, Claims: claims}
}

// UnauthenticatedSession builds a session for a rejected or absent token.
func UnauthenticatedSession(reason UnauthReason) Session {
	return Session{Reason: reason}
}
