// Package token decodes and classifies the portal's bearer tokens.
//
// Tokens are three-segment compact JWTs, but this package never verifies the
// signature segment; it is only structurally required. Trust is delegated to
// the issuing Gibbon backend and to transport protections (httpOnly cookie,
// TLS). Adding verification here would change observable behavior and is
// explicitly out of scope.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/kitahub/parent-portal/internal/domain/auth"
)

// ErrMalformed is returned when a token cannot be decoded: wrong segment
// count, corrupt base64, or invalid JSON in the payload.
var ErrMalformed = errors.New("malformed token")

// ErrExpired is returned by Validate when the token decodes but is stale.
var ErrExpired = errors.New("token expired")

// Decode extracts the claims from the payload segment of a bearer token.
// It fails on anything other than a three-segment token with a base64
// payload holding valid JSON. The signature is not checked.
func Decode(raw string) (*domainauth.Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}

	claims := &domainauth.Claims{}
	if sub, found := payload["sub"].(string); found {
		claims.Subject = sub
	}
	if email, found := payload["email"].(string); found {
		claims.Email = email
	}
	if role, found := payload["role"].(string); found {
		claims.Role = domainauth.Role(role)
	}
	if iat, found := payload["iat"].(float64); found {
		claims.IssuedAt = int64(iat)
	}
	// A missing or non-numeric exp leaves HasExpiry false, which the domain
	// treats as always-expired.
	if exp, found := payload["exp"].(float64); found {
		claims.ExpiresAt = int64(exp)
		claims.HasExpiry = true
	}

	return claims, nil
}

// IsExpired reports whether the token is unusable at the given instant.
// Fail-closed: undecodable tokens and tokens without a numeric exp claim
// are expired.
func IsExpired(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.Expired(now)
}

// UserFromToken extracts the portal identity carried in the token.
// It does not check expiry; callers needing freshness compose with
// IsExpired explicitly.
func UserFromToken(raw string) (*domainauth.User, error) {
	claims, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return &domainauth.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Validate decodes a token and checks its expiry in one step, returning the
// resulting session classification alongside the claims.
func Validate(raw string, now time.Time) domainauth.Session {
	if raw == "" {
		return domainauth.UnauthenticatedSession(domainauth.ReasonNoToken)
	}
	claims, err := Decode(raw)
	if err != nil {
		return domainauth.UnauthenticatedSession(domainauth.ReasonMalformed)
	}
	if claims.Expired(now) {
		return domainauth.UnauthenticatedSession(domainauth.ReasonExpired)
	}
	return domainauth.AuthenticatedSession(claims)
}
