package httpx

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookies issues and clears the cookie pair that carries the
// session. There is no server-side session record: the cookie is the
// session store, recomputed from the token on every request.
type SessionCookies struct {
	// Domain for the cookies; empty uses the request domain.
	Domain string
	// Secure forces the Secure attribute regardless of how the request
	// arrived (set in production). Otherwise it is derived per request
	// from TLS / X-Forwarded-Proto.
	Secure bool
	// AccessMaxAge and RefreshMaxAge override the default lifetimes in
	// seconds; zero means default.
	AccessMaxAge  int
	RefreshMaxAge int
}

// IssueParams groups the tokens for Issue.
type IssueParams struct {
	AccessToken  string
	RefreshToken string
}

// Issue sets the access cookie unconditionally and the refresh cookie only
// when a refresh token is present. All cookies are httpOnly, SameSite=Lax,
// Path=/.
func (c SessionCookies) Issue(w http.ResponseWriter, r *http.Request, p IssueParams) {
	secure := c.isSecure(r)

	accessMaxAge := c.AccessMaxAge
	if accessMaxAge <= 0 {
		accessMaxAge = DefaultAccessMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAccessToken,
		Value:    p.AccessToken,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   accessMaxAge,
	})

	if p.RefreshToken == "" {
		return
	}
	refreshMaxAge := c.RefreshMaxAge
	if refreshMaxAge <= 0 {
		refreshMaxAge = DefaultRefreshMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieRefreshToken,
		Value:    p.RefreshToken,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   refreshMaxAge,
	})
}

// Clear overwrites both cookies with empty values and immediate expiry so
// the client drops them.
func (c SessionCookies) Clear(w http.ResponseWriter, r *http.Request) {
	secure := c.isSecure(r)
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.Domain,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0).UTC(),
		})
	}
}

// IssueClientID sets the anonymous client cookie used to key the redirect
// slot. Not httpOnly-sensitive data, but kept httpOnly anyway since only
// the server reads it back.
func (c SessionCookies) IssueClientID(w http.ResponseWriter, r *http.Request, clientID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieClientID,
		Value:    clientID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   ClientIDMaxAge,
	})
}

func (c SessionCookies) isSecure(r *http.Request) bool {
	if c.Secure {
		return true
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// RequestIsAuthenticated is the shallow auth gate: true iff the access
// cookie is present with a non-empty value. It deliberately does not
// decode or expiry-check the token; deep validation happens where claims
// are consumed.
func RequestIsAuthenticated(r *http.Request) bool {
	return AccessTokenFromRequest(r) != ""
}

// AccessTokenFromRequest returns the access token cookie value, or "".
func AccessTokenFromRequest(r *http.Request) string {
	return cookieValue(r, CookieAccessToken)
}

// RefreshTokenFromRequest returns the refresh token cookie value, or "".
func RefreshTokenFromRequest(r *http.Request) string {
	return cookieValue(r, CookieRefreshToken)
}

// ClientIDFromRequest returns the anonymous client cookie value, or "".
func ClientIDFromRequest(r *http.Request) string {
	return cookieValue(r, CookieClientID)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
