package httpx

// Cookie names and default lifetimes for the session cookie pair.
// The access cookie is always set when issuing a session; the refresh
// cookie only when the upstream handed out a refresh token.
const (
	// CookieAccessToken carries the bearer access token.
	CookieAccessToken = "access_token"
	// CookieRefreshToken carries the refresh token.
	CookieRefreshToken = "refresh_token"
	// CookieClientID identifies an anonymous browser for the redirect
	// slot. Unlike the token cookies it exists before login.
	CookieClientID = "portal_client"

	// DefaultAccessMaxAge is the access cookie lifetime: 7 days in seconds.
	DefaultAccessMaxAge = 604800
	// DefaultRefreshMaxAge is the refresh cookie lifetime: 30 days in seconds.
	DefaultRefreshMaxAge = 2592000
	// ClientIDMaxAge is the anonymous client cookie lifetime: 1 day.
	ClientIDMaxAge = 86400
)

// RequestIDHeader is set on every response for log correlation.
const RequestIDHeader = "X-Request-Id"
