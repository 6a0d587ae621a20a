package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesByName(t *testing.T, rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	t.Helper()
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestIssueSetsBothCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	SessionCookies{}.Issue(rec, r, IssueParams{AccessToken: "acc", RefreshToken: "ref"})

	got := cookiesByName(t, rec)
	require.Len(t, got, 2)

	access := got[CookieAccessToken]
	require.NotNil(t, access)
	assert.Equal(t, "acc", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, DefaultAccessMaxAge, access.MaxAge)

	refresh := got[CookieRefreshToken]
	require.NotNil(t, refresh)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, DefaultRefreshMaxAge, refresh.MaxAge)
}

func TestIssueSkipsRefreshCookieWhenAbsent(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	SessionCookies{}.Issue(rec, r, IssueParams{AccessToken: "acc"})

	got := cookiesByName(t, rec)
	require.Len(t, got, 1)
	assert.Contains(t, got, CookieAccessToken)
}

func TestIssueSecureDerivation(t *testing.T) {
	t.Run("forced by config", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		SessionCookies{Secure: true}.Issue(rec, r, IssueParams{AccessToken: "a"})
		assert.True(t, cookiesByName(t, rec)[CookieAccessToken].Secure)
	})

	t.Run("derived from forwarded proto", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		SessionCookies{}.Issue(rec, r, IssueParams{AccessToken: "a"})
		assert.True(t, cookiesByName(t, rec)[CookieAccessToken].Secure)
	})

	t.Run("plain http", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		SessionCookies{}.Issue(rec, r, IssueParams{AccessToken: "a"})
		assert.False(t, cookiesByName(t, rec)[CookieAccessToken].Secure)
	})
}

func TestIssueCustomLifetimesAndDomain(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	c := SessionCookies{Domain: "portal.example.com", AccessMaxAge: 60, RefreshMaxAge: 120}
	c.Issue(rec, r, IssueParams{AccessToken: "a", RefreshToken: "r"})

	got := cookiesByName(t, rec)
	assert.Equal(t, "portal.example.com", got[CookieAccessToken].Domain)
	assert.Equal(t, 60, got[CookieAccessToken].MaxAge)
	assert.Equal(t, 120, got[CookieRefreshToken].MaxAge)
}

func TestClearExpiresBothCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)

	SessionCookies{}.Clear(rec, r)

	got := cookiesByName(t, rec)
	require.Len(t, got, 2)
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		c := got[name]
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestRequestIsAuthenticated(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, RequestIsAuthenticated(r))

	r.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: ""})
	assert.False(t, RequestIsAuthenticated(r))

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	// Any non-empty value passes the presence gate, even garbage.
	r2.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "not-a-jwt"})
	assert.True(t, RequestIsAuthenticated(r2))
}

func TestTokenExtraction(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "acc"})
	r.AddCookie(&http.Cookie{Name: CookieRefreshToken, Value: "ref"})
	r.AddCookie(&http.Cookie{Name: CookieClientID, Value: "client-1"})

	assert.Equal(t, "acc", AccessTokenFromRequest(r))
	assert.Equal(t, "ref", RefreshTokenFromRequest(r))
	assert.Equal(t, "client-1", ClientIDFromRequest(r))

	empty := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, AccessTokenFromRequest(empty))
	assert.Empty(t, RefreshTokenFromRequest(empty))
	assert.Empty(t, ClientIDFromRequest(empty))
}
