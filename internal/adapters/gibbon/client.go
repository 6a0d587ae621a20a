// Package gibbon is the HTTP adapter for the upstream Gibbon auth service.
// It translates transport outcomes into the internal error taxonomy; raw
// upstream detail never reaches portal clients except where a handler
// intentionally surfaces it.
package gibbon

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kitahub/parent-portal/internal/errors"
	"github.com/kitahub/parent-portal/internal/ports"
)

// ErrUnauthorized is the distinguished error for an upstream 401. Callers
// use it to decide whether to drop session cookies and route to login.
var ErrUnauthorized = stderrors.New("unauthorized")

// DefaultTimeout bounds every upstream call unless the request context is
// stricter.
const DefaultTimeout = 10 * time.Second

// Client talks to the Gibbon REST API. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.AuthBackend = (*Client)(nil)

// New creates a Gibbon client for the given base URL. A nil httpClient
// falls back to a client with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// authEnvelope is the upstream response shape for credential operations.
type authEnvelope struct {
	User         json.RawMessage `json:"user"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	Detail       json.RawMessage `json:"detail"`
}

// Login exchanges credentials for tokens. An upstream 401 maps to the fixed
// "Invalid email or password" message so credential probing learns nothing
// about which half was wrong.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}

	var env authEnvelope
	status, err := c.doJSON(ctx, request{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: body}, &env)
	if err != nil {
		if stderrors.Is(err, ErrUnauthorized) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeAuthentication, "Invalid email or password")
		}
		return nil, c.mapError(err, status, &env)
	}

	return env.toResult(), nil
}

// Register creates a new account. The upstream answers 201 on success and
// 409 when the email is already taken.
func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	body := map[string]string{
		"first_name": reg.FirstName,
		"last_name":  reg.LastName,
		"email":      reg.Email,
		"password":   reg.Password,
	}
	if reg.Phone != "" {
		body["phone"] = reg.Phone
	}

	var env authEnvelope
	status, err := c.doJSON(ctx, request{Method: http.MethodPost, Path: "/api/v1/auth/register", Body: body}, &env)
	if err != nil {
		if status == http.StatusConflict {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, c.mapError(err, status, &env)
	}

	return env.toResult(), nil
}

// Refresh trades a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var env authEnvelope
	status, err := c.doJSON(ctx, request{Method: http.MethodPost, Path: "/api/v1/auth/refresh", Body: body}, &env)
	if err != nil {
		if stderrors.Is(err, ErrUnauthorized) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeAuthentication, "Session expired")
		}
		return nil, c.mapError(err, status, &env)
	}

	return env.toResult(), nil
}

// Profile fetches the caller's profile using the bearer token.
func (c *Client) Profile(ctx context.Context, accessToken string) (json.RawMessage, error) {
	var payload json.RawMessage
	status, err := c.doJSON(ctx, request{
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		WithAuth:    true,
		AccessToken: accessToken,
	}, &payload)
	if err != nil {
		if stderrors.Is(err, ErrUnauthorized) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeAuthentication, "Session expired")
		}
		return nil, c.mapError(err, status, nil)
	}
	return payload, nil
}

func (e *authEnvelope) toResult() *ports.AuthResult {
	return &ports.AuthResult{
		User:         e.User,
		AccessToken:  e.AccessToken,
		RefreshToken: e.RefreshToken,
		Message:      e.Message,
	}
}

// request groups doJSON parameters.
type request struct {
	Method      string
	Path        string
	Body        any
	WithAuth    bool
	AccessToken string
}

// httpError carries a non-2xx upstream answer through the error return.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

// doJSON performs one upstream call. Semantics:
//   - Content-Type: application/json is always set; a bearer header is
//     attached whenever WithAuth is set, even when an empty token produces
//     "Bearer ".
//   - 401 returns ErrUnauthorized.
//   - 204 returns with no decode.
//   - other non-2xx returns the body's "error" field or the HTTP status text.
//   - no retries; a transport failure propagates immediately.
func (c *Client) doJSON(ctx context.Context, req request, out any) (int, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.WithAuth {
		httpReq.Header.Set("Authorization", BearerHeader(req.AccessToken))
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return resp.StatusCode, ErrUnauthorized
	case resp.StatusCode == http.StatusNoContent:
		return resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if out != nil {
			// Best-effort decode so callers can inspect the envelope.
			_ = json.Unmarshal(raw, out)
		}
		return resp.StatusCode, &httpError{
			status:  resp.StatusCode,
			message: errorMessageFrom(raw, resp.Status),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// mapError translates a doJSON failure into the application taxonomy.
func (c *Client) mapError(err error, status int, env *authEnvelope) error {
	var httpErr *httpError
	if stderrors.As(err, &httpErr) {
		switch status {
		case http.StatusUnprocessableEntity:
			// A 422 keeps its status and detail on the way through; it is
			// not folded into a local 400.
			msg := httpErr.message
			if env != nil && len(env.Detail) > 0 {
				msg = detailMessage(env.Detail)
			}
			return apperrors.Unprocessable(msg)
		case http.StatusConflict:
			return apperrors.Conflict(httpErr.message)
		default:
			return apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "auth service error")
		}
	}

	if isTimeout(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstreamTimeout, "auth service timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "auth service unreachable")
}

// isTimeout reports whether the transport failure was a deadline expiry.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// detailMessage renders the upstream "detail" value for relay: a plain JSON
// string loses its quotes, anything structured is relayed verbatim.
func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// errorMessageFrom extracts the "error" field of a JSON body, falling back
// to the HTTP status line.
func errorMessageFrom(raw []byte, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}

// BearerHeader builds an Authorization header value. It is total: an empty
// token still yields "Bearer ".
func BearerHeader(token string) string {
	return "Bearer " + token
}
