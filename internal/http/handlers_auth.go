package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/kitahub/parent-portal/internal/domain/auth"
	apperrors "github.com/kitahub/parent-portal/internal/errors"
	"github.com/kitahub/parent-portal/internal/http/validation"
	"github.com/kitahub/parent-portal/internal/ports"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error)
	Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
	Profile(ctx context.Context, accessToken string) (json.RawMessage, error)
	CurrentUser(raw string) (*domainauth.User, error)
	ValidateToken(raw string, now time.Time) domainauth.Session
	RememberRedirect(ctx context.Context, clientID, path string) error
	PopRedirect(ctx context.Context, clientID string) (string, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies SessionCookies
	Logger  *slog.Logger

	// StrictSessions makes Me re-check token expiry instead of trusting
	// that the access cookie's max-age matches the token lifetime.
	StrictSessions bool
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

const minPasswordLength = 8

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// sessionResponse is the body returned after a successful credential
// operation. The tokens are never in it; they travel only in cookies.
type sessionResponse struct {
	User    json.RawMessage `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Login handles the credential login endpoint.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	// Presence and shape only. Password length is enforced at registration;
	// an existing short password must still reach upstream and come back as
	// a 401, not a 400.
	if msg := validation.First(
		validation.Check(validation.Email("Email"), req.Email),
		validation.Check(validation.Required("Password"), req.Password),
	); msg != "" {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.Svc.Login(r.Context(), ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteAppError(w, h.logger(), err)
		return
	}

	h.Cookies.Issue(w, r, IssueParams{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
	WriteJSON(w, http.StatusOK, sessionResponse{User: result.User, Message: result.Message})
}

// Register handles the account creation endpoint.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if msg := validation.First(
		validation.Check(validation.Required("First name"), req.FirstName),
		validation.Check(validation.Required("Last name"), req.LastName),
		validation.Check(validation.Email("Email"), req.Email),
		validation.Check(validation.MinLength("Password", minPasswordLength), req.Password),
		validation.Check(validation.OptionalPhone("Phone"), req.Phone),
	); msg != "" {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.Svc.Register(r.Context(), ports.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		WriteAppError(w, h.logger(), err)
		return
	}

	h.Cookies.Issue(w, r, IssueParams{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
	WriteJSON(w, http.StatusCreated, sessionResponse{User: result.User, Message: result.Message})
}

// Me returns the identity carried in the access token cookie, decoded
// locally without an upstream round trip. With StrictSessions the token's
// expiry is checked first and a stale session answers 401.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	raw := AccessTokenFromRequest(r)
	if h.StrictSessions {
		if session := h.Svc.ValidateToken(raw, time.Now()); !session.Authenticated {
			WriteAppError(w, h.logger(), sessionError(session.Reason))
			return
		}
	}

	user, err := h.Svc.CurrentUser(raw)
	if err != nil {
		WriteAppError(w, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*domainauth.User{"user": user})
}

// sessionError maps an unauthenticated session classification onto the
// error taxonomy.
func sessionError(reason domainauth.UnauthReason) error {
	switch reason {
	case domainauth.ReasonMalformed:
		return apperrors.Decode("Invalid token")
	case domainauth.ReasonExpired:
		return apperrors.Authentication("Session expired")
	default:
		return apperrors.Authentication("Not authenticated")
	}
}

// Logout clears the session cookies. Always succeeds: there is no
// server-side session to tear down.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Refresh trades the refresh cookie for a new token pair and re-issues
// the session cookies.
// POST /api/auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.Refresh(r.Context(), RefreshTokenFromRequest(r))
	if err != nil {
		WriteAppError(w, h.logger(), err)
		return
	}

	h.Cookies.Issue(w, r, IssueParams{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
	WriteJSON(w, http.StatusOK, sessionResponse{User: result.User, Message: result.Message})
}

// Profile proxies the upstream profile endpoint with the caller's bearer
// token and relays the JSON payload. An upstream 401 means the token is
// stale, so the session cookies are dropped along with the error.
// GET /api/profile.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Svc.Profile(r.Context(), AccessTokenFromRequest(r))
	if err != nil {
		if apperrors.IsAuthentication(err) {
			h.Cookies.Clear(w, r)
		}
		WriteAppError(w, h.logger(), err)
		return
	}
	WriteRawJSON(w, http.StatusOK, payload)
}

type redirectRequest struct {
	Path string `json:"path"`
}

// RedirectSet remembers a post-login destination for this browser. The
// browser is identified by the portal client cookie, issued here when
// absent so the slot survives the login round trip.
// POST /api/auth/redirect.
func (h *AuthHandlers) RedirectSet(w http.ResponseWriter, r *http.Request) {
	var req redirectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	clientID := ClientIDFromRequest(r)
	if clientID == "" {
		clientID = uuid.NewString()
		h.Cookies.IssueClientID(w, r, clientID)
	}

	if err := h.Svc.RememberRedirect(r.Context(), clientID, req.Path); err != nil {
		WriteAppError(w, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"path": req.Path})
}

// RedirectPop reads and clears the pending destination. The slot is
// single-use; an empty or missing slot answers "/". Store failures are
// logged and degrade to "/" rather than failing the caller.
// GET /api/auth/redirect.
func (h *AuthHandlers) RedirectPop(w http.ResponseWriter, r *http.Request) {
	path, err := h.Svc.PopRedirect(r.Context(), ClientIDFromRequest(r))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "redirect pop failed", "error", err)
		path = "/"
	}
	WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}
