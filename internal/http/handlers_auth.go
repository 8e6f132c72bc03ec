package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// Identity defines the identity-layer operations the HTTP surface
// consumes.
type Identity interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, in ports.ProfileUpdate) error
	BeginRedirectLogin(ctx context.Context) (authURL, state, nonce string, err error)
	CompleteRedirectLogin(ctx context.Context, code, nonce string) error
	State() domainauth.State
}

// AuthHandlers provides HTTP handlers for identity operations.
type AuthHandlers struct {
	Svc          Identity
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// State handles GET /api/auth/state. The frontend polls this on load and
// must not render protected content until isInitialized is true.
func (h *AuthHandlers) State(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.State())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.Login(r.Context(), req.Email, req.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.State())
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type registerResponse struct {
	PendingConfirmation bool `json:"pendingConfirmation"`
}

// Register handles POST /api/auth/register. Registration never implies
// login; the response states whether confirmation is still pending.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	outcome, err := h.Svc.Register(r.Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, registerResponse{PendingConfirmation: outcome.PendingConfirmation})
}

// Logout handles POST /api/auth/logout. It always resolves logged out.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Logout(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.State())
}

type resetRequest struct {
	Email string `json:"email"`
}

// ResetPassword handles POST /api/auth/forgot-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.ResetPassword(r.Context(), req.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type profileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

// UpdateProfile handles PATCH /api/auth/profile.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	err := h.Svc.UpdateProfile(r.Context(), ports.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Name:      req.Name,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.State())
}

// RedirectLogin handles GET /auth/login for backends with a browser
// redirect flow. GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) RedirectLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := sanitizeRedirect(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Svc.BeginRedirectLogin(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setFlowCookies(w, r, flowCookieParams{State: state, Nonce: nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// RedirectCallback handles GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) RedirectCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_params",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie("auth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("auth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce cookie"),
		})
		return
	}

	if err := h.Svc.CompleteRedirectLogin(r.Context(), code, nonceCookie.Value); err != nil {
		h.logger().Warn("redirect login failed", "error", err)
		WriteAppError(w, err)
		return
	}

	redirectURI := "/"
	if c, cerr := r.Cookie("auth_redirect"); cerr == nil {
		// The cookie round-trips through the browser, so it gets the
		// same scrutiny as the original redirect_uri parameter.
		redirectURI = sanitizeRedirect(c.Value)
	}
	h.clearFlowCookies(w, r)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// sanitizeRedirect keeps only relative in-app paths: no scheme, no host
// (which also rejects protocol-relative values like //host/path), must
// start with "/". Anything else collapses to "/".
func sanitizeRedirect(target string) string {
	if target == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return target
}

type flowCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

func (h *AuthHandlers) setFlowCookies(w http.ResponseWriter, r *http.Request, p flowCookieParams) {
	secure := r.TLS != nil
	for name, value := range map[string]string{
		"auth_state":    p.State,
		"auth_nonce":    p.Nonce,
		"auth_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *AuthHandlers) clearFlowCookies(w http.ResponseWriter, r *http.Request) {
	secure := r.TLS != nil
	for _, name := range []string{"auth_state", "auth_nonce", "auth_redirect"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   h.CookieDomain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
