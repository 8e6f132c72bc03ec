package httpx

// Package httpx wires the identity layer to the dashboard frontend over
// a small JSON API.

import (
	"log/slog"
	"net/http"
)

// RouterConfig groups dependencies for NewRouter.
type RouterConfig struct {
	Identity     Identity
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter builds the HTTP mux for the identity API.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	auth := &AuthHandlers{Svc: cfg.Identity, CookieDomain: cfg.CookieDomain, Logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Health)
	mux.HandleFunc("GET /api/auth/state", auth.State)
	mux.HandleFunc("POST /api/auth/login", auth.Login)
	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", auth.ResetPassword)
	mux.HandleFunc("PATCH /api/auth/profile", auth.UpdateProfile)

	// Browser redirect flow; backends without one answer 501 here.
	mux.HandleFunc("GET /auth/login", auth.RedirectLogin)
	mux.HandleFunc("GET /auth/callback", auth.RedirectCallback)

	return mux
}

// Health reports process liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
