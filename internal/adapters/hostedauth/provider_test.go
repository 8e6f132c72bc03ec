package hostedauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// fakePlatform is a minimal hosted-auth tenant: discovery, token,
// userinfo, and the dbconnections signup/reset forms.
type fakePlatform struct {
	srv *httptest.Server

	// expireOld makes previously issued tokens fail userinfo validation.
	expireOld bool

	tokenHandler    http.HandlerFunc
	userinfoHandler http.HandlerFunc
	signupHandler   http.HandlerFunc
	resetHandler    http.HandlerFunc
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 p.srv.URL,
			"authorization_endpoint": p.srv.URL + "/authorize",
			"token_endpoint":         p.srv.URL + "/oauth/token",
			"userinfo_endpoint":      p.srv.URL + "/userinfo",
			"jwks_uri":               p.srv.URL + "/.well-known/jwks.json",
		})
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if p.tokenHandler == nil {
			http.Error(w, "no token handler", http.StatusInternalServerError)
			return
		}
		p.tokenHandler(w, r)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if p.userinfoHandler == nil {
			http.Error(w, "no userinfo handler", http.StatusInternalServerError)
			return
		}
		p.userinfoHandler(w, r)
	})
	mux.HandleFunc("/dbconnections/signup", func(w http.ResponseWriter, r *http.Request) {
		if p.signupHandler == nil {
			http.Error(w, "no signup handler", http.StatusInternalServerError)
			return
		}
		p.signupHandler(w, r)
	})
	mux.HandleFunc("/dbconnections/change_password", func(w http.ResponseWriter, r *http.Request) {
		if p.resetHandler == nil {
			http.Error(w, "no reset handler", http.StatusInternalServerError)
			return
		}
		p.resetHandler(w, r)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePlatform) provider(t *testing.T) *Provider {
	t.Helper()
	provider, err := NewProvider(Config{
		Issuer:      p.srv.URL,
		ClientID:    "client-1",
		RedirectURL: "http://localhost:8080/auth/callback",
	})
	require.NoError(t, err)
	return provider
}

func writeToken(w http.ResponseWriter, accessToken, refreshToken string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func writeUserInfo(w http.ResponseWriter, claims map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(claims)
}

func TestNewProvider_Discovery(t *testing.T) {
	platform := newFakePlatform(t)

	provider := platform.provider(t)

	assert.Equal(t, platform.srv.URL+"/oauth/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, platform.srv.URL+"/authorize", provider.config.Endpoint.AuthURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	_, err := NewProvider(Config{ClientID: "client-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer is required")

	_, err = NewProvider(Config{Issuer: "https://tenant.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID is required")
}

func TestProvider_Authenticate(t *testing.T) {
	platform := newFakePlatform(t)
	platform.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "jane@example.com", r.Form.Get("username"))
		writeToken(w, "access-1", "")
	}
	platform.userinfoHandler = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeUserInfo(w, map[string]any{
			"sub":         "auth0|user-1",
			"email":       "jane@example.com",
			"given_name":  "Jane",
			"family_name": "Doe",
		})
	}
	provider := platform.provider(t)

	cred, err := provider.Authenticate(context.Background(), "jane@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.Token)
	assert.Equal(t, "auth0|user-1", cred.Profile.ID)
	assert.Equal(t, "Jane Doe", cred.Profile.Name)
}

func TestProvider_Authenticate_BadGrant(t *testing.T) {
	platform := newFakePlatform(t)
	platform.tokenHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Wrong email or password.",
		})
	}
	provider := platform.provider(t)

	_, err := provider.Authenticate(context.Background(), "jane@example.com", "wrong")

	require.Error(t, err)
	normalized := apperrors.NormalizeAuthError(err, ProviderName, "login")
	assert.Equal(t, "Wrong email or password.", normalized.Message)
}

func TestProvider_RestoreSession_ValidToken(t *testing.T) {
	platform := newFakePlatform(t)
	platform.userinfoHandler = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeUserInfo(w, map[string]any{"sub": "user-1", "email": "jane@example.com"})
	}
	provider := platform.provider(t)

	cred, err := provider.RestoreSession(context.Background(), "access-1")

	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.Token)
	assert.Equal(t, "user-1", cred.Profile.ID)
}

func TestProvider_RestoreSession_SilentRefresh(t *testing.T) {
	platform := newFakePlatform(t)
	platform.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.Form.Get("grant_type") {
		case "password":
			writeToken(w, "access-old", "refresh-1")
		case "refresh_token":
			assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			writeToken(w, "access-new", "")
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}
	platform.userinfoHandler = func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer access-old":
			// Fresh during Authenticate, expired once the test flips the flag.
			if !platform.expireOld {
				writeUserInfo(w, map[string]any{"sub": "user-1", "email": "jane@example.com"})
				return
			}
			http.Error(w, "token expired", http.StatusUnauthorized)
		case "Bearer access-new":
			writeUserInfo(w, map[string]any{"sub": "user-1", "email": "jane@example.com"})
		default:
			http.Error(w, "unknown token", http.StatusUnauthorized)
		}
	}
	provider := platform.provider(t)
	ctx := context.Background()

	// Seeds the refresh-token cache for access-old.
	cred, err := provider.Authenticate(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "access-old", cred.Token)

	platform.expireOld = true

	restored, err := provider.RestoreSession(ctx, "access-old")

	require.NoError(t, err)
	assert.Equal(t, "access-new", restored.Token)
	assert.Equal(t, "user-1", restored.Profile.ID)
}

func TestProvider_RestoreSession_NoRefreshToken(t *testing.T) {
	platform := newFakePlatform(t)
	platform.userinfoHandler = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}
	provider := platform.provider(t)

	_, err := provider.RestoreSession(context.Background(), "unknown-token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate session")
}

func TestProvider_SignUp(t *testing.T) {
	platform := newFakePlatform(t)
	platform.signupHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.Form.Get("client_id"))
		assert.Equal(t, "jane@example.com", r.Form.Get("email"))
		assert.Equal(t, "Username-Password-Authentication", r.Form.Get("connection"))
		assert.Equal(t, "Jane", r.Form.Get("given_name"))
		w.WriteHeader(http.StatusOK)
	}
	provider := platform.provider(t)

	outcome, err := provider.SignUp(context.Background(), ports.RegisterInput{
		Email:     "jane@example.com",
		Password:  "secret",
		FirstName: "Jane",
	})

	require.NoError(t, err)
	assert.True(t, outcome.PendingConfirmation, "hosted platform always verifies by email first")
}

func TestProvider_SendPasswordReset_SurfacesBody(t *testing.T) {
	platform := newFakePlatform(t)
	platform.resetHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Connection does not exist."}`))
	}
	provider := platform.provider(t)

	err := provider.SendPasswordReset(context.Background(), "jane@example.com")

	require.Error(t, err)
	normalized := apperrors.NormalizeAuthError(err, ProviderName, "resetPassword")
	assert.Equal(t, "Connection does not exist.", normalized.Message)
}

func TestProvider_SendPasswordReset_ChunkedErrorBody(t *testing.T) {
	platform := newFakePlatform(t)
	platform.resetHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		_, _ = w.Write([]byte(`{"message":"Connection `))
		flusher.Flush()
		_, _ = w.Write([]byte(`does not exist."}`))
		flusher.Flush()
	}
	provider := platform.provider(t)

	err := provider.SendPasswordReset(context.Background(), "jane@example.com")

	require.Error(t, err)
	normalized := apperrors.NormalizeAuthError(err, ProviderName, "resetPassword")
	assert.Equal(t, "Connection does not exist.", normalized.Message,
		"the whole error body must survive even when it arrives in pieces")
}

func TestProvider_UpdateProfile_Unimplemented(t *testing.T) {
	platform := newFakePlatform(t)
	provider := platform.provider(t)

	_, err := provider.UpdateProfile(context.Background(), "access-1", ports.ProfileUpdate{FirstName: "Jane"})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnimplemented))
}

func TestProvider_BeginRedirect(t *testing.T) {
	platform := newFakePlatform(t)
	provider := platform.provider(t)

	authURL, state, nonce, err := provider.BeginRedirect(context.Background())

	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.Contains(t, authURL, platform.srv.URL+"/authorize")
	assert.Contains(t, authURL, "client_id=client-1")
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "nonce="+nonce)

	_, state2, nonce2, err := provider.BeginRedirect(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)
	assert.NotEqual(t, nonce, nonce2)
}

func TestProvider_CompleteRedirect_RequiresCode(t *testing.T) {
	platform := newFakePlatform(t)
	provider := platform.provider(t)

	_, err := provider.CompleteRedirect(context.Background(), "", "nonce")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code is required")
}

func TestRandomString(t *testing.T) {
	s, err := randomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.NotContains(t, s, "+")
	assert.NotContains(t, s, "/")

	empty, err := randomString(0)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestProfileFromClaims(t *testing.T) {
	p := profileFromClaims(idClaims{
		Sub:   "user-1",
		Email: "jane@example.com",
		Role:  "admin",
	})

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "jane", p.Name)
	assert.Equal(t, "admin", string(p.Role))
}

func TestProvider_SignOutDropsCachedRefreshToken(t *testing.T) {
	platform := newFakePlatform(t)
	platform.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("grant_type") == "password" {
			writeToken(w, "access-1", "refresh-1")
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}
	platform.userinfoHandler = func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.Header.Get("Authorization"), "access-1") && !platform.expireOld {
			writeUserInfo(w, map[string]any{"sub": "user-1", "email": "jane@example.com"})
			return
		}
		http.Error(w, "token expired", http.StatusUnauthorized)
	}
	provider := platform.provider(t)
	ctx := context.Background()

	_, err := provider.Authenticate(ctx, "jane@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, provider.SignOut(ctx, "access-1"))
	platform.expireOld = true

	_, err = provider.RestoreSession(ctx, "access-1")
	require.Error(t, err, "signed-out token must not silently refresh")
}
