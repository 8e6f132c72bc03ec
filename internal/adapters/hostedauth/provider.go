package hostedauth

// Package hostedauth adapts a hosted OIDC auth platform. Interactive
// logins use the resource-owner password grant against the platform's
// token endpoint; browsers may instead use the redirect flow exposed via
// ports.RedirectFlow. Expired access tokens are recovered with a silent
// refresh, deduplicated so concurrent restores trigger one token call.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// ProviderName tags normalized errors from this adapter.
const ProviderName = "hosted-auth"

// Config holds construction-time configuration for the adapter.
type Config struct {
	// Issuer is the platform issuer URL, e.g. https://tenant.eu.auth0.com/.
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// Connection names the credential store used for password resets.
	Connection string
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
	Logger     *slog.Logger
}

// Provider implements ports.IdentityBackend plus ports.RedirectFlow
// against a hosted OIDC platform.
type Provider struct {
	config     *oauth2.Config
	issuer     string
	connection string
	httpClient *http.Client
	logger     *slog.Logger

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	// refresh tokens keyed by the access token they renew
	mu      sync.Mutex
	refresh map[string]string
	group   singleflight.Group
}

var (
	_ ports.IdentityBackend = (*Provider)(nil)
	_ ports.RedirectFlow    = (*Provider)(nil)
)

// NewProvider performs the discovery fetch and constructs the adapter.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("hostedauth: issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("hostedauth: client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.Issuer, "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "openid profile email offline_access"
	}
	connection := cfg.Connection
	if connection == "" {
		connection = "Username-Password-Authentication"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		issuer:       issuer,
		connection:   connection,
		httpClient:   httpClient,
		logger:       logger,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		refresh:      make(map[string]string),
	}, nil
}

// Name identifies the backend in normalized errors.
func (p *Provider) Name() string { return ProviderName }

// Authenticate exchanges email and password at the token endpoint.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (domainauth.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("password grant: %w", err)
	}
	return p.credentialFromToken(ctx, token)
}

// SignUp is not exposed through the token endpoint; the platform offers a
// signup API on the same tenant.
func (p *Provider) SignUp(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error) {
	form := url.Values{
		"client_id":  {p.config.ClientID},
		"email":      {in.Email},
		"password":   {in.Password},
		"connection": {p.connection},
		"given_name": {in.FirstName},
	}
	if in.LastName != "" {
		form.Set("family_name", in.LastName)
	}
	if err := p.postForm(ctx, "/dbconnections/signup", form); err != nil {
		return ports.RegisterOutcome{}, err
	}
	// The platform sends a verification email before first login.
	return ports.RegisterOutcome{PendingConfirmation: true}, nil
}

// SignOut drops the cached refresh token. Hosted-platform session
// teardown happens in the browser via the platform logout URL; locally
// the caller clears the session store regardless.
func (p *Provider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	delete(p.refresh, token)
	p.mu.Unlock()
	return nil
}

// SendPasswordReset asks the platform to email a change-password link.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	form := url.Values{
		"client_id":  {p.config.ClientID},
		"email":      {email},
		"connection": {p.connection},
	}
	return p.postForm(ctx, "/dbconnections/change_password", form)
}

// UpdateProfile has no well-defined path on a hosted platform without a
// management API credential; fail loudly rather than pretend success.
func (p *Provider) UpdateProfile(_ context.Context, _ string, _ ports.ProfileUpdate) (domainauth.Profile, error) {
	p.logger.Warn("profile update requested but not supported", "provider", ProviderName)
	return domainauth.Profile{}, apperrors.Unimplemented("Profile updates are not supported by the hosted auth platform.")
}

// RestoreSession validates a stored access token via the userinfo
// endpoint, silently refreshing it when expired and a refresh token is
// held.
func (p *Provider) RestoreSession(ctx context.Context, token string) (domainauth.Credential, error) {
	profile, err := p.profileFromUserInfo(ctx, token)
	if err == nil {
		return domainauth.Credential{Token: token, Profile: profile}, nil
	}

	p.mu.Lock()
	refreshToken := p.refresh[token]
	p.mu.Unlock()
	if refreshToken == "" {
		return domainauth.Credential{}, fmt.Errorf("validate session: %w", err)
	}

	// Deduplicate concurrent refreshes of the same access token.
	v, refreshErr, _ := p.group.Do(token, func() (any, error) {
		return p.silentRefresh(ctx, token, refreshToken)
	})
	if refreshErr != nil {
		return domainauth.Credential{}, fmt.Errorf("silent refresh: %w", refreshErr)
	}
	cred, ok := v.(domainauth.Credential)
	if !ok {
		return domainauth.Credential{}, errors.New("silent refresh: unexpected result type")
	}
	return cred, nil
}

// BeginRedirect starts the browser login flow.
func (p *Provider) BeginRedirect(_ context.Context) (string, string, string, error) {
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)
	return authURL, state, nonce, nil
}

// CompleteRedirect exchanges the callback code and verifies the nonce.
func (p *Provider) CompleteRedirect(ctx context.Context, code, nonce string) (domainauth.Credential, error) {
	if code == "" {
		return domainauth.Credential{}, errors.New("authorization code is required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("exchange code: %w", err)
	}
	if err := p.verifyNonce(ctx, token, nonce); err != nil {
		return domainauth.Credential{}, err
	}
	return p.credentialFromToken(ctx, token)
}

func (p *Provider) silentRefresh(ctx context.Context, oldToken, refreshToken string) (domainauth.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return domainauth.Credential{}, err
	}
	p.mu.Lock()
	delete(p.refresh, oldToken)
	p.mu.Unlock()
	return p.credentialFromToken(ctx, token)
}

// credentialFromToken builds the canonical credential: claims from a
// verified id_token when present, gaps filled from userinfo.
func (p *Provider) credentialFromToken(ctx context.Context, token *oauth2.Token) (domainauth.Credential, error) {
	var c idClaims
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		idTok, err := p.verifier.Verify(ctx, raw)
		if err != nil {
			return domainauth.Credential{}, fmt.Errorf("verify id_token: %w", err)
		}
		if claimsErr := idTok.Claims(&c); claimsErr != nil {
			return domainauth.Credential{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
		}
	}
	if c.Sub == "" || c.Email == "" {
		if err := p.fillFromUserInfo(ctx, token.AccessToken, &c); err != nil {
			return domainauth.Credential{}, err
		}
	}

	if token.RefreshToken != "" {
		p.mu.Lock()
		p.refresh[token.AccessToken] = token.RefreshToken
		p.mu.Unlock()
	}

	return domainauth.Credential{
		Token:   token.AccessToken,
		Profile: profileFromClaims(c),
	}, nil
}

func (p *Provider) profileFromUserInfo(ctx context.Context, accessToken string) (domainauth.Profile, error) {
	var c idClaims
	if err := p.fillFromUserInfo(ctx, accessToken, &c); err != nil {
		return domainauth.Profile{}, err
	}
	return profileFromClaims(c), nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, c *idClaims) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var uc idClaims
	if claimsErr := ui.Claims(&uc); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	c.Sub = domainauth.FirstNonEmpty(c.Sub, uc.Sub)
	c.Email = domainauth.FirstNonEmpty(c.Email, uc.Email)
	c.GivenName = domainauth.FirstNonEmpty(c.GivenName, uc.GivenName)
	c.FamilyName = domainauth.FirstNonEmpty(c.FamilyName, uc.FamilyName)
	c.Name = domainauth.FirstNonEmpty(c.Name, uc.Name)
	c.Role = domainauth.FirstNonEmpty(c.Role, uc.Role)
	return nil
}

func (p *Provider) verifyNonce(ctx context.Context, token *oauth2.Token, expected string) error {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return fmt.Errorf("verify id_token: %w", err)
	}
	if expected != "" && idTok.Nonce != expected {
		return errors.New("invalid nonce")
	}
	return nil
}

// idClaims is the superset of standard OIDC claims this adapter maps.
type idClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

func profileFromClaims(c idClaims) domainauth.Profile {
	return domainauth.BuildProfile(domainauth.ProfileFields{
		ID:        c.Sub,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Name:      c.Name,
		Role:      c.Role,
	})
}

// postForm posts a tenant API form and surfaces the response body as the
// error message on failure so normalization can extract it.
func (p *Provider) postForm(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.issuer+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.Warn("close response body failed", "path", path, "error", cerr)
		}
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s", strings.TrimSpace(string(data)))
	}
	return nil
}

// randomString generates a cryptographically secure URL-safe random
// string of exact length.
func randomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
