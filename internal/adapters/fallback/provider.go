package fallback

// Package fallback provides a config-driven identity backend for
// environments without a real provider (local development, demos). The
// configured user record is mapped through the generic claim normalizer,
// which warns on every use.

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// ProviderName tags normalized errors from this adapter.
const ProviderName = "fallback"

// Config controls the fallback backend. Claims is the raw provider-shaped
// user record; it deliberately stays un-canonical so the generic
// normalizer path is exercised.
type Config struct {
	Email    string
	Password string
	Claims   map[string]any
	Logger   *slog.Logger
}

// Provider implements ports.IdentityBackend from static configuration.
type Provider struct {
	email    string
	password string
	claims   map[string]any
	logger   *slog.Logger

	mu     sync.Mutex
	tokens map[string]struct{}
}

var _ ports.IdentityBackend = (*Provider)(nil)

// NewProvider validates config and constructs the backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("fallback: email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("fallback: password is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	claims := cfg.Claims
	if claims == nil {
		claims = map[string]any{"id": "fallback-user", "email": cfg.Email}
	}
	return &Provider{
		email:    cfg.Email,
		password: cfg.Password,
		claims:   claims,
		logger:   logger,
		tokens:   make(map[string]struct{}),
	}, nil
}

// Name identifies the backend in normalized errors.
func (p *Provider) Name() string { return ProviderName }

// Authenticate compares against the configured credentials and issues a
// random session token.
func (p *Provider) Authenticate(_ context.Context, email, password string) (domainauth.Credential, error) {
	if subtle.ConstantTimeCompare([]byte(email), []byte(p.email)) != 1 ||
		subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) != 1 {
		return domainauth.Credential{}, apperrors.Unauthorized("Incorrect email or password.")
	}

	token, err := randomToken(32)
	if err != nil {
		return domainauth.Credential{}, err
	}
	p.mu.Lock()
	p.tokens[token] = struct{}{}
	p.mu.Unlock()

	return domainauth.Credential{
		Token:   token,
		Profile: NormalizeClaims(p.logger, ProviderName, p.claims),
	}, nil
}

// SignUp is not available on the fallback backend.
func (p *Provider) SignUp(_ context.Context, _ ports.RegisterInput) (ports.RegisterOutcome, error) {
	p.logger.Warn("registration requested but not supported", "provider", ProviderName)
	return ports.RegisterOutcome{}, apperrors.Unimplemented("Registration is not supported by this backend.")
}

// SignOut forgets the issued token.
func (p *Provider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	delete(p.tokens, token)
	p.mu.Unlock()
	return nil
}

// SendPasswordReset is not available on the fallback backend.
func (p *Provider) SendPasswordReset(_ context.Context, _ string) error {
	p.logger.Warn("password reset requested but not supported", "provider", ProviderName)
	return apperrors.Unimplemented("Password reset is not supported by this backend.")
}

// UpdateProfile is not available on the fallback backend.
func (p *Provider) UpdateProfile(_ context.Context, _ string, _ ports.ProfileUpdate) (domainauth.Profile, error) {
	p.logger.Warn("profile update requested but not supported", "provider", ProviderName)
	return domainauth.Profile{}, apperrors.Unimplemented("Profile updates are not supported by this backend.")
}

// RestoreSession accepts only tokens issued by this process.
func (p *Provider) RestoreSession(_ context.Context, token string) (domainauth.Credential, error) {
	p.mu.Lock()
	_, ok := p.tokens[token]
	p.mu.Unlock()
	if !ok {
		return domainauth.Credential{}, apperrors.Unauthorized("Session is no longer valid.")
	}
	return domainauth.Credential{
		Token:   token,
		Profile: NormalizeClaims(p.logger, ProviderName, p.claims),
	}, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
