package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AuthBackend selects which identity backend the application runs with.
// Exactly one backend is active per process; selection happens at startup,
// never per call.
type AuthBackend string

const (
	// BackendCognito uses the managed-identity service.
	BackendCognito AuthBackend = "cognito"
	// BackendOIDC uses the hosted OIDC auth platform.
	BackendOIDC AuthBackend = "oidc"
	// BackendSelfHosted uses the application's own password store.
	BackendSelfHosted AuthBackend = "selfhosted"
	// BackendFallback uses the config-driven generic backend (development only).
	BackendFallback AuthBackend = "fallback"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthBackend.
func (a *AuthBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cognito", "oidc", "selfhosted", "fallback":
		*a = AuthBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthBackend: %q (valid options: cognito, oidc, selfhosted, fallback)", v)
	}
}

// CognitoConfig configures the managed-identity backend.
type CognitoConfig struct {
	Endpoint string `env:"ENDPOINT"`
	ClientID string `env:"CLIENT_ID"`
}

// OIDCConfig configures the hosted-auth backend.
type OIDCConfig struct {
	Issuer       string `env:"ISSUER"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"        envDefault:"openid profile email offline_access"`
	Connection   string `env:"CONNECTION"   envDefault:"Username-Password-Authentication"`
}

// SelfHostedConfig configures the self-hosted backend.
type SelfHostedConfig struct {
	// TokenSecret signs session tokens. Required when the backend is active.
	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ResetTTL    time.Duration `env:"RESET_TTL" envDefault:"1h"`
}

// FallbackConfig configures the generic development backend. Claims is a
// raw JSON user record in whatever shape the simulated provider uses.
type FallbackConfig struct {
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string `env:"PASSWORD" envDefault:"changeme"`
	Claims   string `env:"CLAIMS"   envDefault:""`
}

// ParseClaims decodes the raw claims JSON, or returns nil when unset.
func (f FallbackConfig) ParseClaims() (map[string]any, error) {
	if strings.TrimSpace(f.Claims) == "" {
		return nil, nil
	}
	var claims map[string]any
	if err := json.Unmarshal([]byte(f.Claims), &claims); err != nil {
		return nil, fmt.Errorf("parse fallback claims: %w", err)
	}
	return claims, nil
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Backend determines which identity backend to use.
	Backend AuthBackend `env:"AUTH_BACKEND" envDefault:"selfhosted"`

	Cognito    CognitoConfig    `envPrefix:"COGNITO_"`
	OIDC       OIDCConfig       `envPrefix:"OIDC_"`
	SelfHosted SelfHostedConfig `envPrefix:"SELFHOSTED_"`
	Fallback   FallbackConfig   `envPrefix:"FALLBACK_"`
}
