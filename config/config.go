package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files
// for details on available environment variables:
//   - auth.go: Identity backend configuration
//   - database.go: Database and Redis configuration
//   - http.go: HTTP server configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth selects and configures the active identity backend.
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// Call after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// Validate checks the invariants the selected backend depends on.
func (c *AppConfig) Validate() error {
	switch c.Auth.Backend {
	case BackendCognito:
		if c.Auth.Cognito.Endpoint == "" || c.Auth.Cognito.ClientID == "" {
			return fmt.Errorf("backend %q requires COGNITO_ENDPOINT and COGNITO_CLIENT_ID", c.Auth.Backend)
		}
	case BackendOIDC:
		if c.Auth.OIDC.Issuer == "" || c.Auth.OIDC.ClientID == "" {
			return fmt.Errorf("backend %q requires OIDC_ISSUER and OIDC_CLIENT_ID", c.Auth.Backend)
		}
	case BackendSelfHosted:
		if c.Auth.SelfHosted.TokenSecret == "" {
			return fmt.Errorf("backend %q requires SELFHOSTED_TOKEN_SECRET", c.Auth.Backend)
		}
	case BackendFallback:
		if c.IsDev {
			break
		}
		// The fallback backend is a development convenience only.
		return fmt.Errorf("backend %q requires DEV=true", c.Auth.Backend)
	default:
		return fmt.Errorf("unknown auth backend %q", c.Auth.Backend)
	}
	return nil
}
