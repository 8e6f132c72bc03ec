package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthBackend_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthBackend
		wantErr bool
	}{
		{"cognito", BackendCognito, false},
		{"oidc", BackendOIDC, false},
		{"selfhosted", BackendSelfHosted, false},
		{"fallback", BackendFallback, false},
		{"COGNITO", BackendCognito, false},
		{"auth0", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var b AuthBackend
			err := b.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestFallbackConfig_ParseClaims(t *testing.T) {
	claims, err := FallbackConfig{Claims: `{"sub":"dev-user","email":"dev@example.com"}`}.ParseClaims()
	require.NoError(t, err)
	assert.Equal(t, "dev-user", claims["sub"])

	claims, err = FallbackConfig{}.ParseClaims()
	require.NoError(t, err)
	assert.Nil(t, claims)

	_, err = FallbackConfig{Claims: `{not json`}.ParseClaims()
	require.Error(t, err)
}

func validConfig(backend AuthBackend) AppConfig {
	cfg := AppConfig{IsDev: true}
	cfg.Auth.Backend = backend
	cfg.Auth.Cognito = CognitoConfig{Endpoint: "https://cognito.example.com/", ClientID: "client-1"}
	cfg.Auth.OIDC = OIDCConfig{Issuer: "https://tenant.example.com/", ClientID: "client-1"}
	cfg.Auth.SelfHosted = SelfHostedConfig{TokenSecret: "secret"}
	return cfg
}

func TestAppConfig_Validate(t *testing.T) {
	for _, backend := range []AuthBackend{BackendCognito, BackendOIDC, BackendSelfHosted, BackendFallback} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := validConfig(backend)
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestAppConfig_Validate_MissingRequirements(t *testing.T) {
	cfg := validConfig(BackendCognito)
	cfg.Auth.Cognito.ClientID = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig(BackendOIDC)
	cfg.Auth.OIDC.Issuer = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig(BackendSelfHosted)
	cfg.Auth.SelfHosted.TokenSecret = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig("")
	require.Error(t, cfg.Validate())
}

func TestAppConfig_Validate_FallbackRequiresDev(t *testing.T) {
	cfg := validConfig(BackendFallback)
	cfg.IsDev = false

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEV=true")
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := AppConfig{}
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{ReadTimeout: -1, WriteTimeout: 0, ShutdownTimeout: 5 * time.Second}

	h.Sanitize()

	assert.Equal(t, 10*time.Second, h.ReadTimeout)
	assert.Equal(t, 30*time.Second, h.WriteTimeout)
	assert.Equal(t, 5*time.Second, h.ShutdownTimeout)
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	m := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "  "}

	m.Sanitize()

	assert.False(t, m.Enabled, "an empty address disables metrics")
	assert.False(t, m.IsEnabled())

	m = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "127.0.0.1:8125"}
	m.Sanitize()
	assert.True(t, m.IsEnabled())
}
