package fallback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		Email:    "dev@example.com",
		Password: "dev-password",
		Claims: map[string]any{
			"sub":        "dev-user",
			"email":      "dev@example.com",
			"given_name": "Dev",
		},
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresCredentials(t *testing.T) {
	_, err := NewProvider(Config{Password: "x"})
	require.Error(t, err)

	_, err = NewProvider(Config{Email: "dev@example.com"})
	require.Error(t, err)
}

func TestNewProvider_DefaultClaims(t *testing.T) {
	p, err := NewProvider(Config{Email: "dev@example.com", Password: "dev-password"})
	require.NoError(t, err)

	cred, err := p.Authenticate(context.Background(), "dev@example.com", "dev-password")
	require.NoError(t, err)
	assert.Equal(t, "fallback-user", cred.Profile.ID)
	assert.Equal(t, "dev@example.com", cred.Profile.Email)
}

func TestProvider_Authenticate(t *testing.T) {
	p := newTestProvider(t)

	cred, err := p.Authenticate(context.Background(), "dev@example.com", "dev-password")

	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)
	assert.Equal(t, "dev-user", cred.Profile.ID)
	assert.Equal(t, "Dev", cred.Profile.FirstName)
}

func TestProvider_Authenticate_Rejection(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.Authenticate(ctx, "dev@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))

	_, err = p.Authenticate(ctx, "other@example.com", "dev-password")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))
}

func TestProvider_Authenticate_UniqueTokens(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	first, err := p.Authenticate(ctx, "dev@example.com", "dev-password")
	require.NoError(t, err)
	second, err := p.Authenticate(ctx, "dev@example.com", "dev-password")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestProvider_RestoreSession(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	cred, err := p.Authenticate(ctx, "dev@example.com", "dev-password")
	require.NoError(t, err)

	restored, err := p.RestoreSession(ctx, cred.Token)

	require.NoError(t, err)
	assert.Equal(t, cred.Token, restored.Token)
	assert.Equal(t, "dev-user", restored.Profile.ID)
}

func TestProvider_RestoreSession_UnknownToken(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.RestoreSession(context.Background(), "never-issued")

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))
}

func TestProvider_SignOutInvalidatesToken(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	cred, err := p.Authenticate(ctx, "dev@example.com", "dev-password")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, cred.Token))

	_, err = p.RestoreSession(ctx, cred.Token)
	require.Error(t, err)
}

func TestProvider_UnsupportedOperations(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, ports.RegisterInput{Email: "x@example.com", Password: "secret"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnimplemented))

	err = p.SendPasswordReset(ctx, "x@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnimplemented))

	_, err = p.UpdateProfile(ctx, "token", ports.ProfileUpdate{FirstName: "X"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnimplemented))
}
