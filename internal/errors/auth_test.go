package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNormalizeAuthError_PassesThroughExisting(t *testing.T) {
	original := &AuthError{
		Message:  "Incorrect username or password.",
		Provider: "cognito",
		Op:       "login",
	}

	got := NormalizeAuthError(fmt.Errorf("wrapped: %w", original), "other", "restore")

	assert.Same(t, original, got)
	assert.Equal(t, "cognito", got.Provider)
}

func TestNormalizeAuthError_AppErrorMessage(t *testing.T) {
	cause := Conflict("An account with this email already exists.")

	got := NormalizeAuthError(cause, "selfhosted", "register")

	assert.Equal(t, "An account with this email already exists.", got.Message)
	assert.Equal(t, "selfhosted", got.Provider)
	assert.Equal(t, "register", got.Op)
	require.ErrorAs(t, got, new(*AppError))
}

func TestNormalizeAuthError_OAuth2ErrorDescription(t *testing.T) {
	cause := &oauth2.RetrieveError{
		ErrorCode:        "invalid_grant",
		ErrorDescription: "Wrong email or password.",
	}

	got := NormalizeAuthError(cause, "hosted-auth", "login")

	assert.Equal(t, "Wrong email or password.", got.Message)
}

func TestNormalizeAuthError_OAuth2BodyJSON(t *testing.T) {
	cause := &oauth2.RetrieveError{
		Body: []byte(`{"error":"invalid_grant","error_description":"Wrong email or password."}`),
	}

	got := NormalizeAuthError(cause, "hosted-auth", "login")

	assert.Equal(t, "Wrong email or password.", got.Message)
}

func TestNormalizeAuthError_JSONErrorString(t *testing.T) {
	cause := errors.New(`{"message":"User does not exist."}`)

	got := NormalizeAuthError(cause, "cognito", "restore")

	assert.Equal(t, "User does not exist.", got.Message)
}

func TestNormalizeAuthError_RawErrorString(t *testing.T) {
	cause := errors.New("connection refused")

	got := NormalizeAuthError(cause, "cognito", "login")

	assert.Equal(t, "connection refused", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestNormalizeAuthError_NilError(t *testing.T) {
	got := NormalizeAuthError(nil, "cognito", "login")

	assert.Equal(t, "login failed", got.Message)
	assert.NoError(t, got.Cause)
}

func TestAuthError_ErrorFormat(t *testing.T) {
	err := &AuthError{Message: "no session", Provider: "fallback", Op: "restore"}

	assert.Equal(t, "fallback restore: no session", err.Error())
}
