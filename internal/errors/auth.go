package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// AuthError is the normalized error every identity backend failure is
// wrapped into. Callers never need provider-specific introspection: the
// human-readable message, the originating provider, and the operation are
// carried uniformly, and the original error stays reachable via Unwrap.
type AuthError struct {
	// Message is human-readable and safe to surface to the UI.
	Message string
	// Provider identifies the originating backend (e.g. "cognito").
	Provider string
	// Op is the contract operation that failed (e.g. "login").
	Op string
	// Cause is the original backend error, never swallowed.
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Message)
}

// Unwrap returns the original backend error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NormalizeAuthError wraps a heterogeneous backend error into an AuthError
// tagged with provider and operation. The message is extracted by probing,
// in order: an already-normalized AuthError, a structured AppError, an
// OAuth2 token-endpoint error (error_description), a JSON error body with
// a message or error_description field, the raw error string, and finally
// a generic "<op> failed".
func NormalizeAuthError(err error, provider, op string) *AuthError {
	if err == nil {
		return &AuthError{Message: op + " failed", Provider: provider, Op: op}
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	return &AuthError{
		Message:  extractMessage(err, op),
		Provider: provider,
		Op:       op,
		Cause:    err,
	}
}

// apiErrorBody is the superset of JSON error shapes the supported backends
// return.
type apiErrorBody struct {
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func extractMessage(err error, op string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorDescription != "" {
			return retrieveErr.ErrorDescription
		}
		if msg := messageFromJSON(retrieveErr.Body); msg != "" {
			return msg
		}
	}

	if msg := messageFromJSON([]byte(err.Error())); msg != "" {
		return msg
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return op + " failed"
}

// messageFromJSON probes a raw error payload for message, then
// error_description. Non-JSON payloads yield "".
func messageFromJSON(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed apiErrorBody
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.ErrorDescription
}
