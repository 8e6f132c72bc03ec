package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination.
// Returns false when decoding failed; the error response is already
// written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects are not recoverable here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": errorMessage(p.Err)})
}

// WriteAppError maps a layer error onto an HTTP status and writes it. The
// message surfaced is always the human-readable normalized one.
func WriteAppError(w http.ResponseWriter, err error) {
	WriteError(w, ErrorParams{
		Code:    statusFromError(err),
		ErrCode: string(apperrors.CodeOf(err)),
		Err:     err,
	})
}

// errorMessage prefers the normalized human-readable message over the
// wrapped error chain string.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *apperrors.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func statusFromError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeUnimplemented:
		return http.StatusNotImplemented
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}

	// A normalized backend rejection without a structured code is a
	// client-facing refusal, not a server fault.
	var authErr *apperrors.AuthError
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
