package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the advisory client-side minimum. The backend's
// policy is always authoritative.
const MinPasswordLength = 6

// Validator is a function that validates a string value and returns an
// error message if invalid.
type Validator func(v string) string

// IsValidEmail reports whether s has exactly one '@' with non-empty local
// and domain parts. This is an advisory shape check, not proof the address
// exists.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	return at < len(s)-1
}

// IsValidPassword reports whether s meets the minimum length. Uses rune
// count for proper Unicode support.
func IsValidPassword(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength
}

// Email validates that a field is a well-formed email address.
func Email(fieldName string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required."
		}
		if !IsValidEmail(v) {
			return fieldName + " must be a valid email address."
		}
		return ""
	}
}

// Password validates that a field meets the minimum password length.
func Password(fieldName string) Validator {
	return func(v string) string {
		if v == "" {
			return fieldName + " is required."
		}
		if !IsValidPassword(v) {
			return fmt.Sprintf("%s must be at least %d characters.", fieldName, MinPasswordLength)
		}
		return ""
	}
}
