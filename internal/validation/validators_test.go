package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"simple address", "user@example.com", true},
		{"subdomain", "user@mail.example.com", true},
		{"surrounding whitespace", "  user@example.com  ", true},
		{"empty", "", false},
		{"no at sign", "userexample.com", false},
		{"missing local part", "@example.com", false},
		{"missing domain", "user@", false},
		{"two at signs", "user@@example.com", false},
		{"at sign only", "@", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("secret"))
	assert.True(t, IsValidPassword("a much longer passphrase"))
	assert.False(t, IsValidPassword(""))
	assert.False(t, IsValidPassword("short"))

	// Length is counted in runes, not bytes.
	assert.True(t, IsValidPassword("pässwd"))
	assert.False(t, IsValidPassword("päss"))
}

func TestEmailValidator(t *testing.T) {
	v := Email("Email")

	assert.Equal(t, "Email is required.", v(""))
	assert.Equal(t, "Email is required.", v("   "))
	assert.Equal(t, "Email must be a valid email address.", v("not-an-email"))
	assert.Equal(t, "", v("user@example.com"))
}

func TestPasswordValidator(t *testing.T) {
	v := Password("Password")

	assert.Equal(t, "Password is required.", v(""))
	assert.Equal(t, "Password must be at least 6 characters.", v("abc"))
	assert.Equal(t, "", v("abcdef"))
}
