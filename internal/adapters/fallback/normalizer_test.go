package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
)

func TestNormalizeClaims_CanonicalSpellings(t *testing.T) {
	p := NormalizeClaims(nil, "test", map[string]any{
		"id":        "user-1",
		"email":     "jane@example.com",
		"firstName": "Jane",
		"lastName":  "Doe",
		"name":      "Jane Doe",
		"role":      "admin",
	})

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, domainauth.RoleAdmin, p.Role)
}

func TestNormalizeClaims_OIDCSpellings(t *testing.T) {
	p := NormalizeClaims(nil, "test", map[string]any{
		"sub":         "oidc-user-1",
		"email":       "jane@example.com",
		"given_name":  "Jane",
		"family_name": "Doe",
	})

	assert.Equal(t, "oidc-user-1", p.ID)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, "Jane Doe", p.Name)
}

func TestNormalizeClaims_Precedence(t *testing.T) {
	// id outranks sub; name outranks displayName.
	p := NormalizeClaims(nil, "test", map[string]any{
		"id":          "id-wins",
		"sub":         "sub-loses",
		"name":        "name-wins",
		"displayName": "display-loses",
	})

	assert.Equal(t, "id-wins", p.ID)
	assert.Equal(t, "name-wins", p.Name)
}

func TestNormalizeClaims_RoleFromArrays(t *testing.T) {
	p := NormalizeClaims(nil, "test", map[string]any{
		"id":    "user-1",
		"roles": []any{"admin", "user"},
	})

	assert.Equal(t, domainauth.RoleAdmin, p.Role)
}

func TestNormalizeClaims_MissingClaimsDegrade(t *testing.T) {
	p := NormalizeClaims(nil, "test", map[string]any{"uid": "user-1"})

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "", p.Email)
	assert.Equal(t, domainauth.DefaultRole, p.Role)
}

func TestNormalizeClaims_NonStringValuesIgnored(t *testing.T) {
	p := NormalizeClaims(nil, "test", map[string]any{
		"id":    12345,
		"email": map[string]any{"nested": true},
	})

	assert.Equal(t, "", p.ID, "non-string claim values degrade to empty")
	assert.Equal(t, "", p.Email)
}

func TestNormalizeClaims_NilMap(t *testing.T) {
	p := NormalizeClaims(nil, "test", nil)

	assert.Equal(t, "", p.ID)
	assert.Equal(t, domainauth.DefaultRole, p.Role)
}

func TestProfileSearches_CompiledExpressions(t *testing.T) {
	for _, field := range []string{"id", "email", "firstName", "lastName", "name", "role"} {
		jp, ok := profileSearches[field]
		require.True(t, ok, "missing search expression for %q", field)

		got, err := jp.Search(map[string]any{field: "value"})
		require.NoError(t, err)
		assert.Equal(t, "value", got, "compiled expression for %q must match its canonical spelling", field)
	}
}
