package fallback

import (
	"log/slog"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
)

// Claim search expressions, in precedence order per canonical field,
// compiled once at package load. The generic normalizer has no knowledge
// of the backend, so it probes the common claim spellings seen across
// identity providers.
var profileSearches = map[string]jmespath.JMESPath{
	"id":        jmespath.MustCompile("id || user_id || userId || sub || uid"),
	"email":     jmespath.MustCompile("email || mail || email_address"),
	"firstName": jmespath.MustCompile("firstName || first_name || given_name || givenName"),
	"lastName":  jmespath.MustCompile("lastName || last_name || family_name || familyName || surname"),
	"name":      jmespath.MustCompile("name || displayName || display_name || full_name"),
	"role":      jmespath.MustCompile("role || roles[0] || groups[0]"),
}

// NormalizeClaims maps an arbitrary provider user record into the
// canonical profile. It exists for backends without a dedicated mapper
// and logs a warning on every use: seeing it in production means an
// unmapped backend is live.
func NormalizeClaims(logger *slog.Logger, providerName string, raw map[string]any) domainauth.Profile {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("generic profile normalizer in use; backend has no dedicated mapper",
		"provider", providerName)

	return domainauth.BuildProfile(domainauth.ProfileFields{
		ID:        searchString(raw, profileSearches["id"]),
		Email:     searchString(raw, profileSearches["email"]),
		FirstName: searchString(raw, profileSearches["firstName"]),
		LastName:  searchString(raw, profileSearches["lastName"]),
		Name:      searchString(raw, profileSearches["name"]),
		Role:      searchString(raw, profileSearches["role"]),
	})
}

// searchString evaluates a compiled JMESPath expression and returns the
// result when it is a string; anything else degrades to "".
func searchString(raw map[string]any, jp jmespath.JMESPath) string {
	if raw == nil {
		return ""
	}
	result, err := jp.Search(raw)
	if err != nil {
		return ""
	}
	s, ok := result.(string)
	if !ok {
		return ""
	}
	return s
}
