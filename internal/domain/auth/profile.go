package auth

import "strings"

// ProfileFields carries raw, possibly incomplete values extracted from a
// backend-specific user record. BuildProfile turns them into a canonical
// Profile with every field populated.
type ProfileFields struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Name      string
	Role      string
}

// BuildProfile normalizes raw fields into a canonical Profile. Missing
// values degrade to empty strings; the display name falls back to the
// concatenation of first and last name, then to the email local part; the
// role defaults to DefaultRole.
func BuildProfile(f ProfileFields) Profile {
	p := Profile{
		ID:        strings.TrimSpace(f.ID),
		Email:     strings.TrimSpace(f.Email),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Name:      strings.TrimSpace(f.Name),
		Role:      Role(strings.TrimSpace(f.Role)),
	}

	if p.Name == "" {
		p.Name = displayName(p.FirstName, p.LastName, p.Email)
	}
	if p.Role == "" {
		p.Role = DefaultRole
	}
	return p
}

// displayName derives a best-effort display name from name parts, falling
// back to the email local part when both parts are empty.
func displayName(first, last, email string) string {
	full := strings.TrimSpace(first + " " + last)
	if full != "" {
		return full
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}

// FirstNonEmpty returns the first non-empty string from vals, or empty
// string if none. Adapters use it to apply claim precedence rules.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
