package auth

// Package auth contains domain-level types for identity and sessions.
// It is pure and free of framework/adapter concerns.

// Role represents an application's authorization role.
// Keep string form for easy persistence and serialization.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// DefaultRole is used when an identity backend exposes no role claim.
const DefaultRole = RoleUser

// Profile is the canonical backend-agnostic user record consumed by the
// rest of the application. Every field is always present; backends that
// omit a value produce an empty string, never a missing field.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}

// Credential pairs the opaque bearer token issued by a backend with the
// normalized profile it authenticates.
type Credential struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// State is the published authentication state. IsInitialized starts false
// and becomes true exactly once per process, after the first session check
// resolves; consumers must not act on IsLoggedIn before it flips.
type State struct {
	IsLoggedIn    bool     `json:"isLoggedIn"`
	IsInitialized bool     `json:"isInitialized"`
	User          *Profile `json:"user"`
}

// SessionEventType identifies a push-driven session change.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent is a backend push notification of a session change.
// Credential is set only for SessionSignedIn.
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	Credential *Credential      `json:"credential,omitempty"`
}
