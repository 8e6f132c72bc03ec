package ports

// Package ports defines interfaces (hexagonal ports) for the identity
// layer. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
)

// RegisterInput carries inputs for account creation.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterOutcome reports whether the created account is immediately
// usable or requires an out-of-band confirmation step first. Backends
// must report this explicitly rather than overloading a bare success.
type RegisterOutcome struct {
	PendingConfirmation bool
}

// ProfileUpdate carries best-effort profile mutations. Empty fields are
// left unchanged.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Name      string
}

// IdentityBackend is the per-backend port behind the identity layer. Each
// adapter implements it against one concrete backend; the composition root
// selects exactly one at startup.
//
// All methods are blocking network calls and honor ctx cancellation.
// Errors are returned raw; the service normalizes them.
type IdentityBackend interface {
	// Name identifies the backend in normalized errors and logs.
	Name() string

	// Authenticate exchanges credentials for a bearer token and the
	// normalized profile it authenticates.
	Authenticate(ctx context.Context, email, password string) (domainauth.Credential, error)

	// SignUp creates an account. It does not imply login; the outcome
	// states whether a confirmation step is still pending.
	SignUp(ctx context.Context, in RegisterInput) (RegisterOutcome, error)

	// SignOut invalidates the backend-side session for the token, where
	// the backend supports that. Callers clear local state regardless.
	SignOut(ctx context.Context, token string) error

	// SendPasswordReset triggers an out-of-band recovery flow. It does
	// not change the current session.
	SendPasswordReset(ctx context.Context, email string) error

	// UpdateProfile applies a best-effort profile mutation and returns
	// the resulting profile. Backends without an update path must return
	// an unimplemented error, never pretend success.
	UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (domainauth.Profile, error)

	// RestoreSession validates a previously stored token against the
	// backend and returns a fresh credential for it.
	RestoreSession(ctx context.Context, token string) (domainauth.Credential, error)
}

// SessionNotifier is implemented by backends that push session-change
// events. The returned channel is closed when ctx is canceled; owners
// must consume it for the lifetime of the subscription.
type SessionNotifier interface {
	SessionEvents(ctx context.Context) (<-chan domainauth.SessionEvent, error)
}

// RedirectFlow is implemented by backends that additionally support a
// browser redirect login flow (hosted auth platforms).
type RedirectFlow interface {
	// BeginRedirect returns the provider auth URL plus opaque state and
	// nonce values the caller must round-trip.
	BeginRedirect(ctx context.Context) (authURL, state, nonce string, err error)

	// CompleteRedirect exchanges the callback code for a credential,
	// verifying the nonce.
	CompleteRedirect(ctx context.Context, code, nonce string) (domainauth.Credential, error)
}

// ErrNotFound is returned by KeyValue.Get for missing keys.
type notFoundError struct{}

func (notFoundError) Error() string { return "key not found" }

// ErrNotFound reports a missing key in durable storage.
var ErrNotFound error = notFoundError{}

// KeyValue is durable client-side storage for the session token and
// auth-adjacent cached values.
type KeyValue interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}
