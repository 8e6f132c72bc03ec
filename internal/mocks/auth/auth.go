package auth

// Package auth contains simple hand-written test doubles for identity
// ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityBackend = (*MockBackend)(nil)
	_ ports.SessionNotifier = (*NotifyingBackend)(nil)
	_ ports.KeyValue        = (*MemoryKeyValue)(nil)
)

// MockBackend simulates an identity backend with per-operation override
// hooks and a deterministic default user.
type MockBackend struct {
	AuthenticateFunc   func(ctx context.Context, email, password string) (domainauth.Credential, error)
	SignUpFunc         func(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error)
	SignOutFunc        func(ctx context.Context, token string) error
	SendResetFunc      func(ctx context.Context, email string) error
	UpdateProfileFunc  func(ctx context.Context, token string, in ports.ProfileUpdate) (domainauth.Profile, error)
	RestoreSessionFunc func(ctx context.Context, token string) (domainauth.Credential, error)

	// Deterministic defaults for predictable testing
	BackendName  string
	DefaultToken string
	DefaultUser  domainauth.Profile

	mu    sync.Mutex
	calls []string
}

// NewMockBackend creates a MockBackend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		BackendName:  "mock",
		DefaultToken: "mock-token-1",
		DefaultUser: domainauth.Profile{
			ID:        "mock-user-1",
			Email:     "mock.user@example.com",
			FirstName: "Mock",
			LastName:  "User",
			Name:      "Mock User",
			Role:      domainauth.RoleUser,
		},
	}
}

// Calls returns the ordered operation names invoked so far.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockBackend) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *MockBackend) Name() string { return m.BackendName }

func (m *MockBackend) Authenticate(ctx context.Context, email, password string) (domainauth.Credential, error) {
	m.record("Authenticate")
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return domainauth.Credential{Token: m.DefaultToken, Profile: m.DefaultUser}, nil
}

func (m *MockBackend) SignUp(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error) {
	m.record("SignUp")
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	return ports.RegisterOutcome{}, nil
}

func (m *MockBackend) SignOut(ctx context.Context, token string) error {
	m.record("SignOut")
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, token)
	}
	return nil
}

func (m *MockBackend) SendPasswordReset(ctx context.Context, email string) error {
	m.record("SendPasswordReset")
	if m.SendResetFunc != nil {
		return m.SendResetFunc(ctx, email)
	}
	return nil
}

func (m *MockBackend) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (domainauth.Profile, error) {
	m.record("UpdateProfile")
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, token, in)
	}
	return m.DefaultUser, nil
}

func (m *MockBackend) RestoreSession(ctx context.Context, token string) (domainauth.Credential, error) {
	m.record("RestoreSession")
	if m.RestoreSessionFunc != nil {
		return m.RestoreSessionFunc(ctx, token)
	}
	return domainauth.Credential{Token: token, Profile: m.DefaultUser}, nil
}

// NotifyingBackend decorates MockBackend with a push event channel so
// tests can drive session-change notifications.
type NotifyingBackend struct {
	*MockBackend
	events chan domainauth.SessionEvent
}

// NewNotifyingBackend creates a NotifyingBackend with an unstarted event
// stream.
func NewNotifyingBackend() *NotifyingBackend {
	return &NotifyingBackend{
		MockBackend: NewMockBackend(),
		events:      make(chan domainauth.SessionEvent),
	}
}

// SessionEvents hands back the test-driven channel; it closes when ctx is
// canceled.
func (n *NotifyingBackend) SessionEvents(ctx context.Context) (<-chan domainauth.SessionEvent, error) {
	out := make(chan domainauth.SessionEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-n.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Push delivers one session event to the subscriber.
func (n *NotifyingBackend) Push(ev domainauth.SessionEvent) {
	n.events <- ev
}

// MemoryKeyValue is an in-memory ports.KeyValue for tests.
type MemoryKeyValue struct {
	mu   sync.Mutex
	data map[string]string

	// Optional fault injection
	SetErr    error
	GetErr    error
	DeleteErr error
}

// NewMemoryKeyValue creates an empty in-memory store.
func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{data: make(map[string]string)}
}

func (m *MemoryKeyValue) Set(_ context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryKeyValue) Get(_ context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ports.ErrNotFound
	}
	return v, nil
}

func (m *MemoryKeyValue) Delete(_ context.Context, keys ...string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys, for assertions.
func (m *MemoryKeyValue) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
