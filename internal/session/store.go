package session

// Package session owns the single serialized credential: one bearer token
// kept synchronized between durable storage and the shared HTTP client's
// default Authorization header. All adapters route token writes through
// the Store; nothing else touches storage or headers directly.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/quartzlabs/crm-ui-api/internal/ports"
)

// TokenKey is the well-known storage key for the session token.
const TokenKey = "auth:serviceToken"

// auxKeys are auth-adjacent cached keys cleared together with the session
// token so no stale credential survives a logout.
var auxKeys = []string{"auth:accessToken", "auth:refreshToken", "auth:users"}

// Store manages the session token in durable storage and mirrors it into
// the shared HTTP client via BearerTransport. Both locations are updated
// under one lock, so observers never see one set without the other.
type Store struct {
	mu        sync.Mutex
	kv        ports.KeyValue
	transport *BearerTransport
	client    *http.Client
	logger    *slog.Logger
}

// NewStore builds a Store around durable storage. The shared HTTP client
// is created here so its transport is owned by the session layer.
func NewStore(kv ports.KeyValue, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &BearerTransport{}
	return &Store{
		kv:        kv,
		transport: transport,
		client:    &http.Client{Transport: transport},
		logger:    logger,
	}
}

// Client returns the shared HTTP client whose requests carry the session
// token automatically.
func (s *Store) Client() *http.Client {
	return s.client
}

// SetSession persists a non-empty token under TokenKey and sets it as the
// default bearer header; an empty token removes both. Clearing twice is
// idempotent.
func (s *Store) SetSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return s.clearLocked(ctx)
	}

	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	s.transport.setToken(token)
	return nil
}

// Token returns the stored session token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read session token: %w", err)
	}
	return token, nil
}

// ClearAuthStorage removes the session token plus every auth-adjacent
// cached key. The header is cleared even when storage errors, so a
// failing store cannot leave the client authenticated.
func (s *Store) ClearAuthStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.clearLocked(ctx)
	if delErr := s.kv.Delete(ctx, auxKeys...); delErr != nil {
		err = errors.Join(err, fmt.Errorf("clear auth cache keys: %w", delErr))
	}
	return err
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.transport.setToken("")
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}

// HeaderToken exposes the currently mirrored header token for state
// assertions; it is "" whenever the session is cleared.
func (s *Store) HeaderToken() string {
	return s.transport.Token()
}
