package session

import (
	"net/http"
	"sync"
)

// BearerTransport is an http.RoundTripper that injects an
// "Authorization: Bearer <token>" header into every outbound request of
// the shared network client. The token is written only by the session
// Store; an empty token means no header is added. Safe for concurrent use.
type BearerTransport struct {
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper

	mu    sync.RWMutex
	token string
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// mutation, as required by the RoundTripper contract.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.RLock()
	token := t.token
	t.mu.RUnlock()

	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// setToken replaces the injected token; empty clears it.
func (t *BearerTransport) setToken(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// Token returns the currently injected token, or "" when cleared.
func (t *BearerTransport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}
