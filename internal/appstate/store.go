package appstate

// Package appstate holds global authentication state. It is the sole
// owner of that state: the identity layer mutates it only by dispatching
// the three actions below, and consumers read snapshots or subscribe.

import (
	"sync"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
)

// Action is a state mutation intent. The closed set of implementations
// below are the only mutation points for authentication state.
type Action interface {
	apply(s *domainauth.State)
}

// LoginAction publishes a logged-in state for User. It also marks the
// store initialized, since a resolved session check precedes any login.
type LoginAction struct {
	User domainauth.Profile
}

func (a LoginAction) apply(s *domainauth.State) {
	u := a.User
	s.IsLoggedIn = true
	s.IsInitialized = true
	s.User = &u
}

// LogoutAction publishes a logged-out state.
type LogoutAction struct{}

func (LogoutAction) apply(s *domainauth.State) {
	s.IsLoggedIn = false
	s.IsInitialized = true
	s.User = nil
}

// InitializeAction marks the startup session check resolved with no
// session found.
type InitializeAction struct{}

func (InitializeAction) apply(s *domainauth.State) {
	s.IsLoggedIn = false
	s.IsInitialized = true
	s.User = nil
}

// Store holds the published authentication state. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state domainauth.State
	subs  map[int]chan domainauth.State
	next  int
}

// NewStore returns a Store in the uninitialized, logged-out state.
func NewStore() *Store {
	return &Store{subs: make(map[int]chan domainauth.State)}
}

// Dispatch applies an action and notifies subscribers with the resulting
// snapshot. Slow subscribers miss intermediate states rather than block
// the dispatcher.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	a.apply(&s.state)
	snapshot := s.snapshotLocked()
	subs := make([]chan domainauth.State, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() domainauth.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the state, including the User pointer target, so
// callers cannot mutate the store through the snapshot.
func (s *Store) snapshotLocked() domainauth.State {
	snap := s.state
	if s.state.User != nil {
		u := *s.state.User
		snap.User = &u
	}
	return snap
}

// Subscribe registers for state snapshots after each dispatch. The
// returned cancel func must be called on teardown to release the channel.
func (s *Store) Subscribe() (<-chan domainauth.State, func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	ch := make(chan domainauth.State, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
