package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quartzlabs/crm-ui-api/internal/appstate"
	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/observability/statsd"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
	"github.com/quartzlabs/crm-ui-api/internal/session"
	"github.com/quartzlabs/crm-ui-api/internal/validation"
)

// IdentityOptions groups dependencies for IdentityService.
type IdentityOptions struct {
	Backend  ports.IdentityBackend
	Sessions *session.Store
	State    *appstate.Store
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// IdentityService implements the uniform identity contract on top of
// exactly one active backend. It owns the auth state machine: failures
// during initialize collapse to logged-out, logout always clears local
// state, and push-driven session events produce the same transitions as
// direct calls.
//
// Operations are serialized with an internal mutex, so back-to-back
// login/logout calls resolve in call order and the last one wins.
type IdentityService struct {
	mu       sync.Mutex
	backend  ports.IdentityBackend
	sessions *session.Store
	state    *appstate.Store
	metrics  statsd.Sink
	logger   *slog.Logger

	initialized bool
	cancelWatch context.CancelFunc
	watchDone   chan struct{}
}

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(opts IdentityOptions) *IdentityService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		state:    opts.State,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Initialize reconciles any pre-existing session into published state. It
// runs the state machine exactly once: later calls are no-ops. Backend
// faults are absorbed into the logged-out state and logged, so an
// unreachable backend never blocks the application from becoming
// interactive.
func (s *IdentityService) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true

	token, err := s.sessions.Token(ctx)
	if err != nil {
		s.logger.Warn("read stored session failed", "error", err)
		token = ""
	}

	switch {
	case token == "":
		s.state.Dispatch(appstate.InitializeAction{})
		s.count("auth.initialize", map[string]string{"outcome": "none"})

	default:
		cred, restoreErr := s.backend.RestoreSession(ctx, token)
		if restoreErr != nil {
			s.logger.Warn("session restore failed, starting logged out",
				"provider", s.backend.Name(), "error", restoreErr)
			if clearErr := s.sessions.SetSession(ctx, ""); clearErr != nil {
				s.logger.Warn("clear stale session failed", "error", clearErr)
			}
			s.state.Dispatch(appstate.InitializeAction{})
			s.count("auth.initialize", map[string]string{"outcome": "error"})
			break
		}
		if persistErr := s.sessions.SetSession(ctx, cred.Token); persistErr != nil {
			s.logger.Warn("persist restored session failed, starting logged out", "error", persistErr)
			s.state.Dispatch(appstate.InitializeAction{})
			s.count("auth.initialize", map[string]string{"outcome": "error"})
			break
		}
		s.state.Dispatch(appstate.LoginAction{User: cred.Profile})
		s.count("auth.initialize", map[string]string{"outcome": "restored"})
	}

	s.startWatchLocked()
}

// Login authenticates and publishes the logged-in state. On failure the
// prior state is untouched and a normalized error is returned.
func (s *IdentityService) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	cred, err := s.backend.Authenticate(ctx, email, password)
	if err != nil {
		s.count("auth.login", map[string]string{"result": "failure"})
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "login")
	}
	if err := s.sessions.SetSession(ctx, cred.Token); err != nil {
		s.count("auth.login", map[string]string{"result": "failure"})
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "login")
	}

	s.state.Dispatch(appstate.LoginAction{User: cred.Profile})
	s.count("auth.login", map[string]string{"result": "success"})
	s.timing("auth.login.duration", time.Since(start))
	return nil
}

// Register creates an account on the active backend. It never implies
// login; the outcome reports whether confirmation is still pending.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error) {
	outcome, err := s.backend.SignUp(ctx, in)
	if err != nil {
		return ports.RegisterOutcome{}, apperrors.NormalizeAuthError(err, s.backend.Name(), "register")
	}
	return outcome, nil
}

// Logout clears the session store and publishes the logged-out state.
// Backend-side sign-out faults are logged, never propagated: local state
// must not remain logged in after a logout request.
func (s *IdentityService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.sessions.Token(ctx)
	if err != nil {
		s.logger.Warn("read stored session failed during logout", "error", err)
	}
	if token != "" {
		if signOutErr := s.backend.SignOut(ctx, token); signOutErr != nil {
			s.logger.Warn("backend sign-out failed, clearing local session anyway",
				"provider", s.backend.Name(), "error", signOutErr)
		}
	}
	if clearErr := s.sessions.ClearAuthStorage(ctx); clearErr != nil {
		s.logger.Error("clear auth storage failed", "error", clearErr)
	}

	s.state.Dispatch(appstate.LogoutAction{})
	s.count("auth.logout", nil)
	return nil
}

// ResetPassword triggers the backend's out-of-band recovery flow. The
// email shape is checked first; an invalid address fails synchronously
// without a backend call. Current session state is unchanged either way.
func (s *IdentityService) ResetPassword(ctx context.Context, email string) error {
	if !validation.IsValidEmail(email) {
		return apperrors.ValidationField("email", "A valid email address is required.")
	}
	if err := s.backend.SendPasswordReset(ctx, email); err != nil {
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "resetPassword")
	}
	return nil
}

// UpdateProfile applies a best-effort profile mutation and republishes
// the logged-in state with the resulting profile.
func (s *IdentityService) UpdateProfile(ctx context.Context, in ports.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.sessions.Token(ctx)
	if err != nil {
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "updateProfile")
	}
	if token == "" {
		return apperrors.Unauthorized("You must be logged in to update your profile.")
	}

	profile, err := s.backend.UpdateProfile(ctx, token, in)
	if err != nil {
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "updateProfile")
	}
	s.state.Dispatch(appstate.LoginAction{User: profile})
	return nil
}

// BeginRedirectLogin starts the browser login flow on backends that
// support one, returning the provider auth URL plus state and nonce.
func (s *IdentityService) BeginRedirectLogin(ctx context.Context) (authURL, state, nonce string, err error) {
	redirect, ok := s.backend.(ports.RedirectFlow)
	if !ok {
		return "", "", "", apperrors.Unimplemented("The active backend has no redirect login flow.")
	}
	authURL, state, nonce, err = redirect.BeginRedirect(ctx)
	if err != nil {
		return "", "", "", apperrors.NormalizeAuthError(err, s.backend.Name(), "login")
	}
	return authURL, state, nonce, nil
}

// CompleteRedirectLogin exchanges the callback code and publishes the
// logged-in state, exactly as a direct Login would.
func (s *IdentityService) CompleteRedirectLogin(ctx context.Context, code, nonce string) error {
	redirect, ok := s.backend.(ports.RedirectFlow)
	if !ok {
		return apperrors.Unimplemented("The active backend has no redirect login flow.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := redirect.CompleteRedirect(ctx, code, nonce)
	if err != nil {
		s.count("auth.login", map[string]string{"result": "failure"})
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "login")
	}
	if err := s.sessions.SetSession(ctx, cred.Token); err != nil {
		s.count("auth.login", map[string]string{"result": "failure"})
		return apperrors.NormalizeAuthError(err, s.backend.Name(), "login")
	}
	s.state.Dispatch(appstate.LoginAction{User: cred.Profile})
	s.count("auth.login", map[string]string{"result": "success"})
	return nil
}

// State returns the current published authentication state.
func (s *IdentityService) State() domainauth.State {
	return s.state.State()
}

// Close tears down the session-event subscription, if any. It must be
// called before discarding the service so no state updates are dispatched
// against a gone consumer.
func (s *IdentityService) Close() error {
	s.mu.Lock()
	cancel := s.cancelWatch
	done := s.watchDone
	s.cancelWatch = nil
	s.watchDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// startWatchLocked subscribes to backend session-change pushes for the
// lifetime of the service. Backends without push support are skipped.
func (s *IdentityService) startWatchLocked() {
	notifier, ok := s.backend.(ports.SessionNotifier)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := notifier.SessionEvents(ctx)
	if err != nil {
		cancel()
		s.logger.Warn("subscribe to session events failed",
			"provider", s.backend.Name(), "error", err)
		return
	}

	s.cancelWatch = cancel
	s.watchDone = make(chan struct{})
	go s.consumeEvents(events, s.watchDone)
}

// consumeEvents translates push events into the same transitions direct
// calls produce, so consumers cannot distinguish the two.
func (s *IdentityService) consumeEvents(events <-chan domainauth.SessionEvent, done chan<- struct{}) {
	defer close(done)
	ctx := context.Background()

	for ev := range events {
		switch ev.Type {
		case domainauth.SessionSignedOut:
			s.mu.Lock()
			if err := s.sessions.SetSession(ctx, ""); err != nil {
				s.logger.Warn("clear session on signed-out event failed", "error", err)
			}
			s.state.Dispatch(appstate.LogoutAction{})
			s.mu.Unlock()

		case domainauth.SessionSignedIn:
			if ev.Credential == nil {
				continue
			}
			s.mu.Lock()
			if err := s.sessions.SetSession(ctx, ev.Credential.Token); err != nil {
				s.logger.Warn("persist session on signed-in event failed", "error", err)
				s.mu.Unlock()
				continue
			}
			s.state.Dispatch(appstate.LoginAction{User: ev.Credential.Profile})
			s.mu.Unlock()
		}
	}
}

func (s *IdentityService) count(name string, tags map[string]string) {
	if s.metrics == nil {
		return
	}
	if tags == nil {
		tags = map[string]string{}
	}
	tags["backend"] = s.backend.Name()
	s.metrics.Count(name, 1, tags)
}

func (s *IdentityService) timing(name string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Timing(name, d, map[string]string{"backend": s.backend.Name()})
}
