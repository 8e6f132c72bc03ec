package selfhosted

// Package selfhosted adapts the application's own password store: users
// live in PostgreSQL, sessions are stateless signed bearer tokens, and
// session changes are pushed to all consumers over Redis Pub/Sub.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
	"github.com/quartzlabs/crm-ui-api/internal/validation"
)

// ProviderName tags normalized errors from this adapter.
const ProviderName = "selfhosted"

// badCredentialsMessage is deliberately identical for unknown email and
// wrong password.
const badCredentialsMessage = "Incorrect email or password."

// Config holds construction-time configuration for the adapter.
type Config struct {
	DB    *sql.DB
	Redis redis.UniversalClient
	// TokenSecret signs session tokens; required.
	TokenSecret string
	// TokenTTL bounds session lifetime. Defaults to 24h when zero.
	TokenTTL time.Duration
	// ResetTTL bounds recovery-token lifetime. Defaults to 1h when zero.
	ResetTTL time.Duration
	Logger   *slog.Logger
}

// Provider implements ports.IdentityBackend plus ports.SessionNotifier
// against the self-hosted password store.
type Provider struct {
	users    *UserStore
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
	events   *notifier
	logger   *slog.Logger
}

var (
	_ ports.IdentityBackend = (*Provider)(nil)
	_ ports.SessionNotifier = (*Provider)(nil)
)

// NewProvider validates config and constructs the adapter.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.DB == nil {
		return nil, errors.New("selfhosted: database handle is required")
	}
	if cfg.Redis == nil {
		return nil, errors.New("selfhosted: redis client is required")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("selfhosted: token secret is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	resetTTL := cfg.ResetTTL
	if resetTTL == 0 {
		resetTTL = time.Hour
	}
	return &Provider{
		users:    NewUserStore(cfg.DB),
		secret:   []byte(cfg.TokenSecret),
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
		events:   &notifier{client: cfg.Redis, logger: logger},
		logger:   logger,
	}, nil
}

// Name identifies the backend in normalized errors.
func (p *Provider) Name() string { return ProviderName }

// Authenticate checks the password hash and issues a signed session token.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (domainauth.Credential, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return domainauth.Credential{}, apperrors.Unauthorized(badCredentialsMessage)
		}
		return domainauth.Credential{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domainauth.Credential{}, apperrors.Unauthorized(badCredentialsMessage)
	}

	token, err := issueToken(p.secret, user.ID, user.Email, p.tokenTTL)
	if err != nil {
		return domainauth.Credential{}, err
	}

	cred := domainauth.Credential{Token: token, Profile: user.Profile()}
	p.events.publish(ctx, domainauth.SessionEvent{Type: domainauth.SessionSignedIn, Credential: &cred})
	return cred, nil
}

// SignUp creates an account. Accounts are immediately usable; there is no
// confirmation step on the self-hosted store.
func (p *Provider) SignUp(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error) {
	if !validation.IsValidEmail(in.Email) {
		return ports.RegisterOutcome{}, apperrors.ValidationField("email", "A valid email address is required.")
	}
	if !validation.IsValidPassword(in.Password) {
		return ports.RegisterOutcome{}, apperrors.ValidationField("password", "Password must be at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return ports.RegisterOutcome{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domainauth.DefaultRole,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeConflict) {
			return ports.RegisterOutcome{}, apperrors.Conflict("An account with this email already exists.")
		}
		return ports.RegisterOutcome{}, fmt.Errorf("create user: %w", err)
	}
	return ports.RegisterOutcome{PendingConfirmation: false}, nil
}

// SignOut announces the sign-out to all consumers. Tokens are stateless,
// so there is nothing to revoke server-side; expiry bounds the exposure.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if _, err := parseToken(p.secret, token); err != nil {
		// The token was already unusable; treat as signed out.
		return nil
	}
	p.events.publish(ctx, domainauth.SessionEvent{Type: domainauth.SessionSignedOut})
	return nil
}

// SendPasswordReset records a recovery token for the email. Delivery is
// out of band; an unknown email is reported as not found.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	token := uuid.NewString()
	user, err := p.users.SetResetToken(ctx, email, token, time.Now().Add(p.resetTTL))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return apperrors.NotFound("No account exists for this email address.")
		}
		return fmt.Errorf("record reset token: %w", err)
	}
	p.logger.Info("password reset issued", "user_id", user.ID)
	return nil
}

// UpdateProfile applies a partial name update for the token's user.
func (p *Provider) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (domainauth.Profile, error) {
	userID, err := parseToken(p.secret, token)
	if err != nil {
		return domainauth.Profile{}, apperrors.Unauthorized("Session is no longer valid.")
	}
	user, err := p.users.UpdateNames(ctx, userID, in.FirstName, in.LastName, in.Name)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return user.Profile(), nil
}

// RestoreSession verifies a stored token and reloads its user.
func (p *Provider) RestoreSession(ctx context.Context, token string) (domainauth.Credential, error) {
	userID, err := parseToken(p.secret, token)
	if err != nil {
		return domainauth.Credential{}, err
	}
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("load user: %w", err)
	}
	return domainauth.Credential{Token: token, Profile: user.Profile()}, nil
}

// SessionEvents subscribes to the Pub/Sub channel for the life of ctx.
func (p *Provider) SessionEvents(ctx context.Context) (<-chan domainauth.SessionEvent, error) {
	return p.events.subscribe(ctx)
}
