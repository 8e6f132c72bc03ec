package cognito

// Package cognito adapts a managed-identity service speaking the
// target-operation JSON protocol (InitiateAuth, GetUser, SignUp, ...).
// Identity and profile attributes come from two separate calls; the
// attribute list is normalized into the canonical profile here.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
	"github.com/quartzlabs/crm-ui-api/internal/validation"
)

// ProviderName tags normalized errors from this adapter.
const ProviderName = "cognito"

const (
	targetPrefix = "AWSCognitoIdentityProviderService."
	contentType  = "application/x-amz-json-1.1"
)

// Config holds construction-time configuration for the adapter.
type Config struct {
	// Endpoint is the identity service URL, e.g. https://cognito-idp.us-east-1.amazonaws.com/.
	Endpoint string
	// ClientID is the user-pool app client identifier.
	ClientID string
	// HTTPClient is the shared network client. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Provider implements ports.IdentityBackend against the managed-identity
// service.
type Provider struct {
	endpoint string
	clientID string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.IdentityBackend = (*Provider)(nil)

// NewProvider validates config and constructs the adapter.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("cognito: endpoint is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("cognito: client ID is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		endpoint: cfg.Endpoint,
		clientID: cfg.ClientID,
		client:   client,
		logger:   logger,
	}, nil
}

// Name identifies the backend in normalized errors.
func (p *Provider) Name() string { return ProviderName }

// Authenticate runs the USER_PASSWORD_AUTH flow, then fetches user
// attributes with the issued access token.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (domainauth.Credential, error) {
	var out initiateAuthOutput
	in := initiateAuthInput{
		AuthFlow: "USER_PASSWORD_AUTH",
		ClientID: p.clientID,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}
	if err := p.call(ctx, "InitiateAuth", in, &out); err != nil {
		return domainauth.Credential{}, err
	}
	token := out.AuthenticationResult.AccessToken
	if token == "" {
		return domainauth.Credential{}, errors.New("no access token in authentication result")
	}
	return p.credentialForToken(ctx, token)
}

// SignUp creates an account. The service requires an out-of-band
// confirmation step before the account is usable; the outcome reports it
// as pending until the service says otherwise.
func (p *Provider) SignUp(ctx context.Context, in ports.RegisterInput) (ports.RegisterOutcome, error) {
	if !validation.IsValidEmail(in.Email) {
		return ports.RegisterOutcome{}, apperrors.ValidationField("email", "A valid email address is required.")
	}
	if !validation.IsValidPassword(in.Password) {
		return ports.RegisterOutcome{}, apperrors.ValidationField("password", "Password must be at least 6 characters.")
	}

	var out signUpOutput
	req := signUpInput{
		ClientID: p.clientID,
		Username: in.Email,
		Password: in.Password,
		UserAttributes: []attribute{
			{Name: "email", Value: in.Email},
			{Name: "given_name", Value: in.FirstName},
			{Name: "family_name", Value: in.LastName},
		},
	}
	if err := p.call(ctx, "SignUp", req, &out); err != nil {
		return ports.RegisterOutcome{}, err
	}
	return ports.RegisterOutcome{PendingConfirmation: !out.UserConfirmed}, nil
}

// SignOut revokes every session issued for the token's user.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	return p.call(ctx, "GlobalSignOut", accessTokenInput{AccessToken: token}, &struct{}{})
}

// SendPasswordReset triggers the service's recovery-code flow.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	in := forgotPasswordInput{ClientID: p.clientID, Username: email}
	return p.call(ctx, "ForgotPassword", in, &struct{}{})
}

// UpdateProfile writes name attributes and re-reads the user.
func (p *Provider) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (domainauth.Profile, error) {
	attrs := make([]attribute, 0, 3)
	if in.FirstName != "" {
		attrs = append(attrs, attribute{Name: "given_name", Value: in.FirstName})
	}
	if in.LastName != "" {
		attrs = append(attrs, attribute{Name: "family_name", Value: in.LastName})
	}
	if in.Name != "" {
		attrs = append(attrs, attribute{Name: "name", Value: in.Name})
	}
	if len(attrs) > 0 {
		req := updateAttributesInput{AccessToken: token, UserAttributes: attrs}
		if err := p.call(ctx, "UpdateUserAttributes", req, &struct{}{}); err != nil {
			return domainauth.Profile{}, err
		}
	}
	cred, err := p.credentialForToken(ctx, token)
	if err != nil {
		return domainauth.Profile{}, err
	}
	return cred.Profile, nil
}

// RestoreSession validates a stored access token by fetching the user it
// belongs to.
func (p *Provider) RestoreSession(ctx context.Context, token string) (domainauth.Credential, error) {
	return p.credentialForToken(ctx, token)
}

func (p *Provider) credentialForToken(ctx context.Context, token string) (domainauth.Credential, error) {
	var user getUserOutput
	if err := p.call(ctx, "GetUser", accessTokenInput{AccessToken: token}, &user); err != nil {
		return domainauth.Credential{}, err
	}
	return domainauth.Credential{
		Token:   token,
		Profile: normalizeUser(user.Username, user.UserAttributes),
	}, nil
}

// normalizeUser maps the service's username plus attribute list into the
// canonical profile. Missing attributes degrade to empty strings.
func normalizeUser(username string, attrs []attribute) domainauth.Profile {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return domainauth.BuildProfile(domainauth.ProfileFields{
		ID:        domainauth.FirstNonEmpty(m["sub"], username),
		Email:     m["email"],
		FirstName: m["given_name"],
		LastName:  m["family_name"],
		Name:      m["name"],
		Role:      m["custom:role"],
	})
}

// wire types

type attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type initiateAuthInput struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type initiateAuthOutput struct {
	AuthenticationResult struct {
		AccessToken  string `json:"AccessToken"`
		RefreshToken string `json:"RefreshToken"`
		ExpiresIn    int    `json:"ExpiresIn"`
	} `json:"AuthenticationResult"`
}

type signUpInput struct {
	ClientID       string      `json:"ClientId"`
	Username       string      `json:"Username"`
	Password       string      `json:"Password"`
	UserAttributes []attribute `json:"UserAttributes"`
}

type signUpOutput struct {
	UserConfirmed bool   `json:"UserConfirmed"`
	UserSub       string `json:"UserSub"`
}

type accessTokenInput struct {
	AccessToken string `json:"AccessToken"`
}

type forgotPasswordInput struct {
	ClientID string `json:"ClientId"`
	Username string `json:"Username"`
}

type updateAttributesInput struct {
	AccessToken    string      `json:"AccessToken"`
	UserAttributes []attribute `json:"UserAttributes"`
}

type getUserOutput struct {
	Username       string      `json:"Username"`
	UserAttributes []attribute `json:"UserAttributes"`
}

// apiError is the service's error body. Error returns the bare message so
// normalization surfaces it verbatim to the UI.
type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Type
}

// call issues one target-operation request and decodes the response or
// error body.
func (p *Provider) call(ctx context.Context, operation string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Target", targetPrefix+operation)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger.Warn("close response body failed", "operation", operation, "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", operation, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var svcErr apiError
		if jsonErr := json.Unmarshal(data, &svcErr); jsonErr == nil && (svcErr.Message != "" || svcErr.Type != "") {
			return &svcErr
		}
		return fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}
