package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quartzlabs/crm-ui-api/config"
	"github.com/quartzlabs/crm-ui-api/internal/adapters/cognito"
	"github.com/quartzlabs/crm-ui-api/internal/adapters/fallback"
	"github.com/quartzlabs/crm-ui-api/internal/adapters/hostedauth"
	"github.com/quartzlabs/crm-ui-api/internal/adapters/keyval"
	"github.com/quartzlabs/crm-ui-api/internal/adapters/selfhosted"
	"github.com/quartzlabs/crm-ui-api/internal/appstate"
	"github.com/quartzlabs/crm-ui-api/internal/observability/statsd"
	"github.com/quartzlabs/crm-ui-api/internal/ports"
	"github.com/quartzlabs/crm-ui-api/internal/service"
	"github.com/quartzlabs/crm-ui-api/internal/session"
)

// IdentityDeps contains infrastructure for BuildIdentity.
type IdentityDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildIdentity is the composition root for the identity layer: it wires
// durable storage, the session store, the state store, and exactly one
// backend adapter selected by configuration.
func BuildIdentity(deps IdentityDeps) (*service.IdentityService, error) {
	if deps.RedisClient == nil {
		return nil, fmt.Errorf("identity layer requires a redis client")
	}

	kv := keyval.NewRedisStoreWithPrefix(deps.RedisClient, deps.Config.Redis.KeyPrefix)
	sessions := session.NewStore(kv, deps.Logger)

	backend, err := buildBackend(deps, sessions)
	if err != nil {
		return nil, err
	}

	return service.NewIdentityService(service.IdentityOptions{
		Backend:  backend,
		Sessions: sessions,
		State:    appstate.NewStore(),
		Metrics:  deps.Metrics,
		Logger:   deps.Logger,
	}), nil
}

func buildBackend(deps IdentityDeps, sessions *session.Store) (ports.IdentityBackend, error) {
	authCfg := deps.Config.Auth

	switch authCfg.Backend {
	case config.BackendCognito:
		return cognito.NewProvider(cognito.Config{
			Endpoint: authCfg.Cognito.Endpoint,
			ClientID: authCfg.Cognito.ClientID,
			// The shared client carries the session bearer header on
			// every request once a token is live.
			HTTPClient: sessions.Client(),
			Logger:     deps.Logger,
		})

	case config.BackendOIDC:
		return hostedauth.NewProvider(hostedauth.Config{
			Issuer:       authCfg.OIDC.Issuer,
			ClientID:     authCfg.OIDC.ClientID,
			ClientSecret: authCfg.OIDC.ClientSecret,
			RedirectURL:  authCfg.OIDC.RedirectURL,
			Scope:        authCfg.OIDC.Scope,
			Connection:   authCfg.OIDC.Connection,
			Logger:       deps.Logger,
		})

	case config.BackendSelfHosted:
		if deps.DB == nil {
			return nil, fmt.Errorf("backend %q requires a database connection", authCfg.Backend)
		}
		return selfhosted.NewProvider(selfhosted.Config{
			DB:          deps.DB,
			Redis:       deps.RedisClient,
			TokenSecret: authCfg.SelfHosted.TokenSecret,
			TokenTTL:    authCfg.SelfHosted.TokenTTL,
			ResetTTL:    authCfg.SelfHosted.ResetTTL,
			Logger:      deps.Logger,
		})

	case config.BackendFallback:
		claims, err := authCfg.Fallback.ParseClaims()
		if err != nil {
			return nil, err
		}
		return fallback.NewProvider(fallback.Config{
			Email:    authCfg.Fallback.Email,
			Password: authCfg.Fallback.Password,
			Claims:   claims,
			Logger:   deps.Logger,
		})

	default:
		return nil, fmt.Errorf("unknown auth backend %q", authCfg.Backend)
	}
}
