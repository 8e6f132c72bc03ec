package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/quartzlabs/crm-ui-api/config"
	"github.com/quartzlabs/crm-ui-api/internal/bootstrap"
	"github.com/quartzlabs/crm-ui-api/internal/migrate"
	"github.com/quartzlabs/crm-ui-api/internal/observability/statsd"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting crm-ui-api",
		"auth_backend", cfg.Auth.Backend,
		"http_addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if db != nil {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close metrics client failed", "error", cerr)
		}
	}()

	identity, err := bootstrap.BuildIdentity(bootstrap.IdentityDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build identity layer: %w", err)
	}
	defer func() {
		if cerr := identity.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close identity service failed", "error", cerr)
		}
	}()

	// Restore any persisted session before serving traffic.
	identity.Initialize(ctx)

	return bootstrap.RunHTTP(ctx, cfg.HTTP, identity, logger)
}

// initInfrastructure connects shared dependencies. The database is only
// needed by the self-hosted backend; the other backends keep their user
// stores remotely.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, *redis.Client, error) {
	var db *sql.DB
	if cfg.Auth.Backend == config.BackendSelfHosted {
		var err error
		db, err = bootstrap.ConnectDB(cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err = migrate.Run(ctx, db, logger); err != nil {
				closeDB(ctx, db, logger)
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis)
	if err != nil {
		closeDB(ctx, db, logger)
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return db, redisClient, nil
}

func closeDB(ctx context.Context, db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if cerr := db.Close(); cerr != nil {
		logger.ErrorContext(ctx, "close database failed", "error", cerr)
	}
}
