package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quartzlabs/crm-ui-api/config"
	httpx "github.com/quartzlabs/crm-ui-api/internal/http"
	"github.com/quartzlabs/crm-ui-api/internal/service"
)

// RunHTTP serves the identity API until ctx is canceled or a signal
// arrives, then shuts down gracefully within the configured timeout.
func RunHTTP(ctx context.Context, cfg config.HTTPConfig, identity *service.IdentityService, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := httpx.NewRouter(httpx.RouterConfig{
		Identity:     identity,
		CookieDomain: cfg.CookieDomain,
		Logger:       logger,
	})
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
