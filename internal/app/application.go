package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolscout/internal/infra/config"
	"toolscout/internal/infra/httpapi"
	"toolscout/internal/infra/telemetry"
)

// Application bundles the long-running parts of the service: the API
// server, the observability endpoint and the config watcher.
type Application struct {
	logger    *zap.Logger
	provider  *config.Provider
	registry  *prometheus.Registry
	apiServer *httpapi.Server
}

// ApplicationOptions captures dependencies for Application.
type ApplicationOptions struct {
	Logger    *zap.Logger
	Provider  *config.Provider
	Registry  *prometheus.Registry
	APIServer *httpapi.Server
}

func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		logger:    logger,
		provider:  opts.Provider,
		registry:  opts.Registry,
		apiServer: opts.APIServer,
	}
}

// Run starts all services and blocks until ctx is canceled or one of them
// fails.
func (a *Application) Run(ctx context.Context) error {
	cfg := a.provider.Current()
	a.logger.Info("configuration loaded",
		zap.String("listen", cfg.ListenAddress),
		zap.String("catalogURL", cfg.Catalog.URL),
		zap.String("model", cfg.Model.Model),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, 3)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	start("config watcher", a.provider.Watch)
	start("observability server", func(ctx context.Context) error {
		return telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
			Addr:          cfg.Observability.ListenAddress,
			EnableMetrics: cfg.Observability.EnableMetrics,
			Registry:      a.registry,
		}, a.logger)
	})
	start("api server", a.apiServer.Run)

	select {
	case err := <-errChan:
		cancel()
		wg.Wait()
		return err
	case <-ctx.Done():
		cancel()
		wg.Wait()
		return nil
	}
}
