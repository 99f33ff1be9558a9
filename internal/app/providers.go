package app

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolscout/internal/domain"
	"toolscout/internal/infra/catalog"
	"toolscout/internal/infra/config"
	"toolscout/internal/infra/httpapi"
	"toolscout/internal/infra/recommend"
	"toolscout/internal/infra/telemetry"
)

func NewConfigProvider(ctx context.Context, cfg ServeConfig, logger *zap.Logger) (*config.Provider, error) {
	return config.NewProvider(ctx, cfg.ConfigPath, logger)
}

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewFetcher(provider *config.Provider, logger *zap.Logger) *catalog.HTTPFetcher {
	return catalog.NewHTTPFetcher(provider, logger)
}

func NewNormalizer(logger *zap.Logger) *catalog.Normalizer {
	return catalog.NewNormalizer(logger)
}

// NewChatModel builds the configured chat model. A missing credential is not
// fatal at startup; the engine reports it per request instead.
func NewChatModel(ctx context.Context, provider *config.Provider, logger *zap.Logger) (model.ToolCallingChatModel, error) {
	chatModel, err := recommend.NewChatModel(ctx, provider.ModelSettings())
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			logger.Warn("model credential not configured, recommendations will be unavailable", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return chatModel, nil
}

func NewEngine(
	fetcher *catalog.HTTPFetcher,
	normalizer *catalog.Normalizer,
	chatModel model.ToolCallingChatModel,
	provider *config.Provider,
	metrics domain.Metrics,
	logger *zap.Logger,
) *recommend.Engine {
	return recommend.NewEngine(fetcher, normalizer, chatModel, provider, metrics, logger)
}

func NewAPIServer(provider *config.Provider, engine *recommend.Engine, logger *zap.Logger) *httpapi.Server {
	return httpapi.NewServer(provider.Current().ListenAddress, engine, provider, logger)
}
