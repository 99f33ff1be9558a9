package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listenAddress", domain.DefaultListenAddress)
	v.SetDefault("catalog.timeoutSeconds", domain.DefaultCatalogTimeoutSeconds)
	v.SetDefault("model.provider", domain.DefaultModelProvider)
	v.SetDefault("model.model", domain.DefaultModelName)
	v.SetDefault("model.apiKeyEnvVar", domain.DefaultAPIKeyEnvVar)
	v.SetDefault("recommender.relevanceThreshold", domain.DefaultRelevanceThreshold)
	v.SetDefault("recommender.requestTimeoutSeconds", domain.DefaultRequestTimeoutSeconds)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.enableMetrics", true)
}

type rawConfig struct {
	ListenAddress string                 `mapstructure:"listenAddress"`
	Catalog       rawCatalogSource       `mapstructure:"catalog"`
	Model         rawModelConfig         `mapstructure:"model"`
	Recommender   rawRecommenderConfig   `mapstructure:"recommender"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
}

type rawCatalogSource struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type rawModelConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"apiKey"`
	APIKeyEnvVar string `mapstructure:"apiKeyEnvVar"`
	BaseURL      string `mapstructure:"baseURL"`
}

type rawRecommenderConfig struct {
	RelevanceThreshold    float64 `mapstructure:"relevanceThreshold"`
	RequestTimeoutSeconds int     `mapstructure:"requestTimeoutSeconds"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	EnableMetrics bool   `mapstructure:"enableMetrics"`
}

// Load reads, expands and validates the service configuration.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return domain.Config{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.Config{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg rawConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	normalized, errs := normalizeConfig(cfg)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return normalized, nil
}

func normalizeConfig(cfg rawConfig) (domain.Config, []string) {
	var errs []string

	listenAddress := strings.TrimSpace(cfg.ListenAddress)
	if listenAddress == "" {
		listenAddress = domain.DefaultListenAddress
	}

	catalogURL := strings.TrimSpace(cfg.Catalog.URL)
	if catalogURL == "" {
		errs = append(errs, "catalog.url is required")
	} else if !isHTTPURL(catalogURL) {
		errs = append(errs, "catalog.url must be a valid http(s) URL")
	}

	catalogTimeout := cfg.Catalog.TimeoutSeconds
	if catalogTimeout <= 0 {
		errs = append(errs, "catalog.timeoutSeconds must be > 0")
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	if provider == "" {
		provider = domain.DefaultModelProvider
	}
	if provider != "openai" {
		errs = append(errs, "model.provider must be openai")
	}

	modelName := strings.TrimSpace(cfg.Model.Model)
	if modelName == "" {
		errs = append(errs, "model.model is required")
	}

	threshold := cfg.Recommender.RelevanceThreshold
	if threshold < 0 || threshold > 1 {
		errs = append(errs, "recommender.relevanceThreshold must be between 0 and 1")
	}

	requestTimeout := cfg.Recommender.RequestTimeoutSeconds
	if requestTimeout <= 0 {
		errs = append(errs, "recommender.requestTimeoutSeconds must be > 0")
	}

	observabilityAddr := strings.TrimSpace(cfg.Observability.ListenAddress)
	if observabilityAddr == "" {
		observabilityAddr = domain.DefaultObservabilityListenAddress
	}

	return domain.Config{
		ListenAddress: listenAddress,
		Catalog: domain.CatalogSourceConfig{
			URL:            catalogURL,
			TimeoutSeconds: catalogTimeout,
		},
		Model: domain.ModelConfig{
			Provider:     provider,
			Model:        modelName,
			APIKey:       strings.TrimSpace(cfg.Model.APIKey),
			APIKeyEnvVar: strings.TrimSpace(cfg.Model.APIKeyEnvVar),
			BaseURL:      strings.TrimSpace(cfg.Model.BaseURL),
		},
		Recommender: domain.RecommenderConfig{
			RelevanceThreshold:    threshold,
			RequestTimeoutSeconds: requestTimeout,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress: observabilityAddr,
			EnableMetrics: cfg.Observability.EnableMetrics,
		},
	}, errs
}

func isHTTPURL(raw string) bool {
	if strings.Contains(raw, " ") {
		return false
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
