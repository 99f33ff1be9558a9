package domain

import "time"

const (
	DefaultListenAddress              = "127.0.0.1:8080"
	DefaultObservabilityListenAddress = "127.0.0.1:9090"
	DefaultCatalogTimeoutSeconds      = 15
	DefaultRequestTimeoutSeconds      = 45
	DefaultModelProvider              = "openai"
	DefaultModelName                  = "gpt-4o-mini"
	DefaultAPIKeyEnvVar               = "OPENAI_API_KEY"
)

// Config is the normalized service configuration.
type Config struct {
	ListenAddress string
	Catalog       CatalogSourceConfig
	Model         ModelConfig
	Recommender   RecommenderConfig
	Observability ObservabilityConfig
}

// CatalogSourceConfig locates the remotely hosted tool catalog.
type CatalogSourceConfig struct {
	URL            string
	TimeoutSeconds int
}

// FetchTimeout returns the catalog fetch budget.
func (c CatalogSourceConfig) FetchTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ModelConfig parameterizes the hosted language model call. APIKey takes
// precedence; when empty the key is read from APIKeyEnvVar at startup.
type ModelConfig struct {
	Provider     string
	Model        string
	APIKey       string
	APIKeyEnvVar string
	BaseURL      string
}

// RecommenderConfig carries the runtime-tunable recommendation settings.
type RecommenderConfig struct {
	RelevanceThreshold    float64
	RequestTimeoutSeconds int
}

// RequestTimeout returns the per-request wall-clock budget.
func (c RecommenderConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ObservabilityConfig configures the metrics/health endpoint.
type ObservabilityConfig struct {
	ListenAddress string
	EnableMetrics bool
}
