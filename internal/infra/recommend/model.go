package recommend

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"toolscout/internal/domain"
)

// NewChatModel creates the chat model from configuration. A missing API
// credential returns ErrMissingCredential so the caller can decide whether
// to fail startup or run in short-circuit mode.
func NewChatModel(ctx context.Context, cfg domain.ModelConfig) (model.ToolCallingChatModel, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envVar := strings.TrimSpace(cfg.APIKeyEnvVar)
		if envVar == "" {
			return nil, fmt.Errorf("%w: set model.apiKey or model.apiKeyEnvVar", domain.ErrMissingCredential)
		}
		apiKey = strings.TrimSpace(os.Getenv(envVar))
		if apiKey == "" {
			return nil, fmt.Errorf("%w: environment variable %s is empty", domain.ErrMissingCredential, envVar)
		}
	}

	switch cfg.Provider {
	case "openai", "":
		modelCfg := &openai.ChatModelConfig{
			Model:  cfg.Model,
			APIKey: apiKey,
		}
		if cfg.BaseURL != "" {
			modelCfg.BaseURL = cfg.BaseURL
		}
		return openai.NewChatModel(ctx, modelCfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
