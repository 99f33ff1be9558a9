package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"toolscout/internal/domain"
	"toolscout/internal/infra/catalog"
)

// SettingsProvider supplies the current recommendation settings and model
// identity, so threshold changes apply without restarting.
type SettingsProvider interface {
	RecommenderSettings() domain.RecommenderConfig
	ModelSettings() domain.ModelConfig
}

// Engine turns a free-text workflow query into a ranked list of catalog
// tools. Every request fetches the catalog fresh and performs exactly one
// model call; there is no caching and no retry.
type Engine struct {
	fetcher    catalog.Fetcher
	normalizer *catalog.Normalizer
	model      model.ToolCallingChatModel
	settings   SettingsProvider
	metrics    domain.Metrics
	logger     *zap.Logger
}

// NewEngine creates a recommendation engine. chatModel may be nil when the
// API credential is absent at startup; every request then short-circuits
// with ErrMissingCredential instead of attempting a model call.
func NewEngine(
	fetcher catalog.Fetcher,
	normalizer *catalog.Normalizer,
	chatModel model.ToolCallingChatModel,
	settings SettingsProvider,
	metrics domain.Metrics,
	logger *zap.Logger,
) *Engine {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fetcher:    fetcher,
		normalizer: normalizer,
		model:      chatModel,
		settings:   settings,
		metrics:    metrics,
		logger:     logger.Named("recommend"),
	}
}

// Recommend runs the full pipeline: precondition checks, catalog fetch,
// prompt construction, model call, validation, ranking and the relevance
// gate.
func (e *Engine) Recommend(ctx context.Context, query string) (domain.RecommendationResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.RecommendationResult{}, domain.ErrInvalidQuery
	}
	if e.model == nil {
		return domain.RecommendationResult{}, domain.ErrMissingCredential
	}

	cat, err := e.loadCatalog(ctx)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	raw, err := e.generate(ctx, trimmed, cat)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	recommendations := e.validate(raw, cat)
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].RelevanceScore > recommendations[j].RelevanceScore
	})

	threshold := e.settings.RecommenderSettings().RelevanceThreshold
	if len(recommendations) == 0 || recommendations[0].RelevanceScore < threshold {
		e.logger.Info("no recommendation cleared the relevance gate",
			zap.Int("survivors", len(recommendations)),
			zap.Float64("threshold", threshold),
		)
		return domain.RecommendationResult{Message: domain.NoConfidentMatchMessage}, nil
	}

	return domain.RecommendationResult{Recommendations: recommendations}, nil
}

// Catalog fetches and normalizes the live catalog. The API layer uses it to
// report the tool count independently of recommendation requests.
func (e *Engine) Catalog(ctx context.Context) (domain.Catalog, error) {
	return e.loadCatalog(ctx)
}

func (e *Engine) loadCatalog(ctx context.Context) (domain.Catalog, error) {
	started := time.Now()
	raw, err := e.fetcher.Fetch(ctx)
	e.metrics.ObserveCatalogFetch(time.Since(started), err)
	if err != nil {
		return domain.Catalog{}, err
	}

	cat, err := e.normalizer.Normalize(raw)
	if err != nil {
		return domain.Catalog{}, err
	}
	e.metrics.SetCatalogToolCount(cat.Len())
	return cat, nil
}

func (e *Engine) generate(ctx context.Context, query string, cat domain.Catalog) ([]rawRecommendation, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(query, cat)),
	}

	modelCfg := e.settings.ModelSettings()
	started := time.Now()
	response, err := e.model.Generate(ctx, messages)
	e.metrics.ObserveRecommendation(modelCfg.Provider, modelCfg.Model, time.Since(started), err)
	if err != nil {
		return nil, modelError(fmt.Sprintf("generate: %v", err))
	}
	if response == nil {
		return nil, modelError("model returned no message")
	}
	e.observeTokenUsage(modelCfg, response)

	raw, err := parseResponse(response.Content)
	if err != nil {
		return nil, modelError(err.Error())
	}
	return raw, nil
}

// validate drops entries the model invented. Individual drops are
// diagnostics, never request failures.
func (e *Engine) validate(raw []rawRecommendation, cat domain.Catalog) []domain.Recommendation {
	recommendations := make([]domain.Recommendation, 0, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry.ToolName)
		if name == "" || strings.EqualFold(name, "undefined") {
			e.logger.Warn("dropping recommendation with unusable tool name", zap.String("toolName", entry.ToolName))
			e.metrics.AddDroppedRecommendations(domain.DropReasonEmptyName, 1)
			continue
		}
		tool, ok := cat.Lookup(name)
		if !ok {
			e.logger.Warn("dropping recommendation for tool not in catalog", zap.String("toolName", name))
			e.metrics.AddDroppedRecommendations(domain.DropReasonUnknownTool, 1)
			continue
		}
		recommendations = append(recommendations, domain.Recommendation{
			Tool:           tool,
			RelevanceScore: entry.RelevanceScore,
			Reasoning:      entry.Reasoning,
		})
	}
	return recommendations
}

func modelError(msg string) error {
	return domain.E(domain.CodeUnavailable, "recommend.generate", msg, domain.ErrAIProcessingFailed)
}

func (e *Engine) observeTokenUsage(cfg domain.ModelConfig, response *schema.Message) {
	if response.ResponseMeta == nil || response.ResponseMeta.Usage == nil {
		return
	}
	tokens := response.ResponseMeta.Usage.TotalTokens
	if tokens <= 0 {
		return
	}
	e.metrics.ObserveRecommendationTokens(cfg.Provider, cfg.Model, tokens)
}
