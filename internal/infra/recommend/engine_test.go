package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolscout/internal/domain"
	"toolscout/internal/infra/catalog"
)

// mockChatModel implements model.ToolCallingChatModel for testing.
type mockChatModel struct {
	generateFunc func(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, messages)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m *mockChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func (m *mockChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// mockFetcher implements catalog.Fetcher for testing.
type mockFetcher struct {
	fetchFunc func(ctx context.Context) ([]byte, error)
	calls     int
}

func (m *mockFetcher) Fetch(ctx context.Context) ([]byte, error) {
	m.calls++
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

// staticSettings implements SettingsProvider for testing.
type staticSettings struct {
	recommender domain.RecommenderConfig
	model       domain.ModelConfig
}

func (s staticSettings) RecommenderSettings() domain.RecommenderConfig {
	return s.recommender
}

func (s staticSettings) ModelSettings() domain.ModelConfig {
	return s.model
}

// countingMetrics implements domain.Metrics for testing.
type countingMetrics struct {
	dropped map[domain.DropReason]int
	tokens  int
}

func (c *countingMetrics) ObserveRecommendation(string, string, time.Duration, error) {}
func (c *countingMetrics) ObserveRecommendationTokens(_ string, _ string, tokens int) {
	c.tokens += tokens
}
func (c *countingMetrics) ObserveCatalogFetch(time.Duration, error) {}
func (c *countingMetrics) AddDroppedRecommendations(reason domain.DropReason, count int) {
	if c.dropped == nil {
		c.dropped = make(map[domain.DropReason]int)
	}
	c.dropped[reason] += count
}
func (c *countingMetrics) SetCatalogToolCount(int) {}

const testCatalogJSON = `{"tools": [
	{"Name Of Tool": "EmailCheck Pro", "description": "Verify email addresses before they enter your CRM"},
	{"Name Of Tool": "SheetSync", "description": "Two-way spreadsheet synchronization"},
	{"Name Of Tool": "FormRelay", "description": "Route web form submissions to any backend"},
	{"Name Of Tool": "LeadPolish", "description": "Enrich and deduplicate lead records"}
]}`

func newTestEngine(t *testing.T, chatModel model.ToolCallingChatModel, threshold float64) (*Engine, *mockFetcher, *countingMetrics) {
	t.Helper()
	fetcher := &mockFetcher{
		fetchFunc: func(context.Context) ([]byte, error) {
			return []byte(testCatalogJSON), nil
		},
	}
	metrics := &countingMetrics{}
	engine := NewEngine(
		fetcher,
		catalog.NewNormalizer(zap.NewNop()),
		chatModel,
		staticSettings{
			recommender: domain.RecommenderConfig{RelevanceThreshold: threshold, RequestTimeoutSeconds: 45},
			model:       domain.ModelConfig{Provider: "openai", Model: "gpt-4o-mini"},
		},
		metrics,
		zap.NewNop(),
	)
	return engine, fetcher, metrics
}

func modelResponding(content string) *mockChatModel {
	return &mockChatModel{
		generateFunc: func(context.Context, []*schema.Message) (*schema.Message, error) {
			return &schema.Message{Role: schema.Assistant, Content: content}, nil
		},
	}
}

func TestRecommend_EmptyQuery(t *testing.T) {
	engine, fetcher, _ := newTestEngine(t, modelResponding(`[]`), 0.3)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := engine.Recommend(context.Background(), query)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	}
	// Rejected before any catalog fetch.
	assert.Equal(t, 0, fetcher.calls)
}

func TestRecommend_NilModel(t *testing.T) {
	engine, fetcher, _ := newTestEngine(t, nil, 0.3)

	_, err := engine.Recommend(context.Background(), "verify emails")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRecommend_HappyPath(t *testing.T) {
	response := `[
		{"tool_name": "EmailCheck Pro", "relevance_score": 0.92, "reasoning": "Purpose-built email verification"},
		{"tool_name": "LeadPolish", "relevance_score": 0.61, "reasoning": "Cleans lead records after capture"},
		{"tool_name": "FormRelay", "relevance_score": 0.44, "reasoning": "Captures the form submissions upstream"}
	]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "I need to verify email addresses before importing leads")
	require.NoError(t, err)
	require.True(t, result.Confident())
	assert.Empty(t, result.Message)

	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "EmailCheck Pro", result.Recommendations[0].Tool.Name)
	assert.Equal(t, 0.92, result.Recommendations[0].RelevanceScore)
	assert.Equal(t, "Purpose-built email verification", result.Recommendations[0].Reasoning)
	// Catalog record carries the normalized defaults through.
	assert.Equal(t, domain.DefaultToolCategory, result.Recommendations[0].Tool.Category)
}

func TestRecommend_SortsByRelevanceDescending(t *testing.T) {
	response := `[
		{"tool_name": "FormRelay", "relevance_score": 0.44, "reasoning": "c"},
		{"tool_name": "EmailCheck Pro", "relevance_score": 0.92, "reasoning": "a"},
		{"tool_name": "LeadPolish", "relevance_score": 0.61, "reasoning": "b"}
	]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "clean up my lead pipeline")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "EmailCheck Pro", result.Recommendations[0].Tool.Name)
	assert.Equal(t, "LeadPolish", result.Recommendations[1].Tool.Name)
	assert.Equal(t, "FormRelay", result.Recommendations[2].Tool.Name)
}

func TestRecommend_SortIsStableForEqualScores(t *testing.T) {
	response := `[
		{"tool_name": "SheetSync", "relevance_score": 0.5, "reasoning": "first"},
		{"tool_name": "FormRelay", "relevance_score": 0.5, "reasoning": "second"},
		{"tool_name": "LeadPolish", "relevance_score": 0.5, "reasoning": "third"}
	]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "move data around")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "SheetSync", result.Recommendations[0].Tool.Name)
	assert.Equal(t, "FormRelay", result.Recommendations[1].Tool.Name)
	assert.Equal(t, "LeadPolish", result.Recommendations[2].Tool.Name)
}

func TestRecommend_DropsHallucinatedTools(t *testing.T) {
	response := `[
		{"tool_name": "Totally Made Up Tool", "relevance_score": 0.99, "reasoning": "sounds perfect"},
		{"tool_name": "EmailCheck Pro", "relevance_score": 0.7, "reasoning": "real"}
	]`
	engine, _, metrics := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "verify emails")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "EmailCheck Pro", result.Recommendations[0].Tool.Name)
	assert.Equal(t, 1, metrics.dropped[domain.DropReasonUnknownTool])
}

func TestRecommend_DropsUnusableNames(t *testing.T) {
	response := `[
		{"tool_name": "", "relevance_score": 0.9, "reasoning": "empty"},
		{"tool_name": "undefined", "relevance_score": 0.9, "reasoning": "literal undefined"},
		{"tool_name": "  ", "relevance_score": 0.9, "reasoning": "blank"},
		{"tool_name": "SheetSync", "relevance_score": 0.8, "reasoning": "real"}
	]`
	engine, _, metrics := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "sync my sheets")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "SheetSync", result.Recommendations[0].Tool.Name)
	assert.Equal(t, 3, metrics.dropped[domain.DropReasonEmptyName])
}

func TestRecommend_AllEntriesDroppedYieldsMessage(t *testing.T) {
	response := `[
		{"tool_name": "Fake One", "relevance_score": 0.9, "reasoning": "x"},
		{"tool_name": "Fake Two", "relevance_score": 0.8, "reasoning": "y"}
	]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, result.Confident())
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, domain.NoConfidentMatchMessage, result.Message)
}

func TestRecommend_RelevanceGate(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		threshold float64
		confident bool
	}{
		{
			name:      "top score below threshold",
			response:  `[{"tool_name": "SheetSync", "relevance_score": 0.2, "reasoning": "weak"}]`,
			threshold: 0.3,
			confident: false,
		},
		{
			name:      "top score exactly at threshold",
			response:  `[{"tool_name": "SheetSync", "relevance_score": 0.3, "reasoning": "borderline"}]`,
			threshold: 0.3,
			confident: true,
		},
		{
			name:      "top score above threshold",
			response:  `[{"tool_name": "SheetSync", "relevance_score": 0.31, "reasoning": "ok"}]`,
			threshold: 0.3,
			confident: true,
		},
		{
			name:      "raised threshold rejects previously passing score",
			response:  `[{"tool_name": "SheetSync", "relevance_score": 0.5, "reasoning": "ok"}]`,
			threshold: 0.7,
			confident: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, _ := newTestEngine(t, modelResponding(tt.response), tt.threshold)

			result, err := engine.Recommend(context.Background(), "sync data")
			require.NoError(t, err)
			assert.Equal(t, tt.confident, result.Confident())
			if !tt.confident {
				assert.Equal(t, domain.NoConfidentMatchMessage, result.Message)
			}
		})
	}
}

func TestRecommend_MixedScoresReturnedInFull(t *testing.T) {
	// One entry clears the gate; sub-threshold entries ride along.
	response := `[
		{"tool_name": "EmailCheck Pro", "relevance_score": 0.8, "reasoning": "strong"},
		{"tool_name": "SheetSync", "relevance_score": 0.1, "reasoning": "weak"}
	]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "verify emails")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, 0.1, result.Recommendations[1].RelevanceScore)
}

func TestRecommend_ModelFailures(t *testing.T) {
	tests := []struct {
		name     string
		model    *mockChatModel
		expected error
	}{
		{
			name: "generate error",
			model: &mockChatModel{
				generateFunc: func(context.Context, []*schema.Message) (*schema.Message, error) {
					return nil, errors.New("rate limited")
				},
			},
			expected: domain.ErrAIProcessingFailed,
		},
		{
			name:     "invalid JSON response",
			model:    modelResponding(`the best tool is EmailCheck Pro`),
			expected: domain.ErrAIProcessingFailed,
		},
		{
			name:     "schema violation",
			model:    modelResponding(`[{"tool_name": "SheetSync", "relevance_score": 1.7, "reasoning": "x"}]`),
			expected: domain.ErrAIProcessingFailed,
		},
		{
			name:     "object instead of array",
			model:    modelResponding(`{"tool_name": "SheetSync", "relevance_score": 0.5, "reasoning": "x"}`),
			expected: domain.ErrAIProcessingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, _ := newTestEngine(t, tt.model, 0.3)

			_, err := engine.Recommend(context.Background(), "verify emails")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var domainErr *domain.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.CodeUnavailable, domainErr.Code)
			assert.Equal(t, "recommend.generate", domainErr.Op)
		})
	}
}

func TestRecommend_CatalogFailures(t *testing.T) {
	tests := []struct {
		name     string
		fetch    func(context.Context) ([]byte, error)
		expected error
	}{
		{
			name: "fetch error",
			fetch: func(context.Context) ([]byte, error) {
				return nil, domain.ErrCatalogUnavailable
			},
			expected: domain.ErrCatalogUnavailable,
		},
		{
			name: "all records unusable",
			fetch: func(context.Context) ([]byte, error) {
				return []byte(`[{"description": "nameless"}]`), nil
			},
			expected: domain.ErrNoValidToolsInCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, fetcher, _ := newTestEngine(t, modelResponding(`[]`), 0.3)
			fetcher.fetchFunc = tt.fetch

			_, err := engine.Recommend(context.Background(), "verify emails")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestRecommend_FetchesCatalogPerRequest(t *testing.T) {
	engine, fetcher, _ := newTestEngine(t, modelResponding(
		`[{"tool_name": "SheetSync", "relevance_score": 0.9, "reasoning": "x"}]`,
	), 0.3)

	for i := 0; i < 3; i++ {
		_, err := engine.Recommend(context.Background(), "sync data")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fetcher.calls)
}

func TestRecommend_CaseInsensitiveNameValidation(t *testing.T) {
	response := `[{"tool_name": "emailcheck pro", "relevance_score": 0.9, "reasoning": "case differs"}]`
	engine, _, _ := newTestEngine(t, modelResponding(response), 0.3)

	result, err := engine.Recommend(context.Background(), "verify emails")
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	// Canonical catalog spelling wins over the model's casing.
	assert.Equal(t, "EmailCheck Pro", result.Recommendations[0].Tool.Name)
}

func TestRecommend_TokenUsageObserved(t *testing.T) {
	chatModel := &mockChatModel{
		generateFunc: func(context.Context, []*schema.Message) (*schema.Message, error) {
			return &schema.Message{
				Role:    schema.Assistant,
				Content: `[{"tool_name": "SheetSync", "relevance_score": 0.9, "reasoning": "x"}]`,
				ResponseMeta: &schema.ResponseMeta{
					Usage: &schema.TokenUsage{TotalTokens: 321},
				},
			}, nil
		},
	}
	engine, _, metrics := newTestEngine(t, chatModel, 0.3)

	_, err := engine.Recommend(context.Background(), "sync data")
	require.NoError(t, err)
	assert.Equal(t, 321, metrics.tokens)
}

func TestBuildPrompt(t *testing.T) {
	cat := domain.NewCatalog([]domain.Tool{
		{Name: "EmailCheck Pro", Description: "Verify email addresses"},
		{Name: "SheetSync", Description: "Spreadsheet sync"},
	})

	prompt := buildPrompt("verify emails before import", cat)

	assert.Contains(t, prompt, "User workflow need: verify emails before import")
	assert.Contains(t, prompt, "1. EmailCheck Pro")
	assert.Contains(t, prompt, "2. SheetSync")
	assert.Contains(t, prompt, "- EmailCheck Pro: Verify email addresses")
	assert.Contains(t, prompt, "- SheetSync: Spreadsheet sync")
	assert.Contains(t, prompt, "between 3 and 5 tools")
	assert.Contains(t, prompt, "Never recommend a tool that is not in the candidate list.")
}

func TestCatalog_ReportsLiveCatalog(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil, 0.3)

	cat, err := engine.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
}
