package app

import (
	"context"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"toolscout/internal/infra/catalog"
	"toolscout/internal/infra/config"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
}

type CheckCatalogConfig struct {
	ConfigPath string
}

func New(logger *zap.Logger) *App {
	return &App{
		logger: logger.Named("app"),
	}
}

// Serve wires the full service and blocks until shutdown.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	application, err := InitializeApplication(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

type catalogSummaryTool struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
}

type catalogSummary struct {
	URL   string               `yaml:"url"`
	Tools int                  `yaml:"tools"`
	List  []catalogSummaryTool `yaml:"list"`
}

// CheckCatalog fetches and normalizes the live catalog once and prints a
// summary, without touching the model credential.
func (a *App) CheckCatalog(ctx context.Context, cfg CheckCatalogConfig) error {
	provider, err := config.NewProvider(ctx, cfg.ConfigPath, a.logger)
	if err != nil {
		return err
	}

	fetcher := catalog.NewHTTPFetcher(provider, a.logger)
	normalizer := catalog.NewNormalizer(a.logger)

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	cat, err := normalizer.Normalize(raw)
	if err != nil {
		return err
	}

	a.logger.Info("catalog checked",
		zap.String("url", provider.CatalogSource().URL),
		zap.Int("tools", cat.Len()),
	)

	summary := catalogSummary{
		URL:   provider.CatalogSource().URL,
		Tools: cat.Len(),
		List:  make([]catalogSummaryTool, 0, cat.Len()),
	}
	for _, tool := range cat.Tools {
		summary.List = append(summary.List, catalogSummaryTool{
			Name:        tool.Name,
			Category:    tool.Category,
			Description: truncate(tool.Description, 120),
		})
	}

	out, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// truncate shortens s to max runes. Byte slicing would split multi-byte
// characters in catalog descriptions.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
