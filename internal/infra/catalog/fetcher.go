package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Catalogs are small static documents; anything past this is misconfiguration.
const maxCatalogBytes = 8 << 20

// Fetcher retrieves the raw catalog document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SourceProvider supplies the current catalog source settings, so URL and
// timeout changes apply without restarting.
type SourceProvider interface {
	CatalogSource() domain.CatalogSourceConfig
}

// HTTPFetcher fetches the catalog with a plain GET per request. There is no
// caching: every recommendation request sees the live document.
type HTTPFetcher struct {
	source SourceProvider
	client *http.Client
	logger *zap.Logger
}

func NewHTTPFetcher(source SourceProvider, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		source: source,
		client: &http.Client{},
		logger: logger.Named("catalog_fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	cfg := f.source.CatalogSource()
	if timeout := cfg.FetchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, fetchError(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchError(fmt.Sprintf("fetch %s: %v", cfg.URL, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchError(fmt.Sprintf("fetch %s: unexpected status %d", cfg.URL, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fetchError(fmt.Sprintf("read catalog body: %v", err))
	}
	return body, nil
}

func fetchError(msg string) error {
	return domain.E(domain.CodeUnavailable, "catalog.fetch", msg, domain.ErrCatalogUnavailable)
}

var _ Fetcher = (*HTTPFetcher)(nil)
