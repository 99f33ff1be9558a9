package domain

import "time"

// DropReason labels why a model-returned recommendation was discarded
// during validation.
type DropReason string

const (
	// DropReasonEmptyName indicates the model returned an empty or
	// placeholder tool name.
	DropReasonEmptyName DropReason = "empty_name"
	// DropReasonUnknownTool indicates the returned name matched no catalog
	// entry.
	DropReasonUnknownTool DropReason = "unknown_tool"
)

// Metrics records operational metrics for catalog fetches and model calls.
type Metrics interface {
	ObserveRecommendation(provider string, model string, duration time.Duration, err error)
	ObserveRecommendationTokens(provider string, model string, tokens int)
	ObserveCatalogFetch(duration time.Duration, err error)
	AddDroppedRecommendations(reason DropReason, count int)
	SetCatalogToolCount(count int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveRecommendation(string, string, time.Duration, error) {}
func (NopMetrics) ObserveRecommendationTokens(string, string, int)            {}
func (NopMetrics) ObserveCatalogFetch(time.Duration, error)                   {}
func (NopMetrics) AddDroppedRecommendations(DropReason, int)                  {}
func (NopMetrics) SetCatalogToolCount(int)                                    {}

var _ Metrics = NopMetrics{}
