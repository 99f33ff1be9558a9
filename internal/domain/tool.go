package domain

import "strings"

// The public catalog does not carry per-record values for these fields in
// this deployment, so every normalized tool gets the same constants.
const (
	DefaultToolCategory          = "Automation"
	DefaultIntegrationDifficulty = "Medium"
	DefaultPricingModel          = "Varies"
)

// Tool is the canonical catalog record produced by normalization.
type Tool struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	Website               string   `json:"website"`
	Category              string   `json:"category"`
	UseCases              []string `json:"use_cases"`
	IntegrationDifficulty string   `json:"integration_difficulty"`
	PricingModel          string   `json:"pricing_model"`
	IntegrationOverview   string   `json:"integration_overview,omitempty"`
}

// NormalizeToolName returns the lookup key for a tool name.
func NormalizeToolName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Catalog is an ordered list of tools plus a name lookup keyed by
// NormalizeToolName. The list preserves source order, duplicates included;
// the lookup collapses duplicate names with the last occurrence winning.
type Catalog struct {
	Tools []Tool

	lookup map[string]Tool
}

// NewCatalog builds a catalog from an ordered tool list. Tools without a
// usable name never reach this constructor; the normalizer drops them.
func NewCatalog(tools []Tool) Catalog {
	lookup := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		key := NormalizeToolName(tool.Name)
		if key == "" {
			continue
		}
		lookup[key] = tool
	}
	return Catalog{Tools: tools, lookup: lookup}
}

// Lookup resolves a tool name case- and whitespace-insensitively.
func (c Catalog) Lookup(name string) (Tool, bool) {
	tool, ok := c.lookup[NormalizeToolName(name)]
	return tool, ok
}

// Len returns the number of tools in the ordered list.
func (c Catalog) Len() int {
	return len(c.Tools)
}
