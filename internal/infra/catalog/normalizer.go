package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Alias keys tried per target field, first present (and usable) wins. The
// descriptive "Name Of Tool" key is what the hosted catalog actually uses;
// the rest cover the shapes seen in older exports.
var (
	nameAliases        = []string{"Name Of Tool", "name", "Name", "title"}
	descriptionAliases = []string{"description", "Description", "desc", "Tool Description"}
	websiteAliases     = []string{"website", "Website", "url", "URL", "link", "Link"}
	useCasesAliases    = []string{"use_cases", "Use Cases", "useCases", "Use Case"}
	overviewAliases    = []string{"integration_overview", "Integration Overview", "integrationOverview", "overview"}
)

// Conventional container keys checked before falling back to the first
// array-valued property.
var (
	toolsContainerKeys = []string{"tools", "Tools"}
	dataContainerKeys  = []string{"data", "Data"}
)

// Normalizer maps a loosely structured catalog document onto canonical
// tool records.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		return &Normalizer{logger: zap.NewNop()}
	}
	return &Normalizer{logger: logger.Named("catalog")}
}

// Normalize extracts the tool array from a raw catalog document and maps
// each record onto domain.Tool. Records without a usable name are dropped
// with a warning; they never abort the whole catalog.
func (n *Normalizer) Normalize(raw []byte) (domain.Catalog, error) {
	records, err := extractRecords(raw)
	if err != nil {
		return domain.Catalog{}, err
	}
	if len(records) == 0 {
		return domain.Catalog{}, fmt.Errorf("%w: catalog contains no tool records", domain.ErrCatalogUnavailable)
	}

	tools := make([]domain.Tool, 0, len(records))
	seen := make(map[string]int, len(records))
	dropped := 0

	for i, record := range records {
		obj, ok := record.(map[string]any)
		if !ok {
			n.logger.Warn("dropping non-object catalog record", zap.Int("index", i))
			dropped++
			continue
		}

		name := firstString(obj, nameAliases)
		if name == "" {
			n.logger.Warn("dropping catalog record without a usable name", zap.Int("index", i))
			dropped++
			continue
		}

		tool := domain.Tool{
			Name:                  name,
			Description:           firstString(obj, descriptionAliases),
			Website:               firstString(obj, websiteAliases),
			Category:              domain.DefaultToolCategory,
			UseCases:              splitUseCases(firstString(obj, useCasesAliases)),
			IntegrationDifficulty: domain.DefaultIntegrationDifficulty,
			PricingModel:          domain.DefaultPricingModel,
			IntegrationOverview:   firstString(obj, overviewAliases),
		}

		key := domain.NormalizeToolName(tool.Name)
		if prev, dup := seen[key]; dup {
			n.logger.Warn("duplicate tool name in catalog; the later record wins the lookup",
				zap.String("name", tool.Name),
				zap.Int("previousIndex", prev),
				zap.Int("index", i),
			)
		}
		seen[key] = i
		tools = append(tools, tool)
	}

	if len(tools) == 0 {
		return domain.Catalog{}, fmt.Errorf("%w: all %d records dropped", domain.ErrNoValidToolsInCatalog, dropped)
	}
	if dropped > 0 {
		n.logger.Warn("catalog normalized with dropped records", zap.Int("kept", len(tools)), zap.Int("dropped", dropped))
	}

	return domain.NewCatalog(tools), nil
}

// extractRecords locates the tool array inside a document of unknown shape.
// Policy, first match wins: root array; a tools-named array property; a
// data-named array property; the first array-valued property in document
// declaration order.
func extractRecords(raw []byte) ([]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty catalog document", domain.ErrCatalogUnavailable)
	}

	if trimmed[0] == '[' {
		return decodeRecords(trimmed)
	}

	props, err := objectProperties(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", domain.ErrCatalogUnavailable, err)
	}

	for _, keys := range [][]string{toolsContainerKeys, dataContainerKeys} {
		for _, key := range keys {
			for _, prop := range props {
				if prop.key == key && isJSONArray(prop.value) {
					return decodeRecords(prop.value)
				}
			}
		}
	}

	for _, prop := range props {
		if isJSONArray(prop.value) {
			return decodeRecords(prop.value)
		}
	}

	return nil, fmt.Errorf("%w: no tool array found in catalog document", domain.ErrCatalogUnavailable)
}

func decodeRecords(raw []byte) ([]any, error) {
	var records []any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", domain.ErrCatalogUnavailable, err)
	}
	return records, nil
}

type property struct {
	key   string
	value json.RawMessage
}

// objectProperties decodes a JSON object's top-level properties preserving
// document declaration order. A plain map would lose the order the
// first-array fallback depends on, so this walks decoder tokens instead.
func objectProperties(raw []byte) ([]property, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("catalog root must be a JSON object or array")
	}

	var props []property
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		props = append(props, property{key: key, value: value})
	}
	return props, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// firstString returns the trimmed value of the first alias present as a
// non-empty string. Non-string values under an alias are skipped, not
// coerced.
func firstString(obj map[string]any, aliases []string) string {
	for _, alias := range aliases {
		value, ok := obj[alias]
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(str); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitUseCases(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	useCases := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			useCases = append(useCases, trimmed)
		}
	}
	if len(useCases) == 0 {
		return nil
	}
	return useCases
}
