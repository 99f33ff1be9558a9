package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// responseSchemaJSON is the contract the model's output must satisfy. The
// 3-5 count bound is a prompt constraint, not a schema constraint: a
// well-formed response with a different count is still usable.
const responseSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["tool_name", "relevance_score", "reasoning"],
    "properties": {
      "tool_name": { "type": "string" },
      "relevance_score": { "type": "number", "minimum": 0, "maximum": 1 },
      "reasoning": { "type": "string" }
    },
    "additionalProperties": true
  }
}`

// rawRecommendation is one entry of the model's response, before catalog
// validation.
type rawRecommendation struct {
	ToolName       string  `json:"tool_name"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

var responseSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal([]byte(responseSchemaJSON), &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// parseResponse decodes the model output and validates it against the
// response schema. Any violation is a hard failure of the request; the
// caller wraps it as an AI processing error.
func parseResponse(content string) ([]rawRecommendation, error) {
	payload := stripCodeFence(content)

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %v", err)
	}

	resolved, err := responseSchema()
	if err != nil {
		return nil, fmt.Errorf("resolve response schema: %v", err)
	}
	if err := resolved.Validate(decoded); err != nil {
		return nil, fmt.Errorf("response violates schema: %v", err)
	}

	var recommendations []rawRecommendation
	if err := json.Unmarshal([]byte(payload), &recommendations); err != nil {
		return nil, fmt.Errorf("decode response: %v", err)
	}
	return recommendations, nil
}

// stripCodeFence unwraps a markdown-fenced payload. Chat models sometimes
// fence JSON output even when told not to.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
