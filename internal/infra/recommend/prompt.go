package recommend

import (
	"fmt"
	"strings"

	"toolscout/internal/domain"
)

const systemPrompt = `You are an integration advisor for a workflow automation platform. Given a user's workflow need and a closed list of integratable third-party tools, you recommend the tools that best match the need.

Respond with only a JSON array. Each element must be an object with exactly these fields:
  "tool_name": the tool name, reproduced exactly as given in the candidate list
  "relevance_score": a number between 0 and 1 reflecting how well the tool matches the need
  "reasoning": a short explanation of why the tool fits

Do not include any text outside the JSON array.`

// buildPrompt assembles the user prompt: the query, the numbered candidate
// set (the only names the model may return) and a description block for
// context.
func buildPrompt(query string, cat domain.Catalog) string {
	var sb strings.Builder

	sb.WriteString("User workflow need: ")
	sb.WriteString(query)

	sb.WriteString("\n\nCandidate tools (recommend only from this list, names reproduced exactly):\n")
	for i, tool := range cat.Tools {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, tool.Name)
	}

	sb.WriteString("\nTool descriptions:\n")
	for _, tool := range cat.Tools {
		fmt.Fprintf(&sb, "- %s: %s\n", tool.Name, tool.Description)
	}

	fmt.Fprintf(&sb, "\nRecommend between %d and %d tools from the candidate list, best match first. ", domain.MinRecommendations, domain.MaxRecommendations)
	sb.WriteString("Score each by match quality on a 0 to 1 scale and explain your reasoning. ")
	sb.WriteString("Never recommend a tool that is not in the candidate list.")

	return sb.String()
}
