package domain

// DefaultRelevanceThreshold gates whether a recommendation list is confident
// enough to return at all. It does not filter individual entries: a list
// with one qualifying entry is returned in full, sub-threshold entries
// included.
const DefaultRelevanceThreshold = 0.3

// Recommendation count bounds requested from the model.
const (
	MinRecommendations = 3
	MaxRecommendations = 5
)

// NoConfidentMatchMessage is the fixed guidance returned when no
// recommendation clears the relevance gate.
const NoConfidentMatchMessage = "We couldn't find a confident match in the tool catalog for this request. " +
	"Try describing your workflow in different words, or reach out to the integration team for a hand-picked suggestion."

// Recommendation pairs a catalog tool with the model's assessment. The Tool
// field always references an entry from the catalog snapshot used for the
// request; names the model invented never survive validation.
type Recommendation struct {
	Tool           Tool    `json:"tool"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// RecommendationResult is the outcome of one recommendation request: either
// a non-empty list sorted by descending relevance, or a guidance message.
type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// Confident reports whether the result carries recommendations.
func (r RecommendationResult) Confident() bool {
	return len(r.Recommendations) > 0
}
