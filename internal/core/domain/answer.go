package domain

// Confidence levels reported by the generation collaborator.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Evidence is a source citation for a factual claim in an answer.
type Evidence struct {
	Claim    string `json:"claim"`
	Source   string `json:"source"`
	Location string `json:"location"`
}

// AnswerOption is one decision option with structured trade-offs.
type AnswerOption struct {
	Name  string   `json:"option"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
	Risks []string `json:"risks"`
	Cost  string   `json:"cost"`
}

// Answer is the structured decision-support response produced by the
// generation collaborator from a query plus retrieved context chunks.
type Answer struct {
	Summary         string         `json:"decision_summary"`
	Options         []AnswerOption `json:"options"`
	Recommendation  string         `json:"recommendation"`
	Confidence      string         `json:"confidence_level"`
	Reasoning       string         `json:"reasoning"`
	Evidence        []Evidence     `json:"evidence"`
	ConflictsOrGaps []string       `json:"conflicts_or_gaps"`
}
