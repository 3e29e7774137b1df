package models

// Classification labels a question and drives orchestrator routing.
type Classification string

const (
	ClassificationData           Classification = "data"
	ClassificationHypothesis     Classification = "hypothesis"
	ClassificationConversational Classification = "conversational"
)

// Valid reports whether the label is one of the three known categories.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationData, ClassificationHypothesis, ClassificationConversational:
		return true
	}
	return false
}

// ConversationMessage is one turn of caller-held chat history. The core is
// stateless per question; history is owned by the caller and passed in.
type ConversationMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Hypothesis is one candidate explanation for a "why" question.
type Hypothesis struct {
	Text string `json:"text"`
}

// HypothesisSet is the output of one hypothesis-generation call. It holds
// between 1 and 3 hypotheses; fewer than 3 only when numbered-item parsing of
// the raw completion detected fewer segments.
type HypothesisSet struct {
	Question   string       `json:"question"`
	Hypotheses []Hypothesis `json:"hypotheses"`
	DataUsed   string       `json:"data_used"`
}

// InsightKind distinguishes deterministic checks from generative ones.
type InsightKind string

const (
	InsightConcentration InsightKind = "concentration"
	InsightAIGenerated   InsightKind = "ai_generated"
)

// Insight is one unsolicited observation about a result set.
type Insight struct {
	Kind           InsightKind `json:"kind"`
	Text           string      `json:"insight"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// AskResult is the complete answer to one processed question.
type AskResult struct {
	Question       string         `json:"question"`
	Classification Classification `json:"classification"`
	FinalAnswer    string         `json:"final_answer"`
	ProcessTrace   []string       `json:"process_trace"`
	SQLResult      *SQLResult     `json:"sql_result,omitempty"`
	Hypotheses     []Hypothesis   `json:"hypotheses,omitempty"`
	Insights       []Insight      `json:"insights,omitempty"`
}
