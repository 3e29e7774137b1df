package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/AjayRao0904/database-chatbot/internal/config"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

type stage string

const (
	stageClassify   stage = "classify"
	stageSQLQuery   stage = "sql_query"
	stageHypotheses stage = "hypotheses"
	stageInsights   stage = "insights"
	stageSynthesize stage = "synthesize"
	stageEnd        stage = "end"
)

// state carries everything accumulated while processing one question. It
// lives for one ProcessQuestion call only.
type state struct {
	Question       string
	History        []models.ConversationMessage
	Classification models.Classification
	SQLResult      *models.SQLResult
	Hypotheses     *models.HypothesisSet
	Insights       []models.Insight
	FinalAnswer    string
	Trace          []string
	Err            error
}

func (s *state) trace(format string, args ...any) {
	s.Trace = append(s.Trace, fmt.Sprintf(format, args...))
}

// transition routes from one stage to the next when its guard matches.
// Guards are evaluated in declaration order; the first match wins.
type transition struct {
	from stage
	when func(*state) bool
	to   stage
}

func always(*state) bool { return true }

var transitions = []transition{
	{stageClassify, func(s *state) bool { return s.Err != nil }, stageEnd},
	{stageClassify, func(s *state) bool { return s.Classification == models.ClassificationData }, stageSQLQuery},
	{stageClassify, func(s *state) bool { return s.Classification == models.ClassificationHypothesis }, stageHypotheses},
	{stageClassify, always, stageSynthesize},
	{stageSQLQuery, always, stageInsights},
	{stageInsights, always, stageSynthesize},
	{stageHypotheses, func(s *state) bool { return s.Err != nil }, stageEnd},
	{stageHypotheses, always, stageSynthesize},
	{stageSynthesize, always, stageEnd},
}

// Orchestrator drives a question through classification, the specialist
// stage its label selects, proactive insights, and synthesis. Exactly one of
// the SQL and hypothesis paths runs per question.
type Orchestrator struct {
	classifier ClassifierStrategy
	sqlGen     *SQLGenerator
	hypGen     *HypothesisGenerator
	insights   *InsightEngine
	cfg        config.AgentConfig
}

// NewOrchestrator assembles the pipeline.
func NewOrchestrator(classifier ClassifierStrategy, sqlGen *SQLGenerator, hypGen *HypothesisGenerator, insights *InsightEngine, cfg config.AgentConfig) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		sqlGen:     sqlGen,
		hypGen:     hypGen,
		insights:   insights,
		cfg:        cfg,
	}
}

// ProcessQuestion runs the full pipeline for one question. History is
// caller-owned; nothing is persisted between calls. The returned error means
// the pipeline itself broke (classification or hypothesis generation failed);
// a failed SQL query is not an error, it surfaces inside the answer.
func (o *Orchestrator) ProcessQuestion(ctx context.Context, question string, history []models.ConversationMessage) (models.AskResult, error) {
	st := &state{Question: question, History: history}

	for current := stageClassify; current != stageEnd; current = nextStage(current, st) {
		switch current {
		case stageClassify:
			o.runClassify(ctx, st)
		case stageSQLQuery:
			o.runSQLQuery(ctx, st)
		case stageHypotheses:
			o.runHypotheses(ctx, st)
		case stageInsights:
			o.runInsights(ctx, st)
		case stageSynthesize:
			o.synthesize(st)
		}
	}

	if st.Err != nil {
		return models.AskResult{}, st.Err
	}

	return models.AskResult{
		Question:       st.Question,
		Classification: st.Classification,
		FinalAnswer:    st.FinalAnswer,
		ProcessTrace:   st.Trace,
		SQLResult:      st.SQLResult,
		Hypotheses:     hypothesesOf(st),
		Insights:       st.Insights,
	}, nil
}

func nextStage(current stage, st *state) stage {
	for _, t := range transitions {
		if t.from == current && t.when(st) {
			return t.to
		}
	}
	return stageEnd
}

func (o *Orchestrator) runClassify(ctx context.Context, st *state) {
	label, err := o.classifier.Classify(ctx, st.Question, st.History)
	if err != nil {
		st.Err = err
		return
	}
	st.Classification = label
	st.trace("🔍 Question classified as: %s", label)
}

func (o *Orchestrator) runSQLQuery(ctx context.Context, st *state) {
	st.trace("🤖 SQL Agent: Generating and executing query...")
	result := o.sqlGen.ExecuteWithCorrection(ctx, st.Question)
	st.SQLResult = &result

	if result.Query != "" {
		st.trace("📝 Generated SQL: %s", result.Query)
	}
	if result.Success {
		st.trace("✅ Query executed successfully (%d rows)", result.RowCount)
	} else {
		st.trace("❌ Query failed: %s", result.Error)
	}
}

func (o *Orchestrator) runHypotheses(ctx context.Context, st *state) {
	st.trace("🧠 Hypothesis Agent: Generating theories...")
	set, err := o.hypGen.Generate(ctx, st.Question, nil)
	if err != nil {
		st.Err = err
		return
	}
	st.Hypotheses = &set
	st.trace("✅ Generated %d hypotheses", len(set.Hypotheses))
}

func (o *Orchestrator) runInsights(ctx context.Context, st *state) {
	if st.SQLResult == nil || !st.SQLResult.Success {
		return
	}
	st.trace("💡 Proactive Agent: Finding patterns...")
	st.Insights = o.insights.Generate(ctx, st.Question, st.SQLResult.QueryResult)
	if len(st.Insights) > 0 {
		st.trace("✅ Found %d insights", len(st.Insights))
	}
}

func (o *Orchestrator) synthesize(st *state) {
	switch st.Classification {
	case models.ClassificationConversational:
		st.FinalAnswer = o.conversationalAnswer(st.Question)
	case models.ClassificationHypothesis:
		st.FinalAnswer = hypothesisAnswer(st)
	default:
		st.FinalAnswer = dataAnswer(st)
	}
}

const greetingAnswer = `👋 Hello! I'm your AI E-Commerce Analyst. I can help you analyze your Olist data. Try asking:

• What are the top selling products?
• Show me sales by state
• Why are sales low in certain regions?
• What's the monthly sales trend?

What would you like to explore?`

const thanksAnswer = "You're welcome! Let me know if you need any other analysis. 😊"

const conversationalFallback = "I'm here to help you analyze your e-commerce data! Ask me anything about sales, products, customers, or trends."

func (o *Orchestrator) conversationalAnswer(question string) string {
	switch {
	case containsAny(question, o.cfg.GreetingKeywords):
		return greetingAnswer
	case containsAny(question, o.cfg.ThanksKeywords):
		return thanksAnswer
	default:
		return conversationalFallback
	}
}

func hypothesisAnswer(st *state) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Analysis: %s**\n\nHere are three possible explanations:\n\n", st.Question))
	for _, h := range st.Hypotheses.Hypotheses {
		sb.WriteString(h.Text)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func dataAnswer(st *state) string {
	if st.SQLResult == nil || !st.SQLResult.Success {
		errMsg := "no result"
		if st.SQLResult != nil {
			errMsg = st.SQLResult.Error
		}
		return fmt.Sprintf("❌ I encountered an error: %s", errMsg)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Results for: %s**\n\nFound %d results.\n\n",
		st.Question, st.SQLResult.RowCount))
	sb.WriteString(summarizeRows(st.SQLResult.QueryResult))

	if len(st.Insights) > 0 {
		sb.WriteString("\n**💡 Proactive Insights:**\n\n")
		for _, insight := range st.Insights {
			sb.WriteString(insight.Text)
			sb.WriteString("\n\n")
			if insight.Recommendation != "" {
				sb.WriteString(fmt.Sprintf("*Recommendation: %s*\n\n", insight.Recommendation))
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func hypothesesOf(st *state) []models.Hypothesis {
	if st.Hypotheses == nil {
		return nil
	}
	return st.Hypotheses.Hypotheses
}
