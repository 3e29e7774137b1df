package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/AjayRao0904/database-chatbot/internal/config"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// contextQuery pairs a keyword trigger with the query that fetches supporting
// data for it.
type contextQuery struct {
	keywords []string
	label    string
	query    string
}

const stateRevenueQuery = `SELECT c.customer_state, COUNT(DISTINCT o.order_id) as order_count,
       ROUND(SUM(oi.price)::numeric, 2) as revenue
FROM customers c
JOIN orders o ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id = oi.order_id
GROUP BY c.customer_state
ORDER BY revenue DESC
LIMIT 10`

const categorySalesQuery = `SELECT COALESCE(t.product_category_name_english, p.product_category_name) as category,
       COUNT(*) as items_sold,
       ROUND(AVG(oi.price)::numeric, 2) as avg_price
FROM order_items oi
JOIN products p ON oi.product_id = p.product_id
LEFT JOIN product_category_translation t ON p.product_category_name = t.product_category_name
GROUP BY category
ORDER BY items_sold DESC
LIMIT 10`

// HypothesisGenerator produces three candidate explanations for "why"
// questions, optionally grounded in context pulled from the warehouse.
type HypothesisGenerator struct {
	provider models.CompletionProvider
	store    DataStore
	cfg      config.AgentConfig
}

// NewHypothesisGenerator creates a HypothesisGenerator.
func NewHypothesisGenerator(provider models.CompletionProvider, store DataStore, cfg config.AgentConfig) *HypothesisGenerator {
	return &HypothesisGenerator{provider: provider, store: store, cfg: cfg}
}

// Generate answers a causal question with exactly three hypotheses (or one
// fallback item when the completion cannot be segmented). data carries result
// sets already in hand; when empty, context is gathered by keyword.
func (h *HypothesisGenerator) Generate(ctx context.Context, question string, data []models.QueryResult) (models.HypothesisSet, error) {
	dataUsed := "provided"
	if len(data) == 0 {
		var labels []string
		data, labels = h.gatherContext(ctx, question)
		dataUsed = strings.Join(labels, ", ")
	}

	userPrompt := h.buildUserPrompt(question, data)
	raw, err := h.provider.Complete(ctx, hypothesisPrompt, userPrompt)
	if err != nil {
		return models.HypothesisSet{}, fmt.Errorf("hypothesis generation failed: %w", err)
	}

	hypotheses := ParseHypotheses(raw)
	return models.HypothesisSet{
		Question:   question,
		Hypotheses: hypotheses,
		DataUsed:   dataUsed,
	}, nil
}

// gatherContext runs the canned context queries whose keywords match the
// question and returns the results alongside their labels. Failed queries are
// simply omitted.
func (h *HypothesisGenerator) gatherContext(ctx context.Context, question string) ([]models.QueryResult, []string) {
	queries := []contextQuery{
		{keywords: h.cfg.SalesKeywords, label: "revenue by state", query: stateRevenueQuery},
		{keywords: h.cfg.CategoryKeywords, label: "sales by category", query: categorySalesQuery},
	}

	var (
		results []models.QueryResult
		labels  []string
	)
	for _, cq := range queries {
		if !containsAny(question, cq.keywords) {
			continue
		}
		result := h.store.ExecuteQuery(ctx, cq.query)
		if result.Success {
			results = append(results, result)
			labels = append(labels, cq.label)
		}
	}
	return results, labels
}

func (h *HypothesisGenerator) buildUserPrompt(question string, data []models.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: %s\n", question))

	if len(data) > 0 {
		sb.WriteString("\nRelevant data:\n")
		for _, result := range data {
			sb.WriteString(formatDataSummary(result))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nGenerate 3 hypotheses to explain this.")
	return sb.String()
}

// formatDataSummary condenses a result set to a row count and up to three
// sample rows.
func formatDataSummary(result models.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d records\n", result.RowCount))

	limit := len(result.Rows)
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		sb.WriteString(fmt.Sprintf("  %s\n", formatRow(result.Rows[i], result.Columns)))
	}
	return sb.String()
}

// ParseHypotheses splits a completion into numbered items. A line beginning
// with a digit followed by ". " or ") " starts a new item; other non-empty
// lines extend the current one. Preamble lines before the first numbered item
// are discarded. If fewer than three items parse, the whole response becomes
// a single hypothesis so the caller always has something to show.
func ParseHypotheses(raw string) []models.Hypothesis {
	var (
		items   []string
		current []string
	)

	flush := func() {
		if len(current) > 0 {
			items = append(items, strings.TrimSpace(strings.Join(current, "\n")))
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if startsNumberedItem(trimmed) {
			flush()
		} else if current == nil {
			// preamble before the first numbered item
			continue
		}
		current = append(current, trimmed)
	}
	flush()

	if len(items) < 3 {
		return []models.Hypothesis{{Text: strings.TrimSpace(raw)}}
	}

	hypotheses := make([]models.Hypothesis, 0, 3)
	for _, item := range items[:3] {
		hypotheses = append(hypotheses, models.Hypothesis{Text: item})
	}
	return hypotheses
}

func startsNumberedItem(line string) bool {
	if line == "" || !unicode.IsDigit(rune(line[0])) {
		return false
	}
	rest := strings.TrimLeftFunc(line, unicode.IsDigit)
	return strings.HasPrefix(rest, ". ") || strings.HasPrefix(rest, ") ")
}
