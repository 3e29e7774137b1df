package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AjayRao0904/database-chatbot/internal/config"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// InsightEngine scans successful query results for patterns worth pointing
// out unprompted. It combines a deterministic concentration check with one
// AI-generated observation.
type InsightEngine struct {
	provider  models.CompletionProvider
	threshold float64
	minRows   int
}

// NewInsightEngine creates an InsightEngine from the agent config.
func NewInsightEngine(provider models.CompletionProvider, cfg config.AgentConfig) *InsightEngine {
	return &InsightEngine{
		provider:  provider,
		threshold: cfg.ConcentrationThreshold,
		minRows:   cfg.ConcentrationMinRows,
	}
}

// Generate inspects a result and returns zero or more insights. Failed or
// empty results produce nothing. A generative insight failure is logged and
// swallowed: insights are best-effort and never fail the request.
func (e *InsightEngine) Generate(ctx context.Context, question string, result models.QueryResult) []models.Insight {
	if !result.Success || result.RowCount == 0 {
		return nil
	}

	var insights []models.Insight
	if insight, ok := e.concentrationCheck(result); ok {
		insights = append(insights, insight)
	}

	insight, err := e.generativeInsight(ctx, question, result)
	if err != nil {
		slog.Info("generative insight skipped", "error", err)
		return insights
	}
	insights = append(insights, insight)
	return insights
}

// concentrationCheck fires when the first row of a large enough result
// accounts for more than the threshold share of a numeric column's total. The
// first qualifying column wins, scanned in result column order.
func (e *InsightEngine) concentrationCheck(result models.QueryResult) (models.Insight, bool) {
	if result.RowCount < e.minRows {
		return models.Insight{}, false
	}

	for _, col := range result.Columns {
		first, ok := toFloat(result.Rows[0][col])
		if !ok {
			continue
		}

		var total float64
		numeric := true
		for _, row := range result.Rows {
			v, ok := toFloat(row[col])
			if !ok {
				numeric = false
				break
			}
			total += v
		}
		if !numeric || total <= 0 {
			continue
		}

		share := first / total * 100
		if share <= e.threshold {
			continue
		}

		label := labelValue(result, col)
		return models.Insight{
			Kind: models.InsightConcentration,
			Text: fmt.Sprintf("⚡ **Concentration Alert**: %v accounts for %.1f%% of total %s. This suggests high dependency on a single segment.",
				label, share, col),
			Recommendation: fmt.Sprintf("Consider diversifying to reduce risk associated with over-reliance on %v.", label),
		}, true
	}
	return models.Insight{}, false
}

// labelValue picks the first row's value in the first column that is not the
// numeric column, falling back to the numeric value itself.
func labelValue(result models.QueryResult, numericCol string) any {
	for _, col := range result.Columns {
		if col != numericCol {
			return result.Rows[0][col]
		}
	}
	return result.Rows[0][numericCol]
}

func (e *InsightEngine) generativeInsight(ctx context.Context, question string, result models.QueryResult) (models.Insight, error) {
	userPrompt := fmt.Sprintf("The user asked: %s\n\n%s\nFind one interesting insight in this data.",
		question, summarizeRows(result))

	raw, err := e.provider.Complete(ctx, insightPrompt, userPrompt)
	if err != nil {
		return models.Insight{}, fmt.Errorf("insight generation failed: %w", err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return models.Insight{}, fmt.Errorf("insight generation returned empty response")
	}
	return models.Insight{Kind: models.InsightAIGenerated, Text: text}, nil
}
