package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayRao0904/database-chatbot/internal/ai/mock"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

const threeHypotheses = `1. Logistics costs are higher in northern states.
Supporting data: freight_value by state.
Next steps: compare freight against order value.

2) Lower marketplace penetration outside the southeast.
Supporting data: seller counts by state.

3. Delivery times hurt repeat purchases.
Supporting data: delivery delays vs review scores.`

func TestParseHypotheses_ThreeNumberedItems(t *testing.T) {
	got := ParseHypotheses(threeHypotheses)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0].Text, "1. Logistics costs"))
	assert.Contains(t, got[0].Text, "Next steps: compare freight against order value.")
	assert.True(t, strings.HasPrefix(got[1].Text, "2) Lower marketplace"))
	assert.True(t, strings.HasPrefix(got[2].Text, "3. Delivery times"))
}

func TestParseHypotheses_PreambleDiscarded(t *testing.T) {
	raw := "Here are three hypotheses:\n\n" + threeHypotheses
	got := ParseHypotheses(raw)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0].Text, "1. Logistics costs"))
	assert.True(t, strings.HasPrefix(got[1].Text, "2) Lower marketplace"))
	assert.True(t, strings.HasPrefix(got[2].Text, "3. Delivery times"))
	for _, h := range got {
		assert.NotContains(t, h.Text, "Here are three hypotheses:")
	}
}

func TestParseHypotheses_MoreThanThreeKeepsFirstThree(t *testing.T) {
	raw := threeHypotheses + "\n\n4. A fourth idea.\n"
	got := ParseHypotheses(raw)
	require.Len(t, got, 3)
	assert.NotContains(t, got[2].Text, "fourth")
}

func TestParseHypotheses_FallbackWhenUnstructured(t *testing.T) {
	raw := "Sales could be low because of seasonality and shipping costs."
	got := ParseHypotheses(raw)
	require.Len(t, got, 1)
	assert.Equal(t, raw, got[0].Text)
}

func TestParseHypotheses_TwoItemsFallsBack(t *testing.T) {
	raw := "1. First idea.\n2. Second idea."
	got := ParseHypotheses(raw)
	require.Len(t, got, 1)
	assert.Equal(t, raw, got[0].Text)
}

func TestGenerate_GathersSalesContext(t *testing.T) {
	store := &fakeStore{
		schema: testSchema(),
		execFunc: func(query string) models.QueryResult {
			return models.QueryResult{
				Success:  true,
				Columns:  []string{"customer_state", "order_count", "revenue"},
				Rows:     []map[string]any{{"customer_state": "SP", "order_count": int64(100), "revenue": 5000.0}},
				RowCount: 1,
			}
		},
	}
	provider := mock.NewStaticProvider(threeHypotheses)
	h := NewHypothesisGenerator(provider, store, testAgentConfig())

	set, err := h.Generate(context.Background(), "why is revenue low in the north?", nil)
	require.NoError(t, err)
	assert.Len(t, set.Hypotheses, 3)
	assert.Equal(t, "revenue by state", set.DataUsed)

	// the context query actually ran
	require.Len(t, store.executed, 1)
	assert.Contains(t, store.executed[0], "GROUP BY customer_state")

	// and its summary reached the prompt
	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Found 1 records")
	assert.Contains(t, calls[0].User, "customer_state: SP")
	assert.Contains(t, calls[0].User, "Generate 3 hypotheses to explain this.")
}

func TestGenerate_NoKeywordNoContext(t *testing.T) {
	store := &fakeStore{schema: testSchema()}
	provider := mock.NewStaticProvider(threeHypotheses)
	h := NewHypothesisGenerator(provider, store, testAgentConfig())

	set, err := h.Generate(context.Background(), "why do people churn?", nil)
	require.NoError(t, err)
	assert.Empty(t, store.executed)
	assert.Empty(t, set.DataUsed)
}

func TestGenerate_BothKeywordsBothQueries(t *testing.T) {
	store := &fakeStore{
		schema: testSchema(),
		execFunc: func(string) models.QueryResult {
			return models.QueryResult{Success: true, Columns: []string{"x"}, Rows: []map[string]any{{"x": 1}}, RowCount: 1}
		},
	}
	provider := mock.NewStaticProvider(threeHypotheses)
	h := NewHypothesisGenerator(provider, store, testAgentConfig())

	set, err := h.Generate(context.Background(), "why are sales low for this product category?", nil)
	require.NoError(t, err)
	assert.Len(t, store.executed, 2)
	assert.Equal(t, "revenue by state, sales by category", set.DataUsed)
}

func TestGenerate_FailedContextQueryOmitted(t *testing.T) {
	store := &fakeStore{
		schema: testSchema(),
		execFunc: func(string) models.QueryResult {
			return models.QueryResult{Success: false, Error: "timeout"}
		},
	}
	provider := mock.NewStaticProvider(threeHypotheses)
	h := NewHypothesisGenerator(provider, store, testAgentConfig())

	set, err := h.Generate(context.Background(), "why are sales low?", nil)
	require.NoError(t, err)
	assert.Empty(t, set.DataUsed)
	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].User, "Relevant data:")
}

func TestGenerate_CallerProvidedData(t *testing.T) {
	store := &fakeStore{schema: testSchema()}
	provider := mock.NewStaticProvider(threeHypotheses)
	h := NewHypothesisGenerator(provider, store, testAgentConfig())

	data := []models.QueryResult{{
		Success:  true,
		Columns:  []string{"category", "items_sold"},
		Rows:     []map[string]any{{"category": "bed_bath_table", "items_sold": int64(900)}},
		RowCount: 1,
	}}
	set, err := h.Generate(context.Background(), "why does this category dominate?", data)
	require.NoError(t, err)
	assert.Equal(t, "provided", set.DataUsed)
	assert.Empty(t, store.executed)
}

func TestGenerate_ProviderError(t *testing.T) {
	store := &fakeStore{schema: testSchema()}
	boom := errors.New("provider down")
	h := NewHypothesisGenerator(mock.NewFailingProvider(boom), store, testAgentConfig())

	_, err := h.Generate(context.Background(), "why?", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
