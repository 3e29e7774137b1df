package agent

import "fmt"

// classifyPrompt is the fixed instruction for question classification. The
// completion is expected to be exactly one lowercase label token.
const classifyPrompt = `Classify the user's question into one of these categories:

1. "data" - Question asks for specific data, numbers, lists, or facts from a database
   Examples: "What are top products?", "Show me sales by state", "How many orders?"

2. "hypothesis" - Question asks WHY something happens or to explain a pattern
   Examples: "Why are sales low?", "What causes...", "Why is X happening?"

3. "conversational" - Greetings, thank you, general chat not related to data analysis
   Examples: "hello", "hi", "thank you", "how are you", "bye"

Respond with ONLY the category name: "data", "hypothesis", or "conversational"`

// sqlSystemPrompt embeds the formatted schema and the default row cap. Built
// once at startup and reused for every generation and correction call.
func sqlSystemPrompt(schema string, rowLimit int) string {
	return fmt.Sprintf(`You are an expert PostgreSQL SQL query generator for an e-commerce database.

DATABASE SCHEMA:
%s

IMPORTANT RULES:
1. Generate ONLY SELECT queries (no INSERT, UPDATE, DELETE, DROP)
2. Use proper PostgreSQL syntax
3. Always use table aliases for clarity
4. Include LIMIT clause if not specified (default %d)
5. Handle Portuguese column names (product categories are in Portuguese)
6. Use LEFT JOIN when joining product_category_translation for English names
7. Use proper aggregations (COUNT, SUM, AVG) for analytical queries
8. Format currency as R$ (Brazilian Real)

COMMON PATTERNS:
- Top products: SELECT p.product_id, COUNT(*) FROM order_items oi JOIN products p...
- Sales by state: SELECT c.customer_state, SUM(oi.price) FROM customers c JOIN orders o...
- Payment methods: SELECT payment_type, COUNT(*) FROM order_payments...

Generate clean, working SQL queries based on the user's question.`, schema, rowLimit)
}

// fixQueryPrompt asks the generator to correct a failed query using the
// database's literal error text.
func fixQueryPrompt(question, failedSQL, errorMsg string) string {
	return fmt.Sprintf(`The following SQL query for the question "%s" produced an error:

ORIGINAL QUERY:
%s

ERROR:
%s

Please fix the query to resolve this error. Return only the corrected SQL query.`, question, failedSQL, errorMsg)
}

// hypothesisPrompt demands exactly three structured explanations grounded in
// the dataset's market context.
const hypothesisPrompt = `You are an analytical expert for an e-commerce business in Brazil.
Your job is to analyze data and generate 3 possible hypotheses to explain patterns or answer "why" questions.

For each hypothesis:
1. Provide a clear explanation
2. Suggest what data would support or refute it
3. Recommend next steps for investigation

Be specific to e-commerce, Brazilian market, and the Olist platform context.`

// insightPrompt asks for one unsolicited observation about a result set.
const insightPrompt = `You are a business intelligence analyst for an e-commerce platform.
Your job is to find ONE interesting, actionable insight from data that the user didn't explicitly ask for.

The insight should:
1. Be genuinely interesting and surprising
2. Suggest a specific business action
3. Be concise (2-3 sentences max)
4. Start with an emoji that fits the insight

Focus on: patterns, outliers, opportunities, or risks.`
