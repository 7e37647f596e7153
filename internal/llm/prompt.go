package llm

import (
	"encoding/json"
	"strings"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// SystemPrompt composes the financial-analyst instructions for the chat
// model, including the fixed metric vocabulary so tags in the data context
// are self-explanatory.
func SystemPrompt() string {
	parts := []string{
		"You are a financial analyst assistant specializing in balance sheet analysis.",
		"You help users understand financial data by providing clear, accurate explanations and insights.",
		"Always provide context and explain what the numbers mean.",
		"Calculate year-over-year changes when relevant.",
		"Highlight trends and patterns, and use proper financial terminology.",
		"If asked for visualizations, suggest appropriate chart types.",
		"Always mention the currency (₹ Crore) when discussing values.",
		"Available metrics: " + metricCatalog() + ".",
	}
	return strings.Join(parts, " ")
}

// UserPrompt packages the data context with the user's question. Values are
// already normalized to ₹ Crore, so the model never has to convert units.
func UserPrompt(question string, series []MetricSeries) string {
	var b strings.Builder
	b.WriteString("Financial data context (values in ₹ Crore):\n")
	b.WriteString(mustJSON(series))
	b.WriteString("\n\nUser question: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nProvide a comprehensive answer based on the financial data above. ")
	b.WriteString("Include specific numbers, trends, and insights. ")
	b.WriteString("If the data shows multiple years, calculate year-over-year changes where relevant.")
	return b.String()
}

func metricCatalog() string {
	tags := constants.AllMetricTypes()
	parts := make([]string, len(tags))
	for i, m := range tags {
		parts[i] = string(m) + " (" + constants.DisplayName(m) + ")"
	}
	return strings.Join(parts, ", ")
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
