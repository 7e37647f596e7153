package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// metricKeywords maps question wording to the metrics worth fetching.
// Matching is substring-based so "profitability" still hits "profit".
var metricKeywords = []struct {
	metric constants.MetricType
	words  []string
}{
	{constants.NetProfit, []string{"profit", "income", "earnings"}},
	{constants.Revenue, []string{"revenue", "sales", "income"}},
	{constants.TotalAssets, []string{"assets", "asset"}},
	{constants.TotalLiabilities, []string{"liabilities", "liability", "debt"}},
	{constants.TotalEquity, []string{"equity", "shareholder"}},
	{constants.CashFlow, []string{"cash", "flow"}},
}

// defaultChatMetrics is fetched when the question names no metric at all.
var defaultChatMetrics = []constants.MetricType{
	constants.TotalAssets,
	constants.TotalLiabilities,
	constants.TotalEquity,
	constants.Revenue,
	constants.NetProfit,
}

// DetectMetrics returns the metrics a question asks about, or the default
// set when nothing matches.
func DetectMetrics(question string) []constants.MetricType {
	q := strings.ToLower(question)
	var metrics []constants.MetricType
	for _, kw := range metricKeywords {
		for _, w := range kw.words {
			if strings.Contains(q, w) {
				metrics = append(metrics, kw.metric)
				break
			}
		}
	}
	if len(metrics) == 0 {
		return append([]constants.MetricType(nil), defaultChatMetrics...)
	}
	return metrics
}

// fallbackPhrases drive the canned year-over-year sentences, first match
// wins. The wording intentionally varies a little between metrics so
// repeated questions do not read templated.
var fallbackPhrases = []struct {
	metric constants.MetricType
	words  []string
	intro  string
	verb   string
	tail   string
}{
	{constants.NetProfit, []string{"profit", "income", "earnings"}, "Based on the data, the net profit was", "represents", " year-over-year"},
	{constants.Revenue, []string{"revenue", "sales"}, "The revenue was", "shows", " year-over-year"},
	{constants.TotalAssets, []string{"assets"}, "Total assets were", "represents", ""},
	{constants.TotalLiabilities, []string{"liabilities", "debt"}, "Total liabilities were", "shows", ""},
	{constants.TotalEquity, []string{"equity", "shareholder"}, "Total equity was", "represents", ""},
	{constants.CashFlow, []string{"cash", "flow"}, "Cash flow was", "shows", ""},
}

// FallbackAnswer produces a deterministic reply when no language model is
// reachable: a latest-versus-previous comparison for the first metric the
// question matches, or a generic pointer at the data table.
func FallbackAnswer(series []MetricSeries, question string) string {
	q := strings.ToLower(question)
	byMetric := map[constants.MetricType]MetricSeries{}
	for _, s := range series {
		byMetric[s.Metric] = s
	}

	for _, p := range fallbackPhrases {
		matched := false
		for _, w := range p.words {
			if strings.Contains(q, w) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		s, ok := byMetric[p.metric]
		if !ok || len(s.Points) < 2 {
			continue
		}
		latest, previous := s.Points[0], s.Points[1]
		var change float64
		if previous.Value != 0 {
			change = (latest.Value - previous.Value) / previous.Value * 100
		}
		return fmt.Sprintf("%s ₹%s Cr in %s and ₹%s Cr in %s. This %s a %+.1f%% change%s.",
			p.intro,
			formatCrore(latest.Value), latest.FiscalYear,
			formatCrore(previous.Value), previous.FiscalYear,
			p.verb, change, p.tail)
	}

	if len(series) > 0 {
		names := make([]string, len(series))
		for i, s := range series {
			names[i] = string(s.Metric)
		}
		return "I found data for the following metrics: " + strings.Join(names, ", ") +
			". The data shows financial information across multiple years. " +
			"You can view the detailed numbers in the data table below."
	}

	return "I couldn't find specific financial data for your question. " +
		"Please try asking about revenue, profit, assets, or liabilities."
}

// formatCrore renders a value rounded to whole crore with comma grouping,
// e.g. 22500 → "22,500".
func formatCrore(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
