package constants

import (
	"strings"
)

// MetricType is the canonical financial line-item tag stored on financial records.
type MetricType string

const (
	TotalAssets           MetricType = "total_assets"
	TotalLiabilities      MetricType = "total_liabilities"
	TotalEquity           MetricType = "total_equity"
	Revenue               MetricType = "revenue"
	NetProfit             MetricType = "net_profit"
	ProfitBeforeTax       MetricType = "profit_before_tax"
	CashFlow              MetricType = "cash_flow"
	CurrentAssets         MetricType = "current_assets"
	NonCurrentAssets      MetricType = "non_current_assets"
	CurrentLiabilities    MetricType = "current_liabilities"
	NonCurrentLiabilities MetricType = "non_current_liabilities"
)

var allMetricTypes = []MetricType{
	TotalAssets,
	TotalLiabilities,
	TotalEquity,
	Revenue,
	NetProfit,
	ProfitBeforeTax,
	CashFlow,
	CurrentAssets,
	NonCurrentAssets,
	CurrentLiabilities,
	NonCurrentLiabilities,
}

// displayNames maps tags to the labels the dashboard shows.
var displayNames = map[MetricType]string{
	TotalAssets:           "Total Assets",
	TotalLiabilities:      "Total Liabilities",
	TotalEquity:           "Total Equity",
	Revenue:               "Revenue",
	NetProfit:             "Net Profit",
	ProfitBeforeTax:       "Profit Before Tax",
	CashFlow:              "Cash Flow",
	CurrentAssets:         "Current Assets",
	NonCurrentAssets:      "Non-Current Assets",
	CurrentLiabilities:    "Current Liabilities",
	NonCurrentLiabilities: "Non-Current Liabilities",
}

// AllMetricTypes returns the fixed vocabulary in stable order.
func AllMetricTypes() []MetricType {
	result := make([]MetricType, len(allMetricTypes))
	copy(result, allMetricTypes)
	return result
}

func MetricTypeStrings() []string {
	result := make([]string, len(allMetricTypes))
	for i, m := range allMetricTypes {
		result[i] = string(m)
	}
	return result
}

// DisplayName returns the human-readable label for a tag.
func DisplayName(m MetricType) string {
	if label, ok := displayNames[m]; ok {
		return label
	}
	return string(m)
}

// ParseMetricType matches an input string against the fixed vocabulary tags.
func ParseMetricType(input string) (MetricType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, m := range allMetricTypes {
		if normalized == string(m) {
			return m, true
		}
	}
	return "", false
}
