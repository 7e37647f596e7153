package llm

import (
	"context"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// SeriesPoint is one fiscal year's value for a metric, in ₹ Crore.
type SeriesPoint struct {
	FiscalYear  string  `json:"fiscal_year"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
}

// MetricSeries carries one metric's values ordered most recent fiscal year
// first. The chat data context and the fallback answerer both consume this
// shape.
type MetricSeries struct {
	Metric constants.MetricType `json:"metric"`
	Points []SeriesPoint        `json:"points"`
}

// Answer is the chat response payload: prose plus an optional chart
// suggestion the dashboard can render directly.
type Answer struct {
	Response string     `json:"response"`
	Chart    *ChartData `json:"chart,omitempty"`
}

// Completer is the interface the chat service depends on. Implementations
// report Available so callers can skip straight to the fallback answerer
// when no provider is configured.
type Completer interface {
	Available() bool
	Complete(ctx context.Context, system, user string) (string, error)
}
