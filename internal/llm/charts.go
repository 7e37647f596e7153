package llm

import (
	"sort"
	"strings"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// chartPalette cycles through the dashboard's chart.js colors, one per
// dataset.
var chartPalette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF"}

// Dataset is one chart.js series. Data entries are pointers so a metric
// missing a year serializes as null and the chart shows a gap instead of a
// zero.
type Dataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"borderColor"`
	BackgroundColor string     `json:"backgroundColor"`
	Fill            bool       `json:"fill"`
}

// ChartData is the chart.js payload the dashboard renders without further
// shaping.
type ChartData struct {
	Type     string    `json:"type,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// SuggestChartType picks a chart style from the question's wording: trend
// words mean line, comparison words mean bar, and line is the default.
func SuggestChartType(question string) string {
	q := strings.ToLower(question)
	for _, w := range []string{"compare", "vs", "versus"} {
		if strings.Contains(q, w) {
			return "bar"
		}
	}
	return "line"
}

// BuildChart shapes the chat data context into a chart suggestion: labels
// are the union of fiscal years ascending, one dataset per metric.
func BuildChart(series []MetricSeries, question string) *ChartData {
	if len(series) == 0 {
		return nil
	}

	yearSet := map[string]struct{}{}
	for _, s := range series {
		for _, p := range s.Points {
			yearSet[p.FiscalYear] = struct{}{}
		}
	}
	years := make([]string, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Strings(years)

	chart := &ChartData{
		Type:   SuggestChartType(question),
		Labels: years,
	}
	for i, s := range series {
		byYear := map[string]float64{}
		for _, p := range s.Points {
			byYear[p.FiscalYear] = p.Value
		}
		data := make([]*float64, len(years))
		for j, y := range years {
			if v, ok := byYear[y]; ok {
				value := v
				data[j] = &value
			}
		}
		color := chartPalette[i%len(chartPalette)]
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:           constants.DisplayName(s.Metric),
			Data:            data,
			BorderColor:     color,
			BackgroundColor: color,
		})
	}
	return chart
}

// MetricChart shapes one metric's records for the chart-data endpoint.
// Points must already be ordered oldest fiscal year first.
func MetricChart(metric constants.MetricType, points []SeriesPoint) *ChartData {
	labels := make([]string, len(points))
	data := make([]*float64, len(points))
	for i, p := range points {
		labels[i] = p.FiscalYear
		value := p.Value
		data[i] = &value
	}
	return &ChartData{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           constants.DisplayName(metric),
			Data:            data,
			BorderColor:     "#36A2EB",
			BackgroundColor: "#36A2EB",
		}},
	}
}
