package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// chatContextRows caps how many records feed the chat data context, roughly
// three fiscal years across the default metric set.
const chatContextRows = 15

// Service answers natural-language questions over stored records. It asks
// the configured Completer first and falls back to the deterministic
// answerer whenever the model is unconfigured or fails, so chat keeps
// working without an API key.
type Service struct {
	records   repository.RecordRepository
	completer Completer
	logger    *slog.Logger
}

func NewService(records repository.RecordRepository, completer Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, completer: completer, logger: logger}
}

// Chat answers question using records from the caller's visible companies.
// visible follows repository.RecordFilter.CompanyIDs semantics: nil means
// unrestricted, empty means nothing is visible.
func (s *Service) Chat(ctx context.Context, question string, visible []uuid.UUID) (Answer, error) {
	start := time.Now()

	metrics := DetectMetrics(question)
	records, err := s.records.ListRecentByMetrics(ctx, visible, metrics, chatContextRows)
	if err != nil {
		return Answer{}, err
	}

	series := groupSeries(metrics, records)
	if len(series) == 0 {
		s.logger.Info("llm.chat.no_data", "metrics", len(metrics))
		return Answer{
			Response: "I couldn't find relevant financial data for your question. " +
				"Please try asking about specific metrics like revenue, profit, assets, or liabilities.",
		}, nil
	}

	chart := BuildChart(series, question)

	response := ""
	source := "fallback"
	if s.completer != nil && s.completer.Available() {
		response, err = s.completer.Complete(ctx, SystemPrompt(), UserPrompt(question, series))
		if err != nil {
			s.logger.Warn("llm.chat.fallback", "error", err)
			response = ""
		} else {
			source = "model"
		}
	}
	if response == "" {
		response = FallbackAnswer(series, question)
	}

	s.logger.Info("llm.chat.ok",
		"source", source,
		"metrics", len(series),
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Answer{Response: response, Chart: chart}, nil
}

// groupSeries buckets records per metric preserving the detected-metric
// order and the repository's newest-first ordering within each metric.
func groupSeries(metrics []constants.MetricType, records []*entity.FinancialRecord) []MetricSeries {
	byMetric := map[constants.MetricType][]SeriesPoint{}
	for _, rec := range records {
		byMetric[rec.MetricType] = append(byMetric[rec.MetricType], SeriesPoint{
			FiscalYear:  rec.FiscalYear,
			Value:       rec.Value,
			Description: rec.Description,
		})
	}

	var series []MetricSeries
	for _, m := range metrics {
		if points, ok := byMetric[m]; ok {
			series = append(series, MetricSeries{Metric: m, Points: points})
		}
	}
	return series
}
