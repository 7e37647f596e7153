package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	records   repository.RecordRepository
	documents repository.DocumentRepository
	logger    *slog.Logger
}

func NewService(records repository.RecordRepository, documents repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, documents: documents, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) for one company's
// records, optionally bounded by fiscal year labels (inclusive). Rows come
// out fiscal year ascending, the order the dashboard tables use.
func (s *Service) ExportRecordsXLSX(ctx context.Context, companyID uuid.UUID, startYear, endYear string) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.List(ctx, repository.RecordFilter{
		CompanyID: companyID,
		StartYear: startYear,
		EndYear:   endYear,
	})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Financial Records"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Fiscal Year",
		"Metric",
		"Value (₹ Crore)",
		"Unit",
		"Description",
		"Source Document",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// Records from the same upload share a document; one lookup each.
	filenames := map[uuid.UUID]string{}
	sourceName := func(docID uuid.UUID) string {
		if docID == uuid.Nil {
			return ""
		}
		if name, ok := filenames[docID]; ok {
			return name
		}
		name := ""
		if doc, err := s.documents.GetByID(ctx, docID); err == nil && doc != nil {
			name = doc.Filename
		}
		filenames[docID] = name
		return name
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.FiscalYear)
		write(2, constants.DisplayName(r.MetricType))
		write(3, r.Value)
		write(4, r.Unit)
		write(5, truncate(r.Description, 140))
		write(6, sourceName(r.DocumentID))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // fiscal year
	_ = f.SetColWidth(sheet, "B", "B", 24) // metric
	_ = f.SetColWidth(sheet, "C", "C", 16) // value
	_ = f.SetColWidth(sheet, "D", "D", 10) // unit
	_ = f.SetColWidth(sheet, "E", "E", 48) // description
	_ = f.SetColWidth(sheet, "F", "F", 40) // source filename

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"company_id", companyID.String(),
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
