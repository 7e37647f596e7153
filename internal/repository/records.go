package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

// RecordFilter narrows record listings. Zero values mean "no constraint";
// CompanyIDs additionally scopes results to the caller's visible companies
// when non-nil. Year bounds compare as strings, which orders correctly for
// the label forms in use ("2022-23" < "2023-24").
type RecordFilter struct {
	CompanyIDs []uuid.UUID
	CompanyID  uuid.UUID
	MetricType constants.MetricType
	FiscalYear string
	StartYear  string
	EndYear    string
}

type RecordRepository interface {
	// UpsertBatch writes a document's records in one transaction. Existing
	// rows with the same (company, fiscal year, metric) are overwritten,
	// so re-uploading a statement refreshes its figures.
	UpsertBatch(ctx context.Context, records []*entity.FinancialRecord) error
	List(ctx context.Context, filter RecordFilter) ([]*entity.FinancialRecord, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.FinancialRecord, error)
	// ListRecentByMetrics returns records for the given metrics ordered most
	// recent fiscal year first, capped at limit rows. companyIDs scopes like
	// RecordFilter.CompanyIDs.
	ListRecentByMetrics(ctx context.Context, companyIDs []uuid.UUID, metrics []constants.MetricType, limit int) ([]*entity.FinancialRecord, error)
}

type recordRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecordRepository(db *gorm.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) UpsertBatch(ctx context.Context, records []*entity.FinancialRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"},
				{Name: "fiscal_year"},
				{Name: "metric_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"value", "unit", "description", "document_id", "updated_at",
			}),
		}).Create(&records).Error
	})
	if err != nil {
		r.logger.Error("failed to upsert records", "count", len(records), "error", err)
		return mapErr(err)
	}
	return nil
}

func (r *recordRepository) List(ctx context.Context, filter RecordFilter) ([]*entity.FinancialRecord, error) {
	q := r.db.WithContext(ctx).Model(&entity.FinancialRecord{})
	if filter.CompanyIDs != nil {
		q = q.Where("company_id IN ?", filter.CompanyIDs)
	}
	if filter.CompanyID != uuid.Nil {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.MetricType != "" {
		q = q.Where("metric_type = ?", filter.MetricType)
	}
	if filter.FiscalYear != "" {
		q = q.Where("fiscal_year = ?", filter.FiscalYear)
	}
	if filter.StartYear != "" {
		q = q.Where("fiscal_year >= ?", filter.StartYear)
	}
	if filter.EndYear != "" {
		q = q.Where("fiscal_year <= ?", filter.EndYear)
	}

	var records []*entity.FinancialRecord
	if err := q.Order("fiscal_year asc, metric_type asc").Find(&records).Error; err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.FinancialRecord, error) {
	return r.List(ctx, RecordFilter{CompanyID: companyID})
}

func (r *recordRepository) ListRecentByMetrics(ctx context.Context, companyIDs []uuid.UUID, metrics []constants.MetricType, limit int) ([]*entity.FinancialRecord, error) {
	q := r.db.WithContext(ctx).Model(&entity.FinancialRecord{}).
		Where("metric_type IN ?", metrics)
	if companyIDs != nil {
		q = q.Where("company_id IN ?", companyIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []*entity.FinancialRecord
	if err := q.Order("fiscal_year desc, metric_type asc").Find(&records).Error; err != nil {
		r.logger.Error("failed to list recent records", "error", err)
		return nil, err
	}
	return records, nil
}
