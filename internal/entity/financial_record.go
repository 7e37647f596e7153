package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// FinancialRecord is one extracted metric value for a company and fiscal year,
// normalized to the canonical unit (₹ Crore). Records are written once by the
// extraction pipeline; re-processing a document upserts on the
// (company_id, fiscal_year, metric_type) key instead of duplicating rows.
type FinancialRecord struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_company_year_metric" json:"company_id"`
	DocumentID  uuid.UUID            `gorm:"type:uuid;index" json:"document_id"`
	FiscalYear  string               `gorm:"size:16;not null;uniqueIndex:idx_company_year_metric" json:"fiscal_year"`
	MetricType  constants.MetricType `gorm:"size:64;not null;uniqueIndex:idx_company_year_metric" json:"metric_type"`
	Value       float64              `gorm:"not null" json:"value"`
	Unit        string               `gorm:"size:16;not null" json:"unit"`
	Description string               `gorm:"size:512" json:"description,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
