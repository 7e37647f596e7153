package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// SourceDocument is an uploaded balance-sheet PDF and its processing outcome.
// Status moves PENDING → PROCESSED or FAILED exactly once per extraction run.
type SourceDocument struct {
	ID              uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID                `gorm:"type:uuid;not null;index" json:"company_id"`
	Filename        string                   `gorm:"size:255;not null" json:"filename"`
	StoragePath     string                   `gorm:"size:512;not null" json:"storage_path"`
	ContentHash     string                   `gorm:"size:64;index" json:"content_hash"`
	SizeBytes       int64                    `json:"size_bytes"`
	Status          constants.DocumentStatus `gorm:"size:16;not null" json:"status"`
	RecordCount     int                      `json:"record_count"`
	DiagnosticCount int                      `json:"diagnostic_count"`
	ErrorSummary    string                   `gorm:"size:512" json:"error_summary,omitempty"`
	UploadedAt      time.Time                `json:"uploaded_at"`
	ProcessedAt     *time.Time               `json:"processed_at,omitempty"`
}
