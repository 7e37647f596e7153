package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.SourceDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SourceDocument, error)
	// GetByCompanyAndHash finds a previously ingested document with the same
	// content hash, which is how re-uploads are detected.
	GetByCompanyAndHash(ctx context.Context, companyID uuid.UUID, hash string) (*entity.SourceDocument, error)
	// List returns documents for the given companies, newest first. A nil
	// slice means no company restriction.
	List(ctx context.Context, companyIDs []uuid.UUID) ([]*entity.SourceDocument, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, recordCount, diagnosticCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorSummary string) error
}

type documentRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDocumentRepository(db *gorm.DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, logger: logger}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.SourceDocument) error {
	if err := mapErr(r.db.WithContext(ctx).Create(doc).Error); err != nil {
		r.logger.Error("failed to create document", "filename", doc.Filename, "error", err)
		return err
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SourceDocument, error) {
	var doc entity.SourceDocument
	if err := mapErr(r.db.WithContext(ctx).First(&doc, "id = ?", id).Error); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetByCompanyAndHash(ctx context.Context, companyID uuid.UUID, hash string) (*entity.SourceDocument, error) {
	var doc entity.SourceDocument
	err := r.db.WithContext(ctx).
		First(&doc, "company_id = ? AND content_hash = ?", companyID, hash).Error
	if err := mapErr(err); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, companyIDs []uuid.UUID) ([]*entity.SourceDocument, error) {
	q := r.db.WithContext(ctx).Model(&entity.SourceDocument{})
	if companyIDs != nil {
		q = q.Where("company_id IN ?", companyIDs)
	}
	var docs []*entity.SourceDocument
	if err := q.Order("uploaded_at desc").Find(&docs).Error; err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) MarkProcessed(ctx context.Context, id uuid.UUID, recordCount, diagnosticCount int) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&entity.SourceDocument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           constants.DocumentProcessed,
			"record_count":     recordCount,
			"diagnostic_count": diagnosticCount,
			"error_summary":    "",
			"processed_at":     now,
		}).Error
	if err != nil {
		r.logger.Error("failed to mark document processed", "document_id", id, "error", err)
		return err
	}
	return nil
}

func (r *documentRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorSummary string) error {
	const maxSummary = 512
	if len(errorSummary) > maxSummary {
		errorSummary = errorSummary[:maxSummary]
	}
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&entity.SourceDocument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        constants.DocumentFailed,
			"error_summary": errorSummary,
			"processed_at":  now,
		}).Error
	if err != nil {
		r.logger.Error("failed to mark document failed", "document_id", id, "error", err)
		return err
	}
	return nil
}
