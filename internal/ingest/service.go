package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/events"
	"github.com/preyalameta02/balance-sheet-analysis/internal/parser"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// UploadRequest carries one incoming balance-sheet PDF.
type UploadRequest struct {
	CompanyName string
	Filename    string
	Size        int64
	Content     io.Reader
}

// UploadResult reports what an upload produced.
type UploadResult struct {
	DocumentID       uuid.UUID
	CompanyID        uuid.UUID
	Deduplicated     bool
	RecordsExtracted int
	Diagnostics      []parser.Diagnostic
}

// Service owns the upload flow: validate, store under a uuid name, dedup by
// content hash, run extraction, persist records, and move the document
// through its status transitions. Extraction runs synchronously so the
// response can report what was extracted.
type Service struct {
	companies repository.CompanyRepository
	documents repository.DocumentRepository
	records   repository.RecordRepository
	pipeline  *parser.Pipeline
	producer  *events.Producer
	cfg       common.UploadConfig
	logger    *slog.Logger
}

func NewService(
	companies repository.CompanyRepository,
	documents repository.DocumentRepository,
	records repository.RecordRepository,
	pipeline *parser.Pipeline,
	producer *events.Producer,
	cfg common.UploadConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		companies: companies,
		documents: documents,
		records:   records,
		pipeline:  pipeline,
		producer:  producer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Upload validates and processes one PDF. A failed extraction marks the
// document FAILED and returns the error; the document row survives so the
// failure is visible in listings.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	start := time.Now()

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return nil, fmt.Errorf("%w: company_name is required", common.ErrInvalidInput)
	}
	if !constants.ExtensionAllowed(filepath.Ext(req.Filename)) {
		return nil, fmt.Errorf("%w: only PDF files are allowed", common.ErrInvalidInput)
	}
	if s.cfg.MaxBytes > 0 && req.Size > s.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: file size exceeds the %d byte limit", common.ErrInvalidInput, s.cfg.MaxBytes)
	}

	company, created, err := s.companies.GetOrCreate(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("ingest.company.created", "company_id", company.ID.String(), "name", company.Name)
	}

	storagePath, hashHex, size, err := s.store(req.Content)
	if err != nil {
		return nil, err
	}

	doc, dedup, err := s.resolveDocument(ctx, company.ID, req.Filename, storagePath, hashHex, size)
	if err != nil {
		return nil, err
	}

	s.producer.Produce(events.DocumentUploaded, doc)

	res, err := s.process(ctx, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingest.upload.ok",
		"document_id", doc.ID.String(),
		"company_id", company.ID.String(),
		"filename", doc.Filename,
		"deduplicated", dedup,
		"records", len(res.Records),
		"diagnostics", len(res.Diagnostics),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &UploadResult{
		DocumentID:       doc.ID,
		CompanyID:        company.ID,
		Deduplicated:     dedup,
		RecordsExtracted: len(res.Records),
		Diagnostics:      res.Diagnostics,
	}, nil
}

// store streams the upload to disk under a uuid name while hashing it.
// The size cap is enforced again during the copy since the declared size
// comes from the client.
func (s *Service) store(content io.Reader) (path, hashHex string, size int64, err error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	path = filepath.Join(s.cfg.Dir, uuid.New().String()+".pdf")

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("create upload file: %w", err)
	}
	defer func(f *os.File) {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("ingest.store.close_error", "path", path, "error", cerr)
		}
	}(f)

	h := sha256.New()
	src := content
	if s.cfg.MaxBytes > 0 {
		src = io.LimitReader(content, s.cfg.MaxBytes+1)
	}
	size, err = io.Copy(io.MultiWriter(f, h), src)
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("store upload: %w", err)
	}
	if s.cfg.MaxBytes > 0 && size > s.cfg.MaxBytes {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("%w: file size exceeds the %d byte limit", common.ErrInvalidInput, s.cfg.MaxBytes)
	}
	return path, hex.EncodeToString(h.Sum(nil)), size, nil
}

// resolveDocument either reuses an existing row for identical bytes or
// creates a fresh one. On dedup the newly stored copy is removed and the
// original storage path is processed again.
func (s *Service) resolveDocument(ctx context.Context, companyID uuid.UUID, filename, storagePath, hashHex string, size int64) (*entity.SourceDocument, bool, error) {
	existing, err := s.documents.GetByCompanyAndHash(ctx, companyID, hashHex)
	if err == nil && existing != nil {
		_ = os.Remove(storagePath)
		s.logger.Info("ingest.upload.deduplicated",
			"document_id", existing.ID.String(),
			"content_hash", hashHex,
		)
		return existing, true, nil
	}

	doc := &entity.SourceDocument{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Filename:    filename,
		StoragePath: storagePath,
		ContentHash: hashHex,
		SizeBytes:   size,
		Status:      constants.DocumentPending,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		_ = os.Remove(storagePath)
		return nil, false, err
	}
	return doc, false, nil
}

// process runs extraction for a stored document and persists the outcome.
func (s *Service) process(ctx context.Context, doc *entity.SourceDocument) (*parser.Result, error) {
	f, err := os.Open(doc.StoragePath)
	if err != nil {
		s.fail(ctx, doc, "open stored file: "+err.Error())
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	defer func(f *os.File) {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("ingest.process.close_error", "path", doc.StoragePath, "error", cerr)
		}
	}(f)

	res, err := s.pipeline.Run(ctx, f, doc.Filename)
	if err != nil {
		s.fail(ctx, doc, err.Error())
		return nil, fmt.Errorf("extract document: %w", err)
	}

	records := make([]*entity.FinancialRecord, 0, len(res.Records))
	for _, c := range res.Records {
		records = append(records, &entity.FinancialRecord{
			ID:          uuid.New(),
			CompanyID:   doc.CompanyID,
			DocumentID:  doc.ID,
			FiscalYear:  c.FiscalYear,
			MetricType:  c.MetricType,
			Value:       c.Value,
			Unit:        c.Unit,
			Description: c.Description,
		})
	}
	if err := s.records.UpsertBatch(ctx, records); err != nil {
		s.fail(ctx, doc, "persist records: "+err.Error())
		return nil, fmt.Errorf("persist records: %w", err)
	}

	if err := s.documents.MarkProcessed(ctx, doc.ID, len(records), len(res.Diagnostics)); err != nil {
		return nil, err
	}
	s.producer.Produce(events.DocumentProcessed, doc)
	return res, nil
}

func (s *Service) fail(ctx context.Context, doc *entity.SourceDocument, summary string) {
	if err := s.documents.MarkFailed(ctx, doc.ID, summary); err != nil {
		s.logger.Error("ingest.process.mark_failed_error", "document_id", doc.ID.String(), "error", err)
	}
	s.producer.Produce(events.DocumentFailed, doc)
}
