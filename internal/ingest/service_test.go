package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/parser"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

func setupService(t *testing.T) (*Service, *gorm.DB, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "in-memory database should open")
	require.NoError(t, db.AutoMigrate(&entity.Company{}, &entity.SourceDocument{}, &entity.FinancialRecord{}),
		"migration should succeed")

	vocab, err := parser.LoadVocabulary("")
	require.NoError(t, err, "built-in vocabulary should load")
	pipeline, err := parser.New(vocab, nil)
	require.NoError(t, err, "pipeline should construct")

	dir := t.TempDir()
	svc := NewService(
		repository.NewCompanyRepository(db, nil),
		repository.NewDocumentRepository(db, nil),
		repository.NewRecordRepository(db, nil),
		pipeline,
		nil, // no event producer in tests
		common.UploadConfig{Dir: dir, MaxBytes: 1 << 20},
		nil,
	)
	return svc, db, dir
}

// buildPDF assembles a minimal single-page PDF around the given content
// stream, with a correct xref table so the reader accepts it.
func buildPDF(t *testing.T, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>\nendobj\n")
	obj(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content))
	obj("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

const statementContent = `BT
/F1 12 Tf
72 760 Td
(Consolidated Balance Sheet) Tj
0 -20 Td
(Particulars) Tj
140 0 Td
(FY 2023-24) Tj
90 0 Td
(FY 2022-23) Tj
0 -20 Td
(Total Assets) Tj
140 0 Td
(5,20,000) Tj
90 0 Td
(4,50,000) Tj
ET`

func uploadRequest(pdf []byte) UploadRequest {
	return UploadRequest{
		CompanyName: "Jio Platforms Limited",
		Filename:    "jio_annual_report_2023-24.pdf",
		Size:        int64(len(pdf)),
		Content:     bytes.NewReader(pdf),
	}
}

// TestUploadProcessesPDF checks the whole flow: company creation, storage,
// extraction, record persistence, and the PROCESSED transition.
func TestUploadProcessesPDF(t *testing.T) {
	svc, db, dir := setupService(t)
	pdf := buildPDF(t, statementContent)

	res, err := svc.Upload(context.Background(), uploadRequest(pdf))
	require.NoError(t, err, "a clean upload should succeed")

	assert.Equal(t, 2, res.RecordsExtracted, "two years of total assets should extract")
	assert.False(t, res.Deduplicated, "the first upload is not a duplicate")
	assert.Empty(t, res.Diagnostics, "a clean table should produce no diagnostics")

	var company entity.Company
	require.NoError(t, db.First(&company, "name = ?", "Jio Platforms Limited").Error,
		"the company should be created")
	assert.Equal(t, company.ID, res.CompanyID, "the result should reference the company")

	var doc entity.SourceDocument
	require.NoError(t, db.First(&doc, "id = ?", res.DocumentID).Error, "the document row should exist")
	assert.Equal(t, constants.DocumentProcessed, doc.Status, "the document should be PROCESSED")
	assert.Equal(t, 2, doc.RecordCount, "the record count should be persisted")
	assert.Equal(t, int64(len(pdf)), doc.SizeBytes, "the stored size should match the bytes written")
	assert.NotNil(t, doc.ProcessedAt, "processing should be timestamped")
	assert.True(t, strings.HasPrefix(doc.StoragePath, dir), "the file should live under the upload dir")
	assert.NotEqual(t, "jio_annual_report_2023-24.pdf", doc.StoragePath, "storage uses a generated name, not the client's")

	stored, err := os.ReadFile(doc.StoragePath)
	require.NoError(t, err, "the stored file should be readable")
	assert.Equal(t, pdf, stored, "the stored bytes should match the upload")

	var count int64
	require.NoError(t, db.Model(&entity.FinancialRecord{}).Where("company_id = ?", company.ID).Count(&count).Error,
		"records should be countable")
	assert.Equal(t, int64(2), count, "both extracted records should persist")
}

// TestUploadRejectsNonPDF checks the extension gate.
func TestUploadRejectsNonPDF(t *testing.T) {
	svc, _, _ := setupService(t)

	req := uploadRequest([]byte("not a pdf"))
	req.Filename = "balance_sheet.xlsx"
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrInvalidInput, "non-PDF uploads should be rejected as invalid input")
}

// TestUploadRejectsEmptyCompany checks the company name requirement.
func TestUploadRejectsEmptyCompany(t *testing.T) {
	svc, _, _ := setupService(t)

	req := uploadRequest(buildPDF(t, statementContent))
	req.CompanyName = "   "
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrInvalidInput, "a blank company name should be rejected")
}

// TestUploadRejectsOversizedDeclared checks the declared-size gate.
func TestUploadRejectsOversizedDeclared(t *testing.T) {
	svc, _, _ := setupService(t)

	req := uploadRequest(buildPDF(t, statementContent))
	req.Size = 2 << 20
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrInvalidInput, "a declared size over the cap should be rejected")
}

// TestUploadRejectsOversizedStream checks that a lying client is caught
// while the bytes stream in, and the partial file is removed.
func TestUploadRejectsOversizedStream(t *testing.T) {
	svc, _, dir := setupService(t)

	big := bytes.Repeat([]byte("x"), (1<<20)+1)
	req := UploadRequest{
		CompanyName: "Jio Platforms Limited",
		Filename:    "big.pdf",
		Size:        100, // lies
		Content:     bytes.NewReader(big),
	}
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrInvalidInput, "an oversized stream should be rejected mid-copy")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "upload dir should be listable")
	assert.Empty(t, entries, "the partial file should be cleaned up")
}

// TestUploadDeduplicates checks that identical bytes reuse the stored
// document instead of writing a second copy.
func TestUploadDeduplicates(t *testing.T) {
	svc, db, dir := setupService(t)
	pdf := buildPDF(t, statementContent)

	first, err := svc.Upload(context.Background(), uploadRequest(pdf))
	require.NoError(t, err, "first upload should succeed")

	second, err := svc.Upload(context.Background(), uploadRequest(pdf))
	require.NoError(t, err, "re-uploading the same bytes should succeed")

	assert.True(t, second.Deduplicated, "the second upload should be flagged as a duplicate")
	assert.Equal(t, first.DocumentID, second.DocumentID, "both uploads should reference the same document")
	assert.Equal(t, first.RecordsExtracted, second.RecordsExtracted, "re-processing yields the same records")

	var docCount int64
	require.NoError(t, db.Model(&entity.SourceDocument{}).Count(&docCount).Error, "documents should be countable")
	assert.Equal(t, int64(1), docCount, "only one document row should exist")

	var recCount int64
	require.NoError(t, db.Model(&entity.FinancialRecord{}).Count(&recCount).Error, "records should be countable")
	assert.Equal(t, int64(2), recCount, "the upsert must not duplicate records")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "upload dir should be listable")
	assert.Len(t, entries, 1, "the duplicate copy should be removed from disk")
}

// TestUploadUnreadableDocumentFails checks the FAILED transition for bytes
// the reader cannot open.
func TestUploadUnreadableDocumentFails(t *testing.T) {
	svc, db, _ := setupService(t)

	req := uploadRequest([]byte("%PDF-1.4 truncated garbage"))
	_, err := svc.Upload(context.Background(), req)
	require.Error(t, err, "an unreadable document should fail the upload")

	var doc entity.SourceDocument
	require.NoError(t, db.First(&doc).Error, "the document row should survive the failure")
	assert.Equal(t, constants.DocumentFailed, doc.Status, "the document should be FAILED")
	assert.NotEmpty(t, doc.ErrorSummary, "the failure reason should be recorded")
}

// TestUploadTextlessDocumentProcesses checks that a readable PDF with no
// extractable text still completes, carrying a diagnostic instead of an
// error.
func TestUploadTextlessDocumentProcesses(t *testing.T) {
	svc, db, _ := setupService(t)

	pdf := buildPDF(t, "0 0 612 792 re f")
	res, err := svc.Upload(context.Background(), uploadRequest(pdf))
	require.NoError(t, err, "a textless document is processed, not failed")

	assert.Zero(t, res.RecordsExtracted, "nothing should extract from a graphics-only page")
	require.NotEmpty(t, res.Diagnostics, "a diagnostic should explain the empty result")
	assert.Contains(t, res.Diagnostics[0].Reason, "no extractable text", "the diagnostic should name the cause")

	var doc entity.SourceDocument
	require.NoError(t, db.First(&doc).Error, "the document row should exist")
	assert.Equal(t, constants.DocumentProcessed, doc.Status, "a textless document still lands PROCESSED")
	assert.Equal(t, 0, doc.RecordCount, "zero records should be recorded")
	assert.Equal(t, len(res.Diagnostics), doc.DiagnosticCount, "the diagnostic count should be persisted")
}
