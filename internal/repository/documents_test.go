package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

func document(companyID uuid.UUID, filename, hash string, uploadedAt time.Time) *entity.SourceDocument {
	return &entity.SourceDocument{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Filename:    filename,
		StoragePath: "uploads/" + filename,
		ContentHash: hash,
		SizeBytes:   1024,
		Status:      constants.DocumentPending,
		UploadedAt:  uploadedAt,
	}
}

// TestCreateAndGetDocument checks document persistence.
func TestCreateAndGetDocument(t *testing.T) {
	repo := NewDocumentRepository(SetupTestDB(t), nil)
	ctx := context.Background()

	doc := document(uuid.New(), "fy24.pdf", "abc123", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc), "Create should succeed")

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err, "GetByID should find the document")
	assert.Equal(t, constants.DocumentPending, got.Status, "new documents start pending")
	assert.Nil(t, got.ProcessedAt, "a pending document has no processed time")
}

// TestGetByCompanyAndHash checks re-upload detection by content hash.
func TestGetByCompanyAndHash(t *testing.T) {
	repo := NewDocumentRepository(SetupTestDB(t), nil)
	ctx := context.Background()

	companyID := uuid.New()
	doc := document(companyID, "fy24.pdf", "deadbeef", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc), "Create should succeed")

	found, err := repo.GetByCompanyAndHash(ctx, companyID, "deadbeef")
	require.NoError(t, err, "the hash lookup should find the document")
	assert.Equal(t, doc.ID, found.ID, "the lookup should return the matching row")

	_, err = repo.GetByCompanyAndHash(ctx, companyID, "cafef00d")
	assert.ErrorIs(t, err, common.ErrNotFound, "an unknown hash should map to ErrNotFound")

	_, err = repo.GetByCompanyAndHash(ctx, uuid.New(), "deadbeef")
	assert.ErrorIs(t, err, common.ErrNotFound, "the same hash under another company is not a match")
}

// TestMarkProcessed checks the terminal success transition.
func TestMarkProcessed(t *testing.T) {
	repo := NewDocumentRepository(SetupTestDB(t), nil)
	ctx := context.Background()

	doc := document(uuid.New(), "fy24.pdf", "h1", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc), "Create should succeed")

	require.NoError(t, repo.MarkProcessed(ctx, doc.ID, 12, 3), "MarkProcessed should succeed")

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err, "GetByID should find the document")
	assert.Equal(t, constants.DocumentProcessed, got.Status, "status should be processed")
	assert.Equal(t, 12, got.RecordCount, "record count should persist")
	assert.Equal(t, 3, got.DiagnosticCount, "diagnostic count should persist")
	assert.NotNil(t, got.ProcessedAt, "processed time should be set")
}

// TestMarkFailed checks the terminal failure transition and summary cap.
func TestMarkFailed(t *testing.T) {
	repo := NewDocumentRepository(SetupTestDB(t), nil)
	ctx := context.Background()

	doc := document(uuid.New(), "broken.pdf", "h2", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc), "Create should succeed")

	long := strings.Repeat("x", 600)
	require.NoError(t, repo.MarkFailed(ctx, doc.ID, long), "MarkFailed should succeed")

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err, "GetByID should find the document")
	assert.Equal(t, constants.DocumentFailed, got.Status, "status should be failed")
	assert.Len(t, got.ErrorSummary, 512, "the error summary should be capped")
	assert.NotNil(t, got.ProcessedAt, "failure still records a processed time")
}

// TestListDocuments checks ordering and company scoping.
func TestListDocuments(t *testing.T) {
	repo := NewDocumentRepository(SetupTestDB(t), nil)
	ctx := context.Background()

	companyA := uuid.New()
	companyB := uuid.New()
	older := document(companyA, "old.pdf", "h3", time.Now().UTC().Add(-time.Hour))
	newer := document(companyB, "new.pdf", "h4", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, older), "Create should succeed")
	require.NoError(t, repo.Create(ctx, newer), "Create should succeed")

	all, err := repo.List(ctx, nil)
	require.NoError(t, err, "an unscoped List should succeed")
	require.Len(t, all, 2, "both documents should list")
	assert.Equal(t, "new.pdf", all[0].Filename, "documents should sort newest first")

	scoped, err := repo.List(ctx, []uuid.UUID{companyA})
	require.NoError(t, err, "a scoped List should succeed")
	require.Len(t, scoped, 1, "only the scoped company's documents should list")
	assert.Equal(t, older.ID, scoped[0].ID, "the scoped listing should match")

	none, err := repo.List(ctx, []uuid.UUID{})
	require.NoError(t, err, "an empty scope is not an error")
	assert.Empty(t, none, "an empty scope hides everything")
}
