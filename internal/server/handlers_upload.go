package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/ingest"
	"github.com/preyalameta02/balance-sheet-analysis/internal/parser"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type uploadResponse struct {
	Message          string              `json:"message"`
	DocumentID       uuid.UUID           `json:"document_id"`
	CompanyID        uuid.UUID           `json:"company_id"`
	Deduplicated     bool                `json:"deduplicated"`
	RecordsExtracted int                 `json:"records_extracted"`
	Diagnostics      []parser.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleUpload(c *gin.Context) {
	companyName := strings.TrimSpace(c.PostForm("company_name"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "file form field is required", common.ErrInvalidInput))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()

	result, err := s.ingest.Upload(c.Request.Context(), ingest.UploadRequest{
		CompanyName: companyName,
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		Content:     f,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	diagnostics := result.Diagnostics
	if diagnostics == nil {
		diagnostics = []parser.Diagnostic{}
	}
	c.JSON(http.StatusOK, uploadResponse{
		Message:          "PDF processed successfully",
		DocumentID:       result.DocumentID,
		CompanyID:        result.CompanyID,
		Deduplicated:     result.Deduplicated,
		RecordsExtracted: result.RecordsExtracted,
		Diagnostics:      diagnostics,
	})
}

func (s *Server) handleDocuments(c *gin.Context) {
	docs, err := s.documents.List(c.Request.Context(), visibleCompanyIDs(currentUser(c)))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*entity.SourceDocument{}
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) handleExport(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "invalid company_id", common.ErrInvalidInput))
		return
	}

	company, err := s.companies.GetByID(c.Request.Context(), companyID)
	company, authorized := s.authorizeCompany(c, company, err)
	if !authorized {
		return
	}

	xlsx, err := s.export.ExportRecordsXLSX(c.Request.Context(),
		company.ID,
		strings.TrimSpace(c.Query("start_year")),
		strings.TrimSpace(c.Query("end_year")),
	)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := exportFilename(company.Name)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, xlsx)
}

// exportFilename builds a download name from the company name, keeping only
// characters that are safe in a Content-Disposition filename.
func exportFilename(companyName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(companyName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "records"
	}
	return name + "-financial-records.xlsx"
}
