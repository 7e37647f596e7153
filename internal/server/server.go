// Package server exposes the dashboard REST API: registration and login,
// balance-sheet uploads, record queries, chart data, chat, and XLSX export.
package server

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/export"
	"github.com/preyalameta02/balance-sheet-analysis/internal/ingest"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"

	"github.com/google/uuid"
)

// Deps carries everything the handlers need. All fields are required unless
// noted.
type Deps struct {
	Users     repository.UserRepository
	Companies repository.CompanyRepository
	Documents repository.DocumentRepository
	Records   repository.RecordRepository

	Ingest *ingest.Service
	Chat   *llm.Service
	Export *export.Service

	// DB backs the health endpoint's ping.
	DB *gorm.DB

	Auth        common.AuthConfig
	CORSOrigins []string

	Logger *slog.Logger
}

// Server holds the handler set for the REST API.
type Server struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	documents repository.DocumentRepository
	records   repository.RecordRepository

	ingest *ingest.Service
	chat   *llm.Service
	export *export.Service

	db *gorm.DB

	auth        common.AuthConfig
	corsOrigins []string
	logger      *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:       deps.Users,
		companies:   deps.Companies,
		documents:   deps.Documents,
		records:     deps.Records,
		ingest:      deps.Ingest,
		chat:        deps.Chat,
		export:      deps.Export,
		db:          deps.DB,
		auth:        deps.Auth,
		corsOrigins: deps.CORSOrigins,
		logger:      logger,
	}
}

// visibleCompanyIDs returns the company scope for record and document queries.
// Chairman sees everything (nil means unrestricted); other roles see exactly
// their assignment set. The non-nil empty slice for an unassigned analyst or
// CEO is load-bearing: repository.RecordFilter treats nil as "no restriction"
// and an empty slice as "match nothing".
func visibleCompanyIDs(user *entity.User) []uuid.UUID {
	if user.Role.ViewsAll() {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(user.AssignedCompanyIDs))
	ids = append(ids, user.AssignedCompanyIDs...)
	return ids
}
