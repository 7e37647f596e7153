package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// authorizeCompany finishes a company lookup: 404 when the company does not
// exist, 403 when it exists but is outside the caller's scope.
func (s *Server) authorizeCompany(c *gin.Context, company *entity.Company, err error) (*entity.Company, bool) {
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(c, common.NewAppError("NOT_FOUND", "company not found", common.ErrNotFound))
		} else {
			s.respondError(c, err)
		}
		return nil, false
	}
	if !currentUser(c).CanAccessCompany(company.ID) {
		s.respondError(c, common.NewAppError("FORBIDDEN", "access denied to this company", common.ErrForbidden))
		return nil, false
	}
	return company, true
}

func (s *Server) handleData(c *gin.Context) {
	name := strings.TrimSpace(c.Query("company"))
	if name == "" {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "company query parameter is required", common.ErrInvalidInput))
		return
	}

	filter := repository.RecordFilter{FiscalYear: strings.TrimSpace(c.Query("fiscal_year"))}
	if m := strings.TrimSpace(c.Query("metric")); m != "" {
		metric, ok := constants.ParseMetricType(m)
		if !ok {
			s.respondError(c, common.NewAppError("BAD_REQUEST", "unknown metric: "+m, common.ErrInvalidInput))
			return
		}
		filter.MetricType = metric
	}

	company, err := s.companies.GetByName(c.Request.Context(), name)
	company, ok := s.authorizeCompany(c, company, err)
	if !ok {
		return
	}
	filter.CompanyID = company.ID

	records, err := s.records.List(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if records == nil {
		records = []*entity.FinancialRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleChartData(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "invalid company_id", common.ErrInvalidInput))
		return
	}
	metric, ok := constants.ParseMetricType(c.Query("metric_type"))
	if !ok {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "unknown metric_type: "+c.Query("metric_type"), common.ErrInvalidInput))
		return
	}

	company, err := s.companies.GetByID(c.Request.Context(), companyID)
	company, authorized := s.authorizeCompany(c, company, err)
	if !authorized {
		return
	}

	records, err := s.records.List(c.Request.Context(), repository.RecordFilter{
		CompanyID:  company.ID,
		MetricType: metric,
		StartYear:  strings.TrimSpace(c.Query("start_year")),
		EndYear:    strings.TrimSpace(c.Query("end_year")),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	points := make([]llm.SeriesPoint, len(records))
	for i, rec := range records {
		points[i] = llm.SeriesPoint{FiscalYear: rec.FiscalYear, Value: rec.Value}
	}
	c.JSON(http.StatusOK, llm.MetricChart(metric, points))
}

func (s *Server) handleCompanies(c *gin.Context) {
	user := currentUser(c)

	var companies []*entity.Company
	var err error
	if user.Role.ViewsAll() {
		companies, err = s.companies.List(c.Request.Context())
	} else {
		companies, err = s.companies.ListByIDs(c.Request.Context(), user.AssignedCompanyIDs)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	if companies == nil {
		companies = []*entity.Company{}
	}
	c.JSON(http.StatusOK, companies)
}

type metricInfo struct {
	MetricType  constants.MetricType `json:"metric_type"`
	DisplayName string               `json:"display_name"`
}

func (s *Server) handleMetrics(c *gin.Context) {
	metrics := constants.AllMetricTypes()
	out := make([]metricInfo, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, metricInfo{MetricType: m, DisplayName: constants.DisplayName(m)})
	}
	c.JSON(http.StatusOK, out)
}
