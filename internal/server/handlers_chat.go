package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	// CompanyID optionally narrows the answer to one company; zero means
	// the caller's full visible scope.
	CompanyID uuid.UUID `json:"company_id"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "invalid request body", common.ErrInvalidInput))
		return
	}

	visible := visibleCompanyIDs(currentUser(c))
	if req.CompanyID != uuid.Nil {
		company, err := s.companies.GetByID(c.Request.Context(), req.CompanyID)
		company, authorized := s.authorizeCompany(c, company, err)
		if !authorized {
			return
		}
		visible = []uuid.UUID{company.ID}
	}

	answer, err := s.chat.Chat(c.Request.Context(), req.Message, visible)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
