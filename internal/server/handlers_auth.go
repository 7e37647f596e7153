package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
	"github.com/preyalameta02/balance-sheet-analysis/internal/auth"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

type registerRequest struct {
	Email              string      `json:"email" binding:"required,email"`
	Password           string      `json:"password" binding:"required"`
	Role               string      `json:"role" binding:"required"`
	AssignedCompanyIDs []uuid.UUID `json:"assigned_company_ids"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *entity.User `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "invalid request body", common.ErrInvalidInput))
		return
	}

	role, ok := constants.ParseRole(req.Role)
	if !ok {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "unknown role: "+req.Role, common.ErrInvalidInput))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	user := &entity.User{
		ID:                 uuid.New(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       hash,
		Role:               role,
		AssignedCompanyIDs: req.AssignedCompanyIDs,
	}
	if err := s.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			s.respondError(c, common.NewAppError("DUPLICATE_EMAIL", "email already registered", common.ErrDuplicate))
			return
		}
		s.respondError(c, err)
		return
	}

	s.logger.Info("auth.register.ok",
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"user_id", user.ID,
		"role", role,
	)
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.NewAppError("BAD_REQUEST", "invalid request body", common.ErrInvalidInput))
		return
	}

	// Same response for a missing user and a wrong password so logins
	// cannot be used to probe which emails exist.
	badCredentials := common.NewAppError("BAD_CREDENTIALS", "incorrect email or password", common.ErrUnauthorized)

	user, err := s.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(c, badCredentials)
			return
		}
		s.respondError(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondError(c, badCredentials)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role, s.auth.JWTSecret, s.auth.TokenTTL)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("auth.login.ok",
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"user_id", user.ID,
	)
	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
