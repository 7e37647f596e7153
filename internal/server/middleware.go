package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/internal/auth"
	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

// ctxUserKey is the gin context key the auth middleware stores the loaded
// user under.
const ctxUserKey = "currentUser"

// requestLogger tags every request with an id, threads it through the request
// context, and logs one line per request with the outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()

		ctx := common.WithRequestID(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", reqID)

		c.Next()

		s.logger.Info("http.request",
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// authenticate validates the bearer token and loads the user it names into
// the gin context. Requests without a valid token stop here with 401.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.ValidateToken(token, s.auth.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := s.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ctx := common.WithUserID(c.Request.Context(), user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// currentUser returns the user the auth middleware loaded. Handlers behind
// authenticate() may assume it is present.
func currentUser(c *gin.Context) *entity.User {
	user, _ := c.Get(ctxUserKey)
	u, _ := user.(*entity.User)
	return u
}

// respondError maps an error to a JSON response. AppError messages pass
// through; 5xx causes are logged and replaced with a generic message so
// internals never reach the client.
func (s *Server) respondError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	msg := err.Error()

	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed",
			"req_id", common.RequestIDFromContext(c.Request.Context()),
			"path", c.Request.URL.Path,
			"error", err,
		)
		msg = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
