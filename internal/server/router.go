package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
)

// Router builds the gin engine with middleware and the full route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", s.handleHealth)
	r.POST("/register", s.handleRegister)
	r.POST("/login", s.handleLogin)
	// The metric vocabulary is static and not user-scoped.
	r.GET("/metrics", s.handleMetrics)

	authed := r.Group("/")
	authed.Use(s.authenticate())
	authed.GET("/users/me", s.handleMe)
	authed.POST("/upload", s.handleUpload)
	authed.GET("/data", s.handleData)
	authed.GET("/chart-data", s.handleChartData)
	authed.POST("/chat", s.handleChat)
	authed.GET("/companies", s.handleCompanies)
	authed.GET("/documents", s.handleDocuments)
	authed.GET("/export", s.handleExport)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := repository.HealthCheck(c.Request.Context(), s.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
