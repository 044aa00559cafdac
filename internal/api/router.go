package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keel-trb-api/internal/auth"
	"github.com/keel-trb-api/internal/config"
	"github.com/keel-trb-api/internal/exporter"
	"github.com/keel-trb-api/internal/importer"
	"github.com/keel-trb-api/internal/previewtoken"
	"github.com/keel-trb-api/internal/repository"
	"github.com/rs/zerolog"
)

// Deps bundles everything the HTTP layer needs
type Deps struct {
	Repos    *repository.Repositories
	Engine   *importer.Engine
	Exporter *exporter.Exporter
	Auth     *auth.Verifier
	Tokens   previewtoken.Store

	// Health pings the database; nil skips the check (tests)
	Health func(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(deps *Deps, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = cfg.Import.MaxUploadSize

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	importHandler := NewImportHandler(deps, cfg, log)
	exportHandler := NewExportHandler(deps.Exporter, log)
	adminHandler := NewAdminHandler(deps.Repos, log)

	// Health check
	router.GET("/health", healthCheck(deps.Health))

	// Admin API v1
	admin := router.Group("/api/v1/admin", deps.Auth.RequireRole(auth.RoleAdmin))
	{
		imports := admin.Group("/imports")
		{
			imports.GET("/batches", importHandler.ListBatches)
			imports.GET("/:entity/template", importHandler.Template)
			imports.POST("/:entity/preview", importHandler.Preview)
			imports.POST("/:entity/commit", importHandler.Commit)
		}

		admin.GET("/exports/:entity", exportHandler.Export)

		admin.GET("/cadets", adminHandler.ListCadets)
		admin.GET("/cadets/:id", adminHandler.GetCadet)
		admin.GET("/vessels", adminHandler.ListVessels)
		admin.GET("/vessels/:id", adminHandler.GetVessel)
		admin.GET("/tasks", adminHandler.ListTasks)
		admin.GET("/assignments", adminHandler.ListAssignments)
		admin.GET("/audit", adminHandler.ListAudit)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(health func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "degraded",
					"database": "unavailable",
					"service":  "keel-trb-api",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "ok",
			"service":   "keel-trb-api",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS for the admin console
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Preview-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
