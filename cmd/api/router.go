package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coachhub-backend/internal/shared/middleware"
	"coachhub-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupClientRoutes(v1, c)
		setupImportRoutes(v1, c)
	}

	return router
}

// ========================================
// CLIENT ROUTES
// ========================================
func setupClientRoutes(v1 *gin.RouterGroup, c *container.Container) {
	clients := v1.Group("/clients")
	{
		clients.POST("", c.ClientHandler.Create)
		clients.GET("", c.ClientHandler.List)
		clients.GET("/export", c.ClientHandler.Export)
		clients.GET("/:id", c.ClientHandler.GetByID)
		clients.PUT("/:id", c.ClientHandler.Update)
		clients.DELETE("/:id", c.ClientHandler.Delete)

		clients.POST("/bulk-import", c.ImportHandler.BulkImport)
	}
}

// ========================================
// IMPORT JOB ROUTES
// ========================================
func setupImportRoutes(v1 *gin.RouterGroup, c *container.Container) {
	imports := v1.Group("/imports")
	{
		imports.GET("/:id", c.ImportHandler.GetJob)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		health := gin.H{
			"status":      "UP",
			"service":     appCtx.Config.App.Name,
			"version":     appCtx.Config.App.Version,
			"environment": appCtx.Config.App.Environment,
			"timestamp":   time.Now().Format(time.RFC3339),
		}

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = "error: " + err.Error()
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
