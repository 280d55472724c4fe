package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/api/handlers"
	"github.com/nexconsult/docsync/internal/api/middleware"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	Router      *gin.Engine
	config      *config.Config
	logger      *logrus.Logger
	services    *services.Container
	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// Close stops background work owned by the router
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()
	if s.config.Upload.MaxMultipartMB > 0 {
		s.Router.MaxMultipartMemory = s.config.Upload.MaxMultipartMB << 20
	}

	// Global middleware
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())
	s.Router.Use(s.services.Metrics.Middleware())

	// Health and metrics sit outside the rate limiter
	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)

	s.Router.GET("/metrics", handlers.NewMetricsHandler(s.services.Metrics.Handler(), s.logger).GetMetrics)

	// Swagger documentation
	if s.config.Server.Environment != "production" {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		s.Router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
	}

	s.rateLimiter = middleware.NewRateLimiter(s.config.Security.RateLimit)

	// API v1 routes
	v1 := s.Router.Group("/api/v1")
	v1.Use(s.rateLimiter.Middleware())
	{
		templateHandler := handlers.NewTemplateHandler(s.logger)
		v1.GET("/templates", templateHandler.List)
		v1.GET("/templates/:id", templateHandler.Get)

		validationHandler := handlers.NewValidationHandler(s.services.Metrics.Validation, s.logger)
		v1.POST("/validate", validationHandler.ValidateField)
		v1.POST("/validate/batch", validationHandler.ValidateBatch)

		wizardHandler := handlers.NewWizardHandler(s.services.WizardService, s.config.Upload.MaxFileSize, s.logger)
		wizards := v1.Group("/wizards")
		{
			wizards.POST("", wizardHandler.Create)
			wizards.GET("/:id", wizardHandler.Get)
			wizards.POST("/:id/files", wizardHandler.DropFile)
			wizards.DELETE("/:id/files", wizardHandler.RemoveFile)
			wizards.POST("/:id/batch", wizardHandler.Batch)
			wizards.POST("/:id/next", wizardHandler.Next)
			wizards.POST("/:id/previous", wizardHandler.Previous)
			wizards.POST("/:id/cancel", wizardHandler.Cancel)
			wizards.POST("/:id/finish", wizardHandler.Finish)
		}

		sessionHandler := handlers.NewSessionHandler(s.services.ReviewService, s.services.DocumentService, s.logger)
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:id", sessionHandler.Get)
			sessions.PATCH("/:id", sessionHandler.UpdateField)
			sessions.DELETE("/:id", sessionHandler.Close)
			sessions.GET("/:id/preview", sessionHandler.Preview)
			sessions.GET("/:id/preview.pdf", sessionHandler.PreviewPDF)
			sessions.POST("/:id/generate", sessionHandler.Generate)
			sessions.GET("/:id/downloads", sessionHandler.Downloads)
			sessions.POST("/:id/downloads/:type", sessionHandler.Download)
		}

		// Cache management routes (no auth, same as the rest of the API)
		cacheHandler := handlers.NewCacheHandler(s.services.CacheService, s.logger)
		cache := v1.Group("/cache")
		{
			cache.GET("/stats", cacheHandler.GetStats)
			cache.DELETE("/clear", cacheHandler.Clear)
		}
	}

	// 404 handler
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Not Found",
			Message:   "The requested resource was not found",
			Code:      "NOT_FOUND",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})

	// 405 handler
	s.Router.HandleMethodNotAllowed = true
	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
			Error:     "Method Not Allowed",
			Message:   "The requested method is not allowed for this resource",
			Code:      "METHOD_NOT_ALLOWED",
			Details:   gin.H{"method": c.Request.Method},
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})
}
