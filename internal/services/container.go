package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/download"
	"github.com/nexconsult/docsync/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const maintenanceInterval = time.Minute

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	cancel      context.CancelFunc

	Metrics         *metrics.Metrics
	Backend         BackendClient
	CacheService    CacheServiceInterface
	Renderer        PreviewRenderer
	WizardService   *WizardService
	ReviewService   *ReviewService
	DocumentService *DocumentService
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config:  cfg,
		logger:  logger,
		Metrics: metrics.New(),
	}

	// Initialize Redis client
	if err := container.initRedis(); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize services
	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis initializes Redis client
func (c *Container) initRedis() error {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.WithField("error", err.Error()).Warn("Redis connection failed, caching in memory")
		_ = c.redisClient.Close()
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}

	return nil
}

// initServices initializes all services
func (c *Container) initServices() error {
	if err := os.MkdirAll(c.config.Download.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	// Initialize Cache Service
	cache := NewCacheService(c.redisClient, c.config.Redis.CacheTTL, c.logger)
	cache.OnLookup(c.Metrics.CacheLookup)
	c.CacheService = cache

	// Initialize backend client
	client := backend.NewClient(c.config.Backend, c.logger, backend.WithObserver(c.Metrics.ObserveBackend))
	c.Backend = client

	// Initialize preview renderer
	c.Renderer = NewChromeRenderer(c.config.Browser, c.logger)

	downloader := download.New(client, c.config.Download.Dir, c.config.Download.MinPDFBytes, c.logger)

	c.ReviewService = NewReviewService(client, NewPreviewAnalyzer(c.logger), c.Renderer, c.config.Review, c.Metrics, c.logger)
	c.WizardService = NewWizardService(client, c.ReviewService, c.CacheService, c.config.Upload, c.Metrics, c.logger)
	c.DocumentService = NewDocumentService(client, c.ReviewService, c.CacheService, downloader, c.config.Redis.CacheTTL, c.Metrics, c.logger)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	cache.StartCleanupRoutine(ctx, maintenanceInterval)
	c.WizardService.StartJanitor(ctx, maintenanceInterval)

	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errors []error

	if c.cancel != nil {
		c.cancel()
	}

	// Send pending field edits before the process exits
	if c.ReviewService != nil {
		c.ReviewService.CloseAll()
	}

	// Close Redis connection
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close the preview browser
	if c.Renderer != nil {
		if err := c.Renderer.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close preview renderer: %w", err))
		}
	}

	// Return combined errors if any
	if len(errors) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errors)
	}

	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	// Check Redis health
	if c.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.CacheService != nil {
		health["cache"] = c.CacheService.Health()
	}

	if c.Backend != nil {
		health["backend"] = BackendHealth(c.Backend, c.config.Backend.BaseURL)
	}

	if c.Renderer != nil {
		health["renderer"] = c.Renderer.Health()
	}

	if c.WizardService != nil && c.ReviewService != nil {
		health["sessions"] = map[string]interface{}{
			"status":  "healthy",
			"wizards": c.WizardService.Count(),
			"reviews": c.ReviewService.Count(),
		}
	}

	return health
}

// BackendHealth maps the circuit breaker state to a health status
func BackendHealth(client BackendClient, baseURL string) map[string]interface{} {
	state := client.State()
	status := "healthy"
	switch state {
	case "open":
		status = "unhealthy"
	case "half-open":
		status = "degraded"
	}
	return map[string]interface{}{
		"status":   status,
		"breaker":  state,
		"base_url": baseURL,
	}
}

// GetRedisClient returns the Redis client
func (c *Container) GetRedisClient() *redis.Client {
	return c.redisClient
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
