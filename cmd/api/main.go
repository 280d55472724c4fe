package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nexconsult/docsync/internal/api"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/logger"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/sirupsen/logrus"

	_ "github.com/nexconsult/docsync/docs"
)

// @title DocSync Document Automation API
// @version 1.0
// @description Upload wizard, field review and document generation gateway in front of the DocSync extraction backend

// @contact.name API Support
// @contact.url http://www.nexconsult.com/support
// @contact.email support@nexconsult.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// shutdownGrace bounds how long in-flight uploads and generations may take
// once a stop signal arrives
const shutdownGrace = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger.New(cfg.Log.Level, cfg.Log.Format))
	stop()
	if err != nil {
		log.Fatalf("docsync: %v", err)
	}
}

// run wires the gateway and serves until ctx is cancelled
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := services.NewContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release services")
		}
	}()

	server := api.NewServer(cfg, logger, container)
	defer server.Close()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":        httpServer.Addr,
			"environment": cfg.Server.Environment,
			"backend":     cfg.Backend.BaseURL,
		}).Info("DocSync gateway listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Stop signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("DocSync gateway stopped")
	return nil
}
