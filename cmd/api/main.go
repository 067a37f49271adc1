package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rayypan/invoicegeneration/internal/application/service"
	"github.com/rayypan/invoicegeneration/internal/config"
	"github.com/rayypan/invoicegeneration/internal/generator"
	"github.com/rayypan/invoicegeneration/internal/infrastructure/repository"
	"github.com/rayypan/invoicegeneration/internal/presentation/http/handler"
	"github.com/rayypan/invoicegeneration/internal/presentation/http/routes"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up structured logging
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize repositories
	sessionRepo := repository.NewMemorySessionRepository(repository.MemorySessionConfig{
		EntryTTL:        cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
	})
	secretRepo := repository.NewConfigSecretRepository(cfg.Signatory.Roster, cfg.Signatory.Secrets)

	// Initialize the invoice generation client
	generatorClient := generator.NewClient(&generator.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)

	// Initialize services
	formService := service.NewFormService(sessionRepo, secretRepo, generatorClient, log)

	// Initialize handlers
	handlers := &routes.Handlers{
		Form: handler.NewFormHandler(formService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg: cfg,
		Log: log,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.WithFields(logrus.Fields{
		"port": port,
		"env":  cfg.App.Env,
	}).Infof("Starting %s server", cfg.App.Name)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
