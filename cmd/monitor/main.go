package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/agent"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/api"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/archive"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/config"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/database"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/discovery"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/notifications"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/scheduler"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/sse"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Maritime Threat Monitor")

	// Initialize PostgreSQL and ensure the schema exists
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logrus.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Initialize the Elasticsearch archival writer
	archiveWriter, err := archive.NewElasticsearchWriter(cfg.ElasticsearchURL, cfg.ElasticsearchIndex)
	if err != nil {
		logrus.Fatalf("Failed to initialize archive writer: %v", err)
	}

	// Initialize the notification broker for stream subscribers
	broker := sse.NewBroker()
	broker.Start(context.Background())
	defer broker.Stop()

	// Initialize notification and discovery services
	notificationService := notifications.NewService(cfg)
	agentClient := agent.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	discoveryService := discovery.NewService(agentClient, repo, archiveWriter, notificationService, broker)

	// Initialize and start the scheduler
	schedulerService, err := scheduler.NewService(cfg, discoveryService)
	if err != nil {
		logrus.Fatalf("Failed to initialize scheduler: %v", err)
	}
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up the HTTP API
	apiServer := api.NewServer(cfg, repo, discoveryService, broker)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the notification stream is long-lived
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
