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

	"github.com/ayase/tomodachi/internal/handlers"
	"github.com/ayase/tomodachi/internal/infrastructure/config"
	"github.com/ayase/tomodachi/internal/infrastructure/database"
	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
	"github.com/ayase/tomodachi/internal/repositories/postgres"
	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/ayase/tomodachi/internal/services/watermark"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultEnv = "dev"

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	// Initialize repositories
	relationshipRepo := postgres.NewPostgresRelationshipRepository(pg.DB)
	messageRepo := postgres.NewPostgresMessageRepository(pg.DB)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)
	watermarkRepo := postgres.NewPostgresWatermarkRepository(pg.DB)

	// Initialize services
	relationshipService := relationship.NewService(relationshipRepo, userRepo)
	watermarkService := watermark.NewService(watermarkRepo)
	messageService := message.NewService(messageRepo, relationshipRepo, userRepo, watermarkRepo)
	aggregator := activity.NewAggregator(relationshipRepo, messageRepo, userRepo, watermarkRepo)

	exporter := metrics.NewPrometheusExporter(prometheus.DefaultRegisterer)

	pollCtx, cancelPolling := context.WithCancel(context.Background())
	defer cancelPolling()
	sessions := activity.NewManager(pollCtx, aggregator, watermarkService, cfg.Poll.Interval(), exporter)

	router := handlers.NewRouter(&handlers.RouterConfig{
		JWTSecret:           cfg.Auth.JWTSecret,
		RelationshipService: relationshipService,
		MessageService:      messageService,
		UserRepo:            userRepo,
		Sessions:            sessions,
		Health:              pg,
		Exporter:            exporter,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Metrics are served on a separate port so they stay off the public surface
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: promhttp.Handler(),
	}

	serverErrors := make(chan error, 2)
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Printf("Metrics server listening on %s", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down HTTP server: %v", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down metrics server: %v", err)
		}

		// Stop per-user pollers before closing the database
		cancelPolling()
		sessions.Shutdown()

		if err := pg.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}

		log.Println("Shutdown complete")
	}
}
