package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"road-condition-service/config"
	"road-condition-service/database"
	"road-condition-service/detector"
	"road-condition-service/directions"
	"road-condition-service/handlers"
	"road-condition-service/judge"
	"road-condition-service/metrics"
	"road-condition-service/rabbitmq"
	"road-condition-service/service"
	"road-condition-service/storage"
	"road-condition-service/vision"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// Validate required configuration
	if cfg.JudgeProvider == "gemini" && cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required when JUDGE_PROVIDER is gemini")
	}
	if cfg.DetectorProvider == "http" && cfg.DetectorURL == "" {
		log.Fatal("DETECTOR_URL environment variable is required when DETECTOR_PROVIDER is http")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureTables(context.Background()); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize the two estimators
	var det detector.Detector
	switch cfg.DetectorProvider {
	case "stub":
		det = detector.NewStub()
	default:
		det = detector.NewClient(cfg.DetectorURL)
	}

	var j judge.Judge
	switch cfg.JudgeProvider {
	case "stub":
		j = judge.NewStub()
	default:
		j = judge.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.JudgeTimeout)
	}
	log.Infof("Scoring with detector %s and judge %s", det.SourceName(), j.SourceName())

	blobs, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// RabbitMQ fanout is optional; the pipeline runs without it.
	var publisher service.Publisher
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			log.WithError(err).Error("Failed to connect to RabbitMQ, continuing without fanout")
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	metrics.Register()

	// Initialize service
	scoringService := service.NewService(vision.NewEstimator(det), j, db, blobs, publisher)

	// Initialize handlers
	h := handlers.NewHandlers(db, scoringService, directions.NewClient(cfg.OSRMBaseURL))

	// Setup HTTP server
	router := gin.Default()

	// API routes
	api := router.Group("/api/v3")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/report", h.SubmitReport)
		api.POST("/report/preview", h.PreviewReport)
		api.GET("/location/:id/average", h.GetLocationAverage)
		api.POST("/locations/averages", h.GetLocationsAverages)
		api.GET("/route", h.GetRoute)
		api.POST("/users", h.CreateOrUpdateUser)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users", h.SearchUsers)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
