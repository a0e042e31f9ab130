// @title           Delivery Service API
// @version         1.0
// @description     Phase and sub-phase workflow API for project delivery tracking

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/delivery

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "project-delivery-api/docs" // Swagger docs import

	"project-delivery-api/internal/cache"
	"project-delivery-api/internal/client"
	"project-delivery-api/internal/config"
	"project-delivery-api/internal/database"
	"project-delivery-api/internal/job"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Delivery Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("notify_api_url", cfg.NotifyAPI.BaseURL),
	)

	// Initialize database. A failed connection does not abort startup so
	// the pod stays alive for health checks while the retry loop runs.
	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background",
			zap.Error(err))
		database.NewAsync(dbConfig, 5*time.Second)
	} else {
		logger.Info("Database connected successfully")

		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("Failed to run database migrations", zap.Error(err))
		} else {
			logger.Info("Database migrations completed")
		}
	}

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	var statsStop chan struct{}
	if db != nil {
		database.RegisterMetricsCallbacks(db, m)
		statsStop = database.StartDBStatsCollector(db, m)
	}

	// Initialize Redis for the progress snapshot cache
	if err := database.InitRedis(*cfg, logger); err != nil {
		logger.Warn("Failed to connect to Redis, progress caching disabled", zap.Error(err))
	}
	progressCache := cache.NewProgressCache(database.GetRedis(), logger)

	// Initialize S3 client
	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, attachment features may be limited", zap.Error(err))
		} else {
			s3Client = s3
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, attachment features disabled")
	}

	// Initialize notification client
	notifier := client.NewNoOpNotificationClient()
	if cfg.NotifyAPI.BaseURL != "" {
		notifier = client.NewNotificationClient(
			cfg.NotifyAPI.BaseURL,
			cfg.NotifyAPI.APIKey,
			cfg.NotifyAPI.Timeout,
			logger,
			m,
		)
		logger.Info("Notification client initialized",
			zap.String("notify_api_url", cfg.NotifyAPI.BaseURL))
	} else {
		logger.Warn("Notification API not configured, notifications disabled")
	}

	// Realtime event hub for project subscriptions
	hub := realtime.NewHub(logger)

	// Schedule the expired temp attachment cleanup
	scheduler := cron.New()
	if db != nil && s3Client != nil {
		cleanupJob := job.NewCleanupJob(repository.NewAttachmentRepository(db), s3Client, logger)
		if _, err := scheduler.AddFunc("0 3 * * *", cleanupJob.Run); err != nil {
			logger.Warn("Failed to schedule attachment cleanup job", zap.Error(err))
		} else {
			scheduler.Start()
			logger.Info("Attachment cleanup job scheduled", zap.String("schedule", "0 3 * * *"))
		}
	}

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:            db,
		Logger:        logger,
		JWTSecret:     cfg.JWT.Secret,
		BasePath:      cfg.Server.BasePath,
		Metrics:       m,
		S3Client:      s3Client,
		S3Config:      cfg.S3,
		ProgressCache: progressCache,
		Hub:           hub,
		Notifier:      notifier,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Delivery Service started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	scheduler.Stop()
	if statsStop != nil {
		close(statsStop)
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
