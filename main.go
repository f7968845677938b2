package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/ai"
	"github.com/healthmate-ai/backend/internal/audit"
	"github.com/healthmate-ai/backend/internal/config"
	"github.com/healthmate-ai/backend/internal/handler"
	"github.com/healthmate-ai/backend/internal/middleware"
	"github.com/healthmate-ai/backend/internal/pdf"
	"github.com/healthmate-ai/backend/internal/repository"
	"github.com/healthmate-ai/backend/internal/security"
	"github.com/healthmate-ai/backend/internal/service"
	"github.com/healthmate-ai/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Test database connection
	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Initialize AI client
	aiClient, err := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	// Initialize report file storage
	blobStore, err := storage.NewBlobStore(
		cfg.Storage.AccountName,
		cfg.Storage.AccountKey,
		cfg.Storage.ReportContainer,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage client", zap.Error(err))
	}

	// Optional at-rest encryption for medical history free text
	var encryptor *security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		encryptor, err = security.NewEncryptor([]byte(cfg.Security.EncryptionKey))
		if err != nil {
			logger.Fatal("Failed to initialize encryptor", zap.Error(err))
		}
		logger.Info("Profile field encryption enabled")
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(pool, encryptor, logger)
	reportRepo := repository.NewReportRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)

	// Initialize audit logging
	auditLogger := audit.NewLogger(pool, logger)

	// Initialize services
	analyzer := service.NewAnalyzer(aiClient, logger)
	pdfGenerator := pdf.NewReportGenerator(logger)
	profileService := service.NewProfileService(profileRepo, auditLogger, logger)
	reportService := service.NewReportService(reportRepo, blobStore, analyzer, pdfGenerator, auditLogger, logger)
	chatService := service.NewChatService(aiClient, profileRepo, chatRepo, auditLogger, logger)

	// Initialize handlers
	profileHandler := handler.NewProfileHandler(profileService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Add request logging middleware
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Add error logging middleware
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "healthmate-backend",
			"version":  "1.0.0",
		})
	})

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.PUT("/profile", profileHandler.SaveProfile)
		v1.GET("/profile", profileHandler.GetProfile)
		v1.DELETE("/profile", profileHandler.DeleteProfile)
		v1.GET("/profile/summary", profileHandler.GetHealthSummary)

		v1.POST("/reports", reportHandler.UploadReport)
		v1.GET("/reports", reportHandler.ListReports)
		v1.GET("/reports/stats", reportHandler.GetStats)
		v1.GET("/reports/insights", reportHandler.GetInsights)
		v1.GET("/reports/:id", reportHandler.GetReport)
		v1.POST("/reports/:id/analyze", reportHandler.AnalyzeReport)
		v1.GET("/reports/:id/pdf", reportHandler.ExportReportPDF)
		v1.DELETE("/reports/:id", reportHandler.DeleteReport)

		v1.POST("/chat", chatHandler.SendMessage)
		v1.GET("/chat/history", chatHandler.GetHistory)
		v1.GET("/chat/stream", chatHandler.StreamMessages)
		v1.DELETE("/chat/history", chatHandler.ClearHistory)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
