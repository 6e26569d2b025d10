package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/labstack/echo/v4"

	"stocklink/internal/caching"
	"stocklink/internal/handlers"
	"stocklink/internal/jobs"
	"stocklink/internal/jobs/background"
	"stocklink/internal/middleware"
	"stocklink/internal/repositories"
	"stocklink/internal/services"
	"stocklink/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	runner := database.NewTxRunner(pool)

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDBStr := os.Getenv("REDIS_DB")
	redisDB := 0 // Default DB
	if redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000" // Default MinIO endpoint
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "stocklink-documents"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// Initialize document storage
	documentSvc, err := services.NewDocumentService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize document service: %v", err)
	}
	if err := documentSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARNING: Failed to ensure document bucket exists: %v", err)
	}

	// Create repositories
	stockRepo := repositories.NewStockRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)
	transferRepo := repositories.NewTransferRepo(pool)
	collabRepo := repositories.NewCollaborationRepo(pool)

	// Create cache and notification services
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	notificationSvc := services.NewNotificationService(redisAddr, redisPassword, redisDB)

	// Create services
	ledgerSvc := services.NewLedgerService(runner, stockRepo, movementRepo, cacheSvc)
	transferSvc := services.NewTransferService(runner, ledgerSvc, stockRepo, transferRepo, collabRepo, cacheSvc, notificationSvc)
	stocktakeSvc := services.NewStocktakeService(runner, ledgerSvc, cacheSvc)
	collaborationSvc := services.NewCollaborationService(collabRepo, notificationSvc)

	// Create handlers
	stockHandlers := handlers.NewStockHandlers(ledgerSvc)
	movementHandlers := handlers.NewMovementHandlers(ledgerSvc)
	transferHandlers := handlers.NewTransferHandlers(transferSvc)
	stocktakeHandlers := handlers.NewStocktakeHandlers(stocktakeSvc)
	collaborationHandlers := handlers.NewCollaborationHandlers(collaborationSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	staleAfter := 48 * time.Hour
	if staleStr := os.Getenv("TRANSFER_STALE_AFTER_HOURS"); staleStr != "" {
		if hours, err := strconv.Atoi(staleStr); err == nil && hours > 0 {
			staleAfter = time.Duration(hours) * time.Hour
		}
	}
	lowStockSvc := jobs.NewLowStockAlertService(stockRepo)
	reminderSvc := jobs.NewPendingTransferReminderService(transferRepo, notificationSvc, staleAfter)
	scheduler := background.NewJobScheduler(lowStockSvc, reminderSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	// API routes
	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))
	v1.Use(middleware.JWTMiddleware(jwtSecret))

	// Stock routes
	v1.GET("/locations/:location/stock", stockHandlers.ListStock)
	v1.GET("/locations/:location/stock/:sku", stockHandlers.GetStock)
	v1.POST("/stock/receive", stockHandlers.ReceiveStock)
	v1.POST("/stock/issue", stockHandlers.IssueStock)
	v1.GET("/stock/low", stockHandlers.ListLowStock)
	v1.GET("/stock/consolidated", stockHandlers.ConsolidatedStock)

	// Movement routes
	v1.GET("/movements", movementHandlers.ListMovements)
	v1.GET("/movements/correlation/:id", movementHandlers.GetMovementsByCorrelation)

	// Transfer routes
	v1.POST("/transfers/internal", transferHandlers.TransferInternal)
	v1.POST("/transfers/external", transferHandlers.ReserveTransfer)
	v1.POST("/transfers/external/:id/approve", transferHandlers.ApproveTransfer)
	v1.POST("/transfers/external/:id/reject", transferHandlers.RejectTransfer)
	v1.GET("/transfers/external/:id", transferHandlers.GetTransfer)
	v1.GET("/transfers/pending", transferHandlers.ListPendingTransfers)
	v1.GET("/transfers/sent", transferHandlers.ListSentTransfers)
	v1.GET("/transfers/resolved", transferHandlers.ListResolvedTransfers)

	// Stocktake routes
	v1.POST("/stocktakes", stocktakeHandlers.SubmitStocktake)

	// Collaboration routes
	v1.POST("/collaborations", collaborationHandlers.RequestCollaboration)
	v1.POST("/collaborations/:id/respond", collaborationHandlers.RespondCollaboration)
	v1.GET("/collaborations", collaborationHandlers.ListCollaborations)

	// Notification routes
	v1.GET("/notifications", notificationHandlers.ListNotifications)

	// Document routes
	v1.POST("/documents", documentHandlers.UploadDocument)
	v1.GET("/documents/url", documentHandlers.GetDocumentURL)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("🚀 Stocklink server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
