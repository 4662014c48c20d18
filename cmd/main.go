package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hr-approval-service/internal/cache"
	"hr-approval-service/internal/clients"
	"hr-approval-service/internal/config"
	"hr-approval-service/internal/engine"
	"hr-approval-service/internal/events"
	"hr-approval-service/internal/handlers"
	"hr-approval-service/internal/jobs"
	"hr-approval-service/internal/middleware"
	"hr-approval-service/internal/models"
	"hr-approval-service/internal/repository"
	"hr-approval-service/internal/seeders"
)

// @title HR Approval Workflow API
// @version 1.0.0
// @description Multi-step approval workflow engine for HR documents

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8099
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.ApprovalTemplate{},
		&models.ApprovalTemplateLine{},
		&models.ApprovalDocument{},
		&models.ApprovalLine{},
		&models.DelegationRule{},
		&models.ConditionalRoute{},
		&models.ArbitraryApprovalRule{},
		&models.ApprovalAuditLog{},
	); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Seed system templates
	if err := seeders.SeedSystemTemplates(db); err != nil {
		logger.Warnf("Failed to seed system templates: %v", err)
	}

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	ruleRepo := repository.NewRuleRepository(db)

	// Initialize event publisher (optional - service works without NATS)
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warnf("Failed to initialize event publisher: %v. Events will not be published.", err)
			publisher = nil
		} else {
			logger.Info("Event publisher initialized")
		}
	} else {
		logger.Info("NATS_URL not configured, event publishing disabled")
	}
	// A nil *Publisher inside a non-nil interface would dodge the engine's
	// nil check, so only assign when the connection succeeded
	var eventSink engine.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}

	// Initialize directory clients behind the Redis read-through cache.
	// With REDIS_ADDR unset the cache degrades to pass-through.
	orgClient := clients.NewOrganizationClient(cfg.OrganizationServiceURL)
	empClient := clients.NewEmployeeClient(cfg.EmployeeServiceURL)
	directory := cache.NewDirectoryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DirectoryTTL, orgClient, empClient)

	// Initialize engine
	resolver := engine.NewApproverResolver(directory, directory, logger)
	delegationResolver := engine.NewDelegationResolver(ruleRepo, logger)
	lineBuilder := engine.NewLineBuilder(resolver, delegationResolver, logger)
	condRouter := engine.NewConditionalRouter(ruleRepo, logger)
	evaluator := engine.NewRuleEvaluator(ruleRepo, logger)
	documentService := engine.NewDocumentService(docRepo, templateRepo, lineBuilder, condRouter, evaluator, eventSink, logger)
	delegationService := engine.NewDelegationService(ruleRepo, logger)

	// Initialize handlers
	documentHandler := handlers.NewDocumentHandler(documentService)
	delegationHandler := handlers.NewDelegationHandler(delegationService)
	adminHandler := handlers.NewAdminHandler(templateRepo, ruleRepo)

	// Start deadline escalation job
	deadlineJob := jobs.NewDeadlineJob(docRepo, eventSink, logger)
	jobCtx, jobCancel := context.WithCancel(context.Background())
	go deadlineJob.Start(jobCtx)
	logger.Info("Deadline job started")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	api.Use(middleware.TenantMiddleware())

	// Document endpoints
	{
		api.POST("/documents", documentHandler.CreateDocument)
		api.GET("/documents/mine", documentHandler.ListMyDocuments)
		api.GET("/documents/pending", documentHandler.ListPendingApprovals)
		api.GET("/documents/:id", documentHandler.GetDocument)
		api.GET("/documents/:id/history", documentHandler.GetDocumentHistory)
		api.POST("/documents/:id/submit", documentHandler.SubmitDocument)
		api.POST("/documents/:id/approve", documentHandler.ApproveLine)
		api.POST("/documents/:id/reject", documentHandler.RejectLine)
		api.POST("/documents/:id/recall", documentHandler.RecallDocument)
		api.POST("/documents/:id/cancel", documentHandler.CancelDocument)
	}

	// Delegation endpoints
	{
		api.POST("/delegations", delegationHandler.CreateDelegation)
		api.GET("/delegations", delegationHandler.ListDelegations)
		api.DELETE("/delegations/:id", delegationHandler.RevokeDelegation)
	}

	// Admin endpoints for template and rule management
	admin := api.Group("/admin")
	{
		admin.POST("/templates", adminHandler.CreateTemplate)
		admin.GET("/templates", adminHandler.ListTemplates)
		admin.GET("/templates/:id", adminHandler.GetTemplate)
		admin.POST("/routes", adminHandler.CreateRoute)
		admin.POST("/rules", adminHandler.CreateRule)
		admin.GET("/rules", adminHandler.ListRules)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8099"
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("HR approval service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	// Stop background job and close external connections
	jobCancel()
	deadlineJob.Stop()
	if publisher != nil {
		publisher.Close()
	}
	if err := directory.Close(); err != nil {
		logger.Warnf("Failed to close directory cache: %v", err)
	}

	logger.Info("Server shutdown complete")
}
