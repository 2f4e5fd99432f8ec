package main

import (
	"fmt"
	"log"
	"net/http"

	"colivery/internal/config"
	"colivery/internal/handlers"
	"colivery/internal/middleware"
	"colivery/internal/repositories/mongodb"
	"colivery/internal/services"
	"colivery/pkg/cache"
	"colivery/pkg/database"
	"colivery/pkg/logger"
	"colivery/routes"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Storage
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache)

	// Repositories
	walletRepo := mongodb.NewWalletRepository(db.Database, cacheService)
	transactionRepo := mongodb.NewTransactionRepository(db.Database)
	settingRepo := mongodb.NewSettingRepository(db.Database)
	auditRepo := mongodb.NewAuditLogRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)

	// Services
	defaultRate, err := decimal.NewFromString(cfg.Platform.DefaultCommissionRate)
	if err != nil {
		log.Fatalf("Invalid default commission rate %q: %v", cfg.Platform.DefaultCommissionRate, err)
	}

	auditStream, err := logger.NewAuditLogger(&logger.Config{
		Level:  logger.InfoLevel,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}

	notificationService := services.NewNotificationService(cacheService, appLogger)
	auditService := services.NewAuditService(auditRepo, auditStream, appLogger)
	accountStatus := services.NewAccountStatusChecker(userRepo)
	walletService := services.NewWalletService(walletRepo, transactionRepo, db, notificationService, appLogger)
	rateProvider := services.NewSettingRateProvider(settingRepo, defaultRate, appLogger)
	feeService := services.NewFeeService(rateProvider, settingRepo, cfg.Platform.MinFeeAmount, cfg.Platform.MaxFeeAmount)
	withdrawalService := services.NewWithdrawalService(
		walletRepo, transactionRepo, db, accountStatus,
		notificationService, auditService, appLogger,
		cfg.Platform.MinWithdrawalAmount,
	)
	settlementService := services.NewSettlementService(walletService, feeService, appLogger)

	// Handlers
	walletHandler := handlers.NewWalletHandler(walletService, withdrawalService)
	adminHandler := handlers.NewAdminHandler(walletService, withdrawalService, settlementService, feeService, auditService, accountStatus)

	// Initialize Gin router
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupWalletRoutes(v1, walletHandler, cfg.Security.JWTSecret)
		routes.SetupAdminRoutes(v1, adminHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting server")
	log.Fatal(http.ListenAndServe(addr, router))
}
