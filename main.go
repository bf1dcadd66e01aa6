// Package main provides the main entry point for the CompScore benchmark scoring system
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benchmetrics/compscore/app/handlers"
	"github.com/benchmetrics/compscore/app/middleware"
	"github.com/benchmetrics/compscore/app/router"
	"github.com/benchmetrics/compscore/app/scheduler"
	"github.com/benchmetrics/compscore/app/services"
	businessflow "github.com/benchmetrics/compscore/business_flow"
	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting CompScore application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// initializeFetchers builds one platform fetcher per supported provider
func initializeFetchers(oauth config.OAuthConfig) map[models.ProviderType]services.PlatformFetcher {
	return map[models.ProviderType]services.PlatformFetcher{
		models.ProviderGoogleAds:       services.NewGoogleAdsFetcher(oauth.GoogleAds),
		models.ProviderMetaAds:         services.NewMetaAdsFetcher(oauth.MetaAds),
		models.ProviderLinkedInAds:     services.NewLinkedInAdsFetcher(oauth.LinkedInAds),
		models.ProviderTikTokAds:       services.NewTikTokAdsFetcher(oauth.TikTokAds),
		models.ProviderGoogleAnalytics: services.NewGoogleAnalyticsFetcher(oauth.GoogleAnalytics),
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(db)
	accountRepo := repository.NewOAuthAccountRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	comparisonRepo := repository.NewBenchmarkComparisonRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize platform clients and the sync pipeline
	refresher := services.NewTokenRefresher(cfg.OAuth)
	fetchers := initializeFetchers(cfg.OAuth)
	benchmarkCache := scheduler.NewBenchmarkCache(benchmarkRepo, rc, cfg.Cache.RedisPrefix, cfg.Cache.BenchmarkTTL, log.Default())

	orchestrator := scheduler.NewSyncOrchestrator(
		companyRepo,
		accountRepo,
		campaignRepo,
		comparisonRepo,
		syncLogRepo,
		benchmarkCache,
		refresher,
		fetchers,
		db,
		log.Default(),
	)

	// Initialize flows
	oauthConnectFlow := businessflow.NewOAuthConnectFlow(accountRepo, companyRepo, orchestrator, db, log.Default())
	syncFlow := businessflow.NewSyncFlow(orchestrator, syncLogRepo, log.Default())
	comparisonFlow := businessflow.NewComparisonFlow(comparisonRepo, campaignRepo)

	// Initialize handlers
	oauthHandler := handlers.NewOAuthHandler(oauthConnectFlow)
	syncHandler := handlers.NewSyncHandler(syncFlow)
	comparisonHandler := handlers.NewComparisonHandler(comparisonFlow)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authMiddleware,
		oauthHandler,
		syncHandler,
		comparisonHandler,
	)

	// Start the daily sync scheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewSyncScheduler(accountRepo, orchestrator, cfg.Scheduler, cfg.Logging)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	fiberRouter := appRouter.(*router.FiberRouter)
	return &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
