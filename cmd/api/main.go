package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkamranaziz70-del/Boxxpliot-App/docs"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/clock"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/database"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/http/handler"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/http/middleware"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/http/router"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/jobs"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/logger"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/repository"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/storage"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/timer"
	"go.uber.org/zap"
)

// @title Boxxpilot API
// @version 1.0
// @description Job lifecycle API for moving companies: quotations, signing, job scheduling and time tracking

// @contact.name API Support
// @contact.email support@boxxpilot.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	if cfg.App.Environment == "development" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}

	// Initialize storage for signature images
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Shared clock and in-memory timer registry
	clk := clock.New()
	timers := timer.NewRegistry()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	jobRepo := repository.NewJobRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, log)
	userService := service.NewUserService(userRepo, authMiddleware.Issuer(), clk, log)
	customerService := service.NewCustomerService(customerRepo, log)
	quotationService := service.NewQuotationService(
		quotationRepo,
		customerRepo,
		jobRepo,
		numberSequenceService,
		notificationService,
		fileStorage,
		clk,
		log,
	)
	jobService := service.NewJobService(
		jobRepo,
		userRepo,
		notificationService,
		timers,
		clk,
		cfg.Scheduler.EarlyWindow(),
		cfg.Scheduler.LateWindow(),
		log,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, log)
	userHandler := handler.NewUserHandler(userService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)
	publicQuotationHandler := handler.NewPublicQuotationHandler(quotationService, log)
	jobHandler := handler.NewJobHandler(jobService, log)
	jobTimerFeedHandler := handler.NewJobTimerFeedHandler(jobService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		customerHandler,
		quotationHandler,
		publicQuotationHandler,
		jobHandler,
		jobTimerFeedHandler,
		notificationHandler,
	)

	// Initialize and start the auto-resolution sweep
	var scheduler *jobs.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = jobs.NewScheduler(log)

		// runOnStartup=true resolves anything that came due while the
		// process was down
		if err := jobs.RegisterSweepJob(
			scheduler,
			quotationService,
			jobService,
			log,
			cfg.Scheduler.SweepSpec,
			cfg.Scheduler.JobTimeoutDuration(),
			cfg.Scheduler.AutoEndGrace(),
			true,
		); err != nil {
			log.Error("Failed to register lifecycle sweep", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with lifecycle sweep",
				zap.String("cron_expr", cfg.Scheduler.SweepSpec),
				zap.Duration("timeout", cfg.Scheduler.JobTimeoutDuration()),
				zap.Duration("auto_end_grace", cfg.Scheduler.AutoEndGrace()),
			)
		}
	} else {
		log.Info("Lifecycle sweep disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
