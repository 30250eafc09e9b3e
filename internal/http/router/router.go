package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/auth"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/database"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/http/handler"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/mkamranaziz70-del/Boxxpliot-App/docs" // Import generated swagger docs
)

type Router struct {
	cfg                    *config.Config
	logger                 *zap.Logger
	db                     *gorm.DB
	authMiddleware         *auth.Middleware
	rateLimiter            *middleware.RateLimiter
	authHandler            *handler.AuthHandler
	userHandler            *handler.UserHandler
	customerHandler        *handler.CustomerHandler
	quotationHandler       *handler.QuotationHandler
	publicQuotationHandler *handler.PublicQuotationHandler
	jobHandler             *handler.JobHandler
	jobTimerFeedHandler    *handler.JobTimerFeedHandler
	notificationHandler    *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	customerHandler *handler.CustomerHandler,
	quotationHandler *handler.QuotationHandler,
	publicQuotationHandler *handler.PublicQuotationHandler,
	jobHandler *handler.JobHandler,
	jobTimerFeedHandler *handler.JobTimerFeedHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                    cfg,
		logger:                 logger,
		db:                     db,
		authMiddleware:         authMiddleware,
		rateLimiter:            rateLimiter,
		authHandler:            authHandler,
		userHandler:            userHandler,
		customerHandler:        customerHandler,
		quotationHandler:       quotationHandler,
		publicQuotationHandler: publicQuotationHandler,
		jobHandler:             jobHandler,
		jobTimerFeedHandler:    jobTimerFeedHandler,
		notificationHandler:    notificationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public signing page routes. The opaque token is the only
		// credential, so these stay outside the auth group.
		r.Route("/public/quotations/{token}", func(r chi.Router) {
			r.Get("/", rt.publicQuotationHandler.GetByToken)
			r.Post("/sign", rt.publicQuotationHandler.Sign)
			r.Post("/reject", rt.publicQuotationHandler.Reject)
		})

		// Login (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Users
			r.Get("/users", rt.userHandler.ListEmployees)

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}", rt.quotationHandler.Update)
				r.Get("/{id}/signature", rt.quotationHandler.DownloadSignature)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireOwner)
					r.Post("/{id}/send", rt.quotationHandler.Send)
				})
			})

			// Jobs
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", rt.jobHandler.List)
				r.Get("/mine", rt.jobHandler.ListMine)
				r.Get("/{id}", rt.jobHandler.GetByID)
				r.Put("/{id}/crew", rt.jobHandler.AssignCrew)
				r.Post("/{id}/start", rt.jobHandler.Start)
				r.Post("/{id}/end", rt.jobHandler.End)
				r.Get("/{id}/timer", rt.jobHandler.Timer)
				r.Get("/{id}/timer/feed", rt.jobTimerFeedHandler.Stream)

				// Accepting or declining work is an owner decision
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireOwner)
					r.Post("/{id}/confirm", rt.jobHandler.Confirm)
					r.Post("/{id}/deny", rt.jobHandler.Deny)
				})
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
