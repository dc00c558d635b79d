package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/milfin/milfin-api/internal/config"
	"github.com/milfin/milfin-api/internal/database"
	"github.com/milfin/milfin-api/internal/handlers"
	"github.com/milfin/milfin-api/internal/jobs"
	"github.com/milfin/milfin-api/internal/middleware"
	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/services"
	"github.com/milfin/milfin-api/internal/storage"
	"github.com/milfin/milfin-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)
			protected.GET("/users/me", h.User.Me)

			// Read access for every role, auditors included
			protected.GET("/summary", h.Summary.Show)
			protected.GET("/summary/report", h.Summary.Report)

			protected.GET("/allocations", h.Allocation.Index)
			protected.GET("/allocations/export", h.Allocation.Export)
			protected.GET("/allocations/:allocation_id", h.Allocation.Show)

			protected.GET("/orders", h.Order.Index)
			protected.GET("/orders/export", h.Order.Export)
			protected.GET("/orders/:order_id", h.Order.Show)
			protected.GET("/orders/:order_id/receipt", h.Order.Receipt)

			protected.GET("/debts", h.Debt.Index)
			protected.GET("/debts/:debt_id", h.Debt.Show)
			protected.GET("/plans/:plan_id", h.Debt.ShowPlan)

			// Order entry is open to finance and commander; the service
			// rejects auditors
			protected.POST("/orders", h.Order.Create)
			protected.POST("/orders/:order_id/attachments", h.Order.UploadAttachment)

			// Notifications (users manage their own)
			// Static routes first so they are not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.GET("/unread_count", h.Notification.UnreadCount)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.PUT("/:notification_id/read", h.Notification.MarkAsRead)
			}

			// Audit trail (commander and auditor)
			protected.GET("/audits", middleware.RequireRole(models.RoleCommander, models.RoleAuditor), h.Audit.Index)

			// Finance-only ledger mutations
			finance := protected.Group("")
			finance.Use(middleware.RequireFinance())
			{
				finance.POST("/allocations", h.Allocation.Create)
				finance.PATCH("/allocations/:allocation_id", h.Allocation.Update)
				finance.DELETE("/allocations/:allocation_id", h.Allocation.Delete)

				finance.PATCH("/orders/:order_id", h.Order.Update)
				finance.DELETE("/orders/:order_id", h.Order.Delete)
				finance.POST("/orders/:order_id/mark_paid", h.Order.MarkPaid)
				finance.PUT("/orders/:order_id/status", h.Order.SetStatus)

				finance.POST("/debts", h.Debt.Create)
				finance.PATCH("/debts/:debt_id", h.Debt.Update)
				finance.DELETE("/debts/:debt_id", h.Debt.Delete)
				finance.POST("/debts/:debt_id/plans", h.Debt.CreatePlan)
				finance.POST("/installments/:installment_id/pay", h.Debt.PayInstallment)
			}

			// Commander-only routes
			commander := protected.Group("")
			commander.Use(middleware.RequireCommander())
			{
				commander.POST("/orders/:order_id/approve", h.Order.Approve)
				commander.POST("/orders/:order_id/reject", h.Order.Reject)

				commander.GET("/users", h.User.Index)
				commander.GET("/users/:user_id", h.User.Show)
				commander.POST("/users", h.User.Create)
				commander.PATCH("/users/:user_id", h.User.Update)
				commander.DELETE("/users/:user_id", h.User.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Flag overdue debts and installments once a day, starting at boot
	worker.ScheduleEveryImmediate(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Flagging overdue debts and installments...")
		return svcs.Debt.FlagOverdue(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
