package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/config"
	"studio-admin-service/internal/events"
	"studio-admin-service/internal/handlers"
	"studio-admin-service/internal/middleware"
	"studio-admin-service/internal/migration"
	"studio-admin-service/internal/repository"
	"studio-admin-service/internal/scheduler"
	"studio-admin-service/internal/services"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "release" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize NATS event publisher
	var natsClient *events.Client
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(cfg.NATS.URL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to NATS, continuing without event publishing")
			natsClient = nil
		}
	} else {
		log.Println("NATS_URL not set, event publishing disabled")
	}
	defer natsClient.Close()
	publisher := events.NewPublisher(natsClient, logger)

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// Initialize services
	passwordService := services.NewPasswordService()
	loginURLService := services.NewLoginURLService(adminRepo)
	sessionService := services.NewSessionService(adminRepo, cfg.Session.Secret, cfg.Session.SessionExpiry())
	authService := services.NewAuthService(adminRepo, passwordService, loginURLService, cfg.Security)
	projectService := services.NewProjectService(projectRepo, leadRepo)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService, sessionService, loginURLService, publisher, logger)
	accountHandlers := handlers.NewAccountHandlers(authService, sessionService, publisher, logger)
	projectHandlers := handlers.NewProjectHandlers(projectService, publisher, logger)
	leadHandlers := handlers.NewLeadHandlers(leadRepo, publisher, logger)
	healthHandlers := handlers.NewHealthHandlers(db)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	generalLimiter := middleware.NewRateLimiter(redisClient, logger, middleware.DefaultRateLimitConfig())
	loginLimiter := middleware.NewRateLimiter(redisClient, logger, middleware.LoginRateLimitConfig())

	// Start backup scheduler
	backupScheduler := scheduler.NewBackupScheduler(adminRepo, projectRepo, leadRepo, cfg.Backup, logger)
	if err := backupScheduler.Start(); err != nil {
		log.Fatalf("Failed to start backup scheduler: %v", err)
	}
	defer backupScheduler.Stop()

	// Setup Gin router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestLoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(generalLimiter.Middleware())
	router.Use(gin.Recovery())

	// Unknown routes share one response body with unknown login paths.
	router.NoRoute(handlers.NotFound)

	// Health check endpoints
	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)

	// Private login path. The path segment itself is the first credential.
	router.POST("/admin/login/:url_path", loginLimiter.Middleware(), authHandlers.Login)

	api := router.Group("/api/v1")
	{
		// Public routes
		api.POST("/admin/setup", loginLimiter.Middleware(), authHandlers.Setup)
		api.POST("/contact", leadHandlers.Contact)
		api.POST("/intake", leadHandlers.Intake)
		api.POST("/newsletter/subscribe", leadHandlers.Subscribe)

		// Authenticated admin routes
		admin := api.Group("/admin")
		admin.Use(authMiddleware.AuthRequired())
		admin.Use(authMiddleware.PasswordChangeGate(
			"/api/v1/admin/password/change",
			"/api/v1/admin/logout",
		))
		{
			admin.POST("/logout", authHandlers.Logout)
			admin.POST("/password/change", loginLimiter.Middleware(), authHandlers.ChangePassword)
			admin.PUT("/settings/login-url", authHandlers.UpdateLoginURL)
			admin.GET("/security-check", authHandlers.SecurityCheck)

			accounts := admin.Group("/accounts")
			{
				accounts.GET("", accountHandlers.List)
				accounts.POST("/:id/unlock", accountHandlers.Unlock)
				accounts.POST("/:id/activate", accountHandlers.Activate)
				accounts.POST("/:id/deactivate", accountHandlers.Deactivate)
			}

			admin.GET("/contacts", leadHandlers.ListContacts)
			admin.GET("/intakes", leadHandlers.ListIntakes)

			projects := admin.Group("/projects")
			{
				projects.POST("", projectHandlers.Create)
				projects.GET("", projectHandlers.List)
				projects.GET("/statuses", projectHandlers.Statuses)
				projects.GET("/:id", projectHandlers.Get)
				projects.PUT("/:id/status", projectHandlers.UpdateStatus)
				projects.POST("/:id/events", projectHandlers.AddEvent)
				projects.GET("/:id/events", projectHandlers.ListEvents)
				projects.POST("/from-intake/:intake_id", projectHandlers.FromIntake)
			}
		}
	}

	// Start server
	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Studio admin service starting on %s", serverAddr)
	log.Printf("Environment: %s", cfg.Server.Mode)
	log.Printf("Database: %s@%s:%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port)

	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connected successfully")
	return db, nil
}

// initRedis initializes the Redis client. Returns nil when Redis is down;
// the rate limiter falls back to in-memory counters.
func initRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, rate limiting will use in-memory fallback: %v", err)
		client.Close()
		return nil
	}

	log.Println("Redis connected successfully")
	return client
}
