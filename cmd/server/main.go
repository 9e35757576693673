package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stayora/stayora-auth/internal/api"
	"github.com/stayora/stayora-auth/internal/auth"
	"github.com/stayora/stayora-auth/internal/database"
	"github.com/stayora/stayora-auth/internal/mailer"
	"github.com/stayora/stayora-auth/internal/tasks"
	"github.com/stayora/stayora-auth/pkg/config"
	"github.com/stayora/stayora-auth/pkg/queue"
	"github.com/stayora/stayora-auth/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting stayora-auth server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, emails will be sent inline", "error", err)
		redisClient = nil
	}

	// Email delivery: enqueue to the worker when Redis is up, otherwise
	// deliver inline over SMTP.
	var emailSender auth.Mailer
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		emailSender = tasks.NewQueueMailer(asynqClient)
	} else {
		smtpMailer, err := mailer.New(&cfg.SMTP)
		if err != nil {
			logger.Error("failed to create mailer", "error", err)
			os.Exit(1)
		}
		emailSender = smtpMailer
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(auth.Deps{
		Users:              database.NewUserStore(db),
		Tenants:            database.NewTenantStore(db),
		VerificationTokens: database.NewVerificationTokenStore(db),
		ResetTokens:        database.NewResetTokenStore(db),
		JWT:                jwtService,
		Mailer:             emailSender,
		Verifier:           auth.NewGoogleVerifier(),
		BaseURL:            cfg.App.BaseURL,
		GoogleClientID:     cfg.Google.ClientID,
	})

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		JWTService:  jwtService,
		AuthService: authService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close Asynq client
	if asynqClient != nil {
		asynqClient.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
