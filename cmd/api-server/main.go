package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"elibrary/database"
	"elibrary/internal/config"
	"elibrary/internal/logging"
	"elibrary/internal/microservices/http-api/handler"
	"elibrary/internal/microservices/http-api/repository"
	"elibrary/internal/microservices/http-api/service"
	"elibrary/internal/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Setup structured logging
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, "elibrary-api")
	if err != nil {
		logger.Error("tracing_setup_failed", "error", err.Error())
		os.Exit(1)
	}

	// Connect to the database
	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer database.Close(db)

	var bookRepo repository.BookRepository = repository.NewBookRepository(db)
	if cfg.RedisURL != "" {
		redisClient, err := repository.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Error("redis_config_invalid", "error", err.Error())
			os.Exit(1)
		}
		defer redisClient.Close()
		pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Startup continues; reads fall through to the database while Redis is down
			logger.Warn("redis_unreachable", "error", err.Error())
		}
		cancelPing()
		bookRepo = repository.NewCachedBookRepository(bookRepo, repository.NewBookCache(redisClient, cfg.CacheExpiry()), logger)
		logger.Info("book_cache_enabled", "ttl", cfg.CacheExpiry().String())
	}

	router := handler.NewRouter(handler.RouterDeps{
		AuthService: service.NewAuthService(repository.NewUserRepository(db), cfg),
		BookService: service.NewBookService(bookRepo, service.BookServiceOptions{
			RestrictDeleteToOwner: cfg.RestrictDeleteToOwner,
		}),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Ping: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err.Error())
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing_shutdown_failed", "error", err.Error())
	}
	logger.Info("server_stopped_gracefully")
}
