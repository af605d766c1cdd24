package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"blog-backend/internal/cache"
	"blog-backend/internal/config"
	"blog-backend/internal/logging"
	"blog-backend/internal/repository"
	"blog-backend/internal/server"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()
	logger.Info("Configuration loaded", zap.Stringer("config", cfg))

	if cfg.Database.Driver == repository.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.URL), 0o755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	// Database connection
	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	postCache, err := cache.New(cfg.Cache.RedisURL, cfg.CacheTTL())
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer postCache.Close()
	if cfg.Cache.RedisURL != "" {
		logger.Info("Post cache enabled", zap.Duration("ttl", cfg.CacheTTL()))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := server.NewServer(cfg, db, postCache, logger, logging.NewAccessLogger(os.Stdout))
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Application stopped.")
}
