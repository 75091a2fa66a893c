package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		applog.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until it fails or a signal arrives.
// Deferred cleanup runs before main decides the exit code.
func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
	} else if !cfg.Environment.AllowsDefaults() {
		return errors.New("redis is required outside development")
	} else {
		applog.Warn(ctx, "REDIS_URL not set, rate limiting and token revocation are disabled")
	}

	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure image storage: %w", err)
	}

	srv := server.New(cfg, db, redisClient, service.NewS3ImageStore(s3Cfg))

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		applog.Info(ctx, "received signal", "signal", sig.String())
	}

	applog.Info(ctx, "shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	applog.Info(ctx, "server stopped")
	return nil
}
