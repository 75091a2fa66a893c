package main

import (
	"context"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	applog "github.com/pageza/foodgram/backend/internal/log"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		applog.Error(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg)
	if err != nil {
		applog.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		applog.Error(ctx, "migration failed", "error", err)
		os.Exit(1)
	}
	applog.Info(ctx, "all migrations applied successfully")
}
