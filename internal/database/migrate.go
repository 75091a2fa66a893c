package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Migrate creates or updates every table, index and check constraint.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	applog.Info(context.Background(), "database schema migrated", "dialect", db.Dialector.Name())
	return nil
}
