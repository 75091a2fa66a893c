package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requiredInProduction lists settings that must be supplied explicitly
// outside development and test.
var requiredInProduction = map[string]func(*Config) string{
	"JWT_SECRET":     func(c *Config) string { return c.JWTSecret },
	"REDIS_URL":      func(c *Config) string { return c.RedisURL },
	"S3_BUCKET_NAME": func(c *Config) string { return c.S3BucketName },
}

// ValidateConfig checks the configuration for the environment it was loaded in.
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" {
			add("DB_HOST", "host and database name are required for postgres")
		}
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", "required for postgres")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "required for sqlite")
		}
		if !cfg.Environment.AllowsDefaults() {
			add("DB_DRIVER", "sqlite is only supported in development and test")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if !cfg.Environment.AllowsDefaults() {
		for field, get := range requiredInProduction {
			if get(cfg) == "" {
				add(field, "required outside development")
			}
		}
	}

	if len(cfg.JWTSecret) > 0 && len(cfg.JWTSecret) < 16 && cfg.Environment == Production {
		add("JWT_SECRET", "must be at least 16 characters in production")
	}
	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be positive")
	}
	if cfg.RecipeCreateLimit < 1 {
		add("RECIPE_CREATE_LIMIT", "must be positive")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
