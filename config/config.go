package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost         string
	ServerPort         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	SQLitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Redis backs the rate limiter and token revocation. Empty disables both.
	RedisURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Object storage for recipe images
	S3BucketName string
	AWSRegion    string
	S3Endpoint   string
	S3PublicURL  string

	LogLevel           string
	PageSize           int
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration
}

// LoadConfig reads configuration from environment variables, falling back to
// Docker secrets and then to development defaults where the environment
// allows it.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	l := loader{env: env}

	cfg := &Config{
		Environment:        env,
		ServerHost:         l.str("SERVER_HOST", "server_host", "0.0.0.0"),
		ServerPort:         l.str("SERVER_PORT", "server_port", "8080"),
		CORSAllowedOrigins: splitList(l.str("CORS_ALLOWED_ORIGINS", "", "http://localhost:3000")),
		DBDriver:           strings.ToLower(l.str("DB_DRIVER", "", DriverPostgres)),
		DBHost:             l.str("DB_HOST", "db_host", "localhost"),
		DBPort:             l.str("DB_PORT", "db_port", "5432"),
		DBUser:             l.str("DB_USER", "db_user", "postgres"),
		DBPassword:         l.secret("DB_PASSWORD", "db_password", "postgres"),
		DBName:             l.str("DB_NAME", "db_name", "foodgram"),
		DBSSLMode:          l.str("DB_SSL_MODE", "db_ssl_mode", "disable"),
		SQLitePath:         l.str("SQLITE_PATH", "", "foodgram.db"),
		RedisURL:           l.secret("REDIS_URL", "redis_url", ""),
		JWTSecret:          l.secret("JWT_SECRET", "jwt_secret", "dev-insecure-secret"),
		S3BucketName:       l.str("S3_BUCKET_NAME", "", "foodgram-recipe-images"),
		AWSRegion:          l.str("AWS_REGION", "", "us-east-1"),
		S3Endpoint:         l.str("S3_ENDPOINT", "", ""),
		S3PublicURL:        l.str("S3_PUBLIC_URL", "", ""),
		LogLevel:           l.str("LOG_LEVEL", "", "info"),
	}

	cfg.DBMaxOpenConns = l.integer("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = l.integer("DB_MAX_IDLE_CONNS", 25)
	cfg.DBConnMaxLifetime = l.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.TokenTTL = l.duration("TOKEN_TTL", 24*time.Hour)
	cfg.PageSize = l.integer("PAGE_SIZE", 6)
	cfg.RecipeCreateLimit = l.integer("RECIPE_CREATE_LIMIT", 20)
	cfg.RecipeCreateWindow = l.duration("RECIPE_CREATE_WINDOW", time.Hour)

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("failed to load configuration:\n%s", strings.Join(l.errs, "\n"))
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

type loader struct {
	env  Environment
	errs []string
}

// str resolves a plain setting: env var, then secret file, then default.
func (l *loader) str(envKey, secretName, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if secretName != "" {
		if v := readSecret(secretName); v != "" {
			return v
		}
	}
	return def
}

// secret is like str but only uses the default outside production and CI.
func (l *loader) secret(envKey, secretName, def string) string {
	if l.env.AllowsDefaults() {
		return l.str(envKey, secretName, def)
	}
	return l.str(envKey, secretName, "")
}

func (l *loader) integer(envKey string, def int) int {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s: invalid integer %q", envKey, raw))
		return def
	}
	return v
}

func (l *loader) duration(envKey string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s: invalid duration %q", envKey, raw))
		return def
	}
	return v
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
