package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CI", "ENV", "SERVER_HOST", "SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH", "REDIS_URL", "JWT_SECRET",
		"TOKEN_TTL", "PAGE_SIZE", "RECIPE_CREATE_LIMIT", "CORS_ALLOWED_ORIGINS", "S3_BUCKET_NAME",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "foodgram")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	clearEnv(t)
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret-file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("pw"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret-file", cfg.JWTSecret)
	assert.Equal(t, "pw", cfg.DBPassword)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoadConfigRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAGE_SIZE", "many")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGE_SIZE")
}

func TestSQLiteOnlyInDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CI", "true")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "ci-secret-ci-secret")
	t.Setenv("REDIS_URL", "redis://redis:6379")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite is only supported")
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("Production"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment("staging"))
	assert.True(t, Test.AllowsDefaults())
	assert.False(t, CI.AllowsDefaults())
}

func TestS3ConfigObjectURL(t *testing.T) {
	s3cfg, err := NewS3Config(context.Background(), &Config{
		S3BucketName: "images",
		AWSRegion:    "us-east-1",
		S3Endpoint:   "http://minio:9000/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/images/recipes/a.png", s3cfg.ObjectURL("recipes/a.png"))

	_, err = NewS3Config(context.Background(), &Config{})
	assert.Error(t, err)
}
