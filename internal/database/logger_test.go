package database

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/models"
)

func captureAppLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := applog.Logger()
	applog.ReplaceLogger(applog.New(buf))
	t.Cleanup(func() { applog.ReplaceLogger(original) })
	return buf
}

func TestQueryFailuresGoThroughAppLogger(t *testing.T) {
	db, err := Open(sqliteConfig(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	buf := captureAppLogs(t)

	ctx := applog.WithRequestID(context.Background(), "req-db-1")
	require.Error(t, db.WithContext(ctx).Exec("SELECT * FROM no_such_table").Error)

	out := buf.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "msg=\"query failed\"")
	assert.Contains(t, out, "request_id=req-db-1")
	assert.Contains(t, out, "no_such_table")
}

func TestRecordNotFoundIsNotLogged(t *testing.T) {
	db, err := Open(sqliteConfig(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	buf := captureAppLogs(t)

	var user models.User
	require.Error(t, db.First(&user, 42).Error)
	assert.Empty(t, buf.String())
}

func TestGormLoggerLevels(t *testing.T) {
	buf := captureAppLogs(t)
	ctx := context.Background()
	slow := func() (string, int64) { return "SELECT 1", 1 }

	silent := newGormLogger(logger.Warn).LogMode(logger.Silent)
	silent.Trace(ctx, time.Now().Add(-time.Second), slow, assert.AnError)
	silent.Error(ctx, "hidden %d", 1)
	assert.Empty(t, buf.String())

	warn := newGormLogger(logger.Warn)
	warn.Trace(ctx, time.Now().Add(-time.Second), slow, nil)
	assert.Contains(t, buf.String(), "msg=\"slow query\"")
	assert.Contains(t, buf.String(), "level=warn")

	buf.Reset()
	warn.Info(ctx, "not shown")
	warn.Trace(ctx, time.Now(), slow, nil)
	assert.Empty(t, buf.String())
}
