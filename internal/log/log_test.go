package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(New(buf))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	assert.Contains(t, line, "ts=")
	assert.Contains(t, line, "level=info")
	assert.Contains(t, line, "msg=hello")
	assert.Contains(t, line, "user=test")
}

func TestRequestIDIsAttached(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-42")
	Error(ctx, "boom")

	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "level=error")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := captureLogs(t)

	Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, SetLevel("DEBUG"))
	Debug(context.Background(), "shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("verbose"))
}

func TestNilContextIsTolerated(t *testing.T) {
	buf := captureLogs(t)

	Warn(nil, "still logged")

	assert.Contains(t, buf.String(), "level=warn")
	assert.Equal(t, "", RequestID(nil))
}
