package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applog "github.com/pageza/foodgram/backend/internal/log"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with a request id, echoes it in
// the response and logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx := applog.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if uid := UserID(c); uid != 0 {
			args = append(args, "user_id", uid)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			applog.Error(ctx, "request", args...)
		case status >= 400:
			applog.Warn(ctx, "request", args...)
		default:
			applog.Info(ctx, "request", args...)
		}
	}
}
