package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	th "github.com/pageza/foodgram/backend/internal/testhelpers"
)

func limitedRouter(rl *RateLimiter, userID uint) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(userIDKey, userID)
		}
		c.Next()
	})
	r.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRateLimiterWithoutRedisIsDisabled(t *testing.T) {
	r := limitedRouter(NewRecipeCreationRateLimiter(nil, 1, time.Hour), 7)
	for i := 0; i < 3; i++ {
		rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	client := th.SetupRedis(t)
	rl := NewRecipeCreationRateLimiter(client, 2, time.Hour)
	r := limitedRouter(rl, 7)

	for i := 0; i < 2; i++ {
		rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	// other users have their own budget
	rr = serve(limitedRouter(rl, 8), httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)

	allowed, remaining, reset, err := rl.IsAllowed(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.True(t, reset.After(time.Now()))
}
