package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New wires repositories, services and handlers into a router. redisClient
// may be nil, which disables rate limiting and token revocation.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.CORS(cfg.CORSAllowedOrigins))

	repos := repository.New(db)
	v := service.NewValidator()

	var revoker service.TokenRevoker
	var createLimit *middleware.RateLimiter
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
		createLimit = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow)
	}

	api.RegisterRoutes(router, api.Services{
		Auth:          service.NewAuthService(repos.Users, v, cfg.JWTSecret, cfg.TokenTTL, revoker),
		Users:         service.NewUserService(repos),
		Recipes:       service.NewRecipeService(db, repos, v, images),
		Relations:     service.NewRelationService(repos),
		ShoppingLists: service.NewShoppingListService(repos.Relations),
		Catalog:       service.NewCatalogService(repos.Tags, repos.Ingredients, v),
	}, api.Options{
		Pagination:        api.Pagination{DefaultSize: cfg.PageSize, MaxSize: 100},
		RecipeCreateLimit: createLimit,
	})

	s := &Server{router: router, db: db}
	router.GET("/health", s.health)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.HealthCheck(ctx, s.db); err != nil {
		applog.Error(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	applog.Info(context.Background(), "http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
