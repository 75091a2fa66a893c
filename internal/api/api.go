// Package api exposes the recipe sharing services over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Recipes       *service.RecipeService
	Relations     *service.RelationService
	ShoppingLists *service.ShoppingListService
	Catalog       *service.CatalogService
}

type Options struct {
	Pagination Pagination
	// RecipeCreateLimit throttles recipe creation per user. Nil disables it.
	RecipeCreateLimit *middleware.RateLimiter
}

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(router *gin.Engine, svc Services, opts Options) {
	if opts.Pagination.DefaultSize <= 0 {
		opts.Pagination.DefaultSize = 6
	}

	auth := middleware.AuthMiddleware(svc.Auth)
	optional := middleware.OptionalAuth(svc.Auth)

	group := router.Group("/api")
	NewAuthHandler(svc.Auth).RegisterRoutes(group, auth)
	NewUserHandler(svc.Users, svc.Auth, svc.Relations, opts.Pagination).RegisterRoutes(group, auth, optional)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(group)
	NewRecipeHandler(svc.Recipes, svc.Relations, svc.ShoppingLists, opts.Pagination).
		RegisterRoutes(group, auth, optional, opts.RecipeCreateLimit)
}
