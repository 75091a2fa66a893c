package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	lists     *service.ShoppingListService
	paging    Pagination
}

func NewRecipeHandler(recipes *service.RecipeService, relations *service.RelationService, lists *service.ShoppingListService, paging Pagination) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, relations: relations, lists: lists, paging: paging}
}

// RegisterRoutes mounts the recipe endpoints. auth must reject anonymous
// callers; optional identifies them when possible. createLimit guards
// recipe creation and may be nil.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth, optional gin.HandlerFunc, createLimit *middleware.RateLimiter) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", auth, createLimit.RateLimitMiddleware(), h.CreateRecipe)
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := h.paging.parse(c)
	if err != nil {
		fail(c, err)
		return
	}
	query := service.RecipeQuery{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Page:             page,
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, apperrors.Invalid("author must be a user id"))
			return
		}
		query.AuthorID = uint(author)
	}

	views, count, err := h.recipes.List(c.Request.Context(), principal(c), query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, views))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	view, err := h.recipes.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipes.Create(c.Request.Context(), principal(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipes.Update(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), principal(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	short, err := h.relations.AddFavorite(c.Request.Context(), principal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.relations.RemoveFavorite(c.Request.Context(), principal(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	short, err := h.relations.AddToCart(c.Request.Context(), principal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.relations.RemoveFromCart(c.Request.Context(), principal(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.lists.Build(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.Render(items)))
}

// queryFlag treats "1" and "true" as set.
func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
