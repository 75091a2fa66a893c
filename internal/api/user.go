package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users     *service.UserService
	auth      *service.AuthService
	relations *service.RelationService
	paging    Pagination
}

func NewUserHandler(users *service.UserService, auth *service.AuthService, relations *service.RelationService, paging Pagination) *UserHandler {
	return &UserHandler{users: users, auth: auth, relations: relations, paging: paging}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth, optional gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, h.SetPassword)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.paging.parse(c)
	if err != nil {
		fail(c, err)
		return
	}
	users, count, err := h.users.List(c.Request.Context(), principal(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), principal(c), &req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists followed authors, each with at most recipes_limit of
// their newest recipes.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, err := h.paging.parse(c)
	if err != nil {
		fail(c, err)
		return
	}
	limit, err := positiveQuery(c, "recipes_limit", 0)
	if err != nil {
		fail(c, err)
		return
	}
	subs, count, err := h.users.Subscriptions(c.Request.Context(), principal(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	limit, err := positiveQuery(c, "recipes_limit", 0)
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.relations.Follow(ctx, principal(c), id); err != nil {
		fail(c, err)
		return
	}
	sub, err := h.users.Subscription(ctx, principal(c), id, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.relations.Unfollow(c.Request.Context(), principal(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
