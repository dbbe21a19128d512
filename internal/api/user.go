package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avolkov/plateful/backend/internal/middleware"
	"github.com/avolkov/plateful/backend/internal/service"
	"github.com/avolkov/plateful/backend/internal/types"
)

const defaultRecipesPreview = 3

type UserHandler struct {
	auth          *service.AuthService
	relationships *service.RelationshipService
	validator     middleware.TokenValidator
}

func NewUserHandler(auth *service.AuthService, relationships *service.RelationshipService, validator middleware.TokenValidator) *UserHandler {
	return &UserHandler{
		auth:          auth,
		relationships: relationships,
		validator:     validator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.validator)
	required := middleware.AuthMiddleware(h.validator)

	users := router.Group("/users")
	{
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := types.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if viewer := viewerID(c); viewer != nil {
		subscribed, err := h.relationships.IsSubscribed(c.Request.Context(), *viewer, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.IsSubscribed = subscribed
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	author, err := h.relationships.Follow(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	// Unfollow without a prior follow is a success, not an error.
	if err := h.relationships.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	params := parsePageParams(c)
	recipesLimit, err := strconv.Atoi(c.DefaultQuery("recipes_limit", strconv.Itoa(defaultRecipesPreview)))
	if err != nil || recipesLimit < 0 {
		recipesLimit = defaultRecipesPreview
	}

	results, count, err := h.relationships.ListFollowing(c.Request.Context(), userID, userID, params.Limit, params.Offset(), recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated(c, count, params, results))
}
